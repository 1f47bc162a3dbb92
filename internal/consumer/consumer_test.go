package consumer

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPreviewShortInputUnchanged(t *testing.T) {
	in := `{"prompt":"hello"}`
	if got := preview(json.RawMessage(in)); got != in {
		t.Fatalf("preview = %q, want input unchanged", got)
	}
}

func TestPreviewTruncatesAtRuneBoundary(t *testing.T) {
	// pad so a 3-byte rune straddles the cut point
	pad := strings.Repeat("a", previewLimit-1)
	in := pad + "世界"

	got := preview(json.RawMessage(in))
	if len(got) > previewLimit {
		t.Fatalf("preview is %d bytes, limit is %d", len(got), previewLimit)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("preview contains a split rune: %q", got[len(got)-4:])
	}
	if got != pad {
		t.Fatalf("expected the straddling rune to be dropped entirely")
	}
}
