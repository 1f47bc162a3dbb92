package dao

import "encoding/json"

// SpanSpec is one span of an ingested trace.
type SpanSpec struct {
	Name       string  `json:"name"`
	SpanType   string  `json:"span_type"`
	Status     string  `json:"status"`
	DurationMs float64 `json:"duration_ms"`
}

// AssessmentSpec is one quality judgement of an ingested trace. The value
// field matching DataType is set.
type AssessmentSpec struct {
	Name         string   `json:"name"`
	DataType     string   `json:"data_type"`
	Source       string   `json:"source"`
	BoolValue    *bool    `json:"bool_value,omitempty"`
	NumericValue *float64 `json:"numeric_value,omitempty"`
	StringValue  *string  `json:"string_value,omitempty"`
}

// TraceIngestMessage is the wire format traces arrive in on the ingest
// topic. Request and Response carry the full payloads; the store keeps only
// previews and archives the rest to object storage.
type TraceIngestMessage struct {
	RequestId       string            `json:"request_id"`
	ExperimentId    string            `json:"experiment_id"`
	TimestampMs     int64             `json:"timestamp_ms"`
	ExecutionTimeMs float64           `json:"execution_time_ms"`
	Status          string            `json:"status"`
	InputTokens     int64             `json:"input_tokens"`
	OutputTokens    int64             `json:"output_tokens"`
	Request         json.RawMessage   `json:"request"`
	Response        json.RawMessage   `json:"response"`
	Tags            map[string]string `json:"tags"`
	Spans           []SpanSpec        `json:"spans"`
	Assessments     []AssessmentSpec  `json:"assessments"`
}
