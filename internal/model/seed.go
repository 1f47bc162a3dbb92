package model

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	demoExperiments = []string{"exp-demo-1", "exp-demo-2"}
	demoModels      = []string{"gpt-4o", "claude-sonnet", "llama-3-70b"}
	demoTiers       = []string{"free", "pro", "enterprise"}
	demoTools       = []string{"web_search", "code_interpreter", "vector_lookup"}
)

// InsertTestData seeds a week of synthetic traces so a fresh install has
// something to chart. The generator is seeded so repeated runs on an empty
// database produce the same data set.
func InsertTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(42))
	now := time.Now().UnixMilli()
	weekMs := int64(7 * 24 * time.Hour / time.Millisecond)

	const traceCount = 600
	for i := 0; i < traceCount; i++ {
		requestId := strings.ReplaceAll(uuid.New().String(), "-", "")
		expId := demoExperiments[r.Intn(len(demoExperiments))]
		ts := now - r.Int63n(weekMs)
		model := demoModels[r.Intn(len(demoModels))]
		tier := demoTiers[r.Intn(len(demoTiers))]

		status := TraceStatusOK
		// llama errors more often so correlations have something to find
		errorRate := 0.05
		if model == "llama-3-70b" {
			errorRate = 0.25
		}
		if r.Float64() < errorRate {
			status = TraceStatusError
		}

		trace := &Trace{
			RequestId:       requestId,
			ExperimentId:    expId,
			TimestampMs:     ts,
			ExecutionTimeMs: 200 + r.Float64()*4800,
			Status:          status,
			InputTokens:     int64(100 + r.Intn(1900)),
			OutputTokens:    int64(50 + r.Intn(950)),
			RequestPreview:  fmt.Sprintf("demo request %d", i),
			ResponsePreview: fmt.Sprintf("demo response %d", i),
		}
		if err := db.Create(trace).Error; err != nil {
			return fmt.Errorf("seed trace: %w", err)
		}

		tags := []TraceTag{
			{RequestId: requestId, ExperimentId: expId, TimestampMs: ts, TagKey: "model", TagValue: model},
			{RequestId: requestId, ExperimentId: expId, TimestampMs: ts, TagKey: "user_tier", TagValue: tier},
			{RequestId: requestId, ExperimentId: expId, TimestampMs: ts, TagKey: "tracelens.source", TagValue: "seed"},
		}
		if err := db.Create(&tags).Error; err != nil {
			return fmt.Errorf("seed tags: %w", err)
		}

		spanCount := r.Intn(3)
		for s := 0; s < spanCount; s++ {
			spanStatus := SpanStatusOK
			if r.Float64() < 0.1 {
				spanStatus = SpanStatusError
			}
			span := &Span{
				RequestId:    requestId,
				ExperimentId: expId,
				TimestampMs:  ts,
				Name:         demoTools[r.Intn(len(demoTools))],
				SpanType:     SpanTypeTool,
				Status:       spanStatus,
				DurationMs:   50 + r.Float64()*950,
			}
			if err := db.Create(span).Error; err != nil {
				return fmt.Errorf("seed span: %w", err)
			}
		}

		score := r.Float64()
		passed := "pass"
		if score < 0.2 {
			passed = "fail"
		}
		correct := score >= 0.3
		assessments := []Assessment{
			{RequestId: requestId, ExperimentId: expId, TimestampMs: ts,
				Name: "relevance", DataType: AssessmentTypeNumeric, Source: "llm-judge", NumericValue: &score},
			{RequestId: requestId, ExperimentId: expId, TimestampMs: ts,
				Name: "groundedness", DataType: AssessmentTypePassFail, Source: "llm-judge", StringValue: &passed},
			{RequestId: requestId, ExperimentId: expId, TimestampMs: ts,
				Name: "correct", DataType: AssessmentTypeBoolean, Source: "human", BoolValue: &correct},
		}
		if err := db.Create(&assessments).Error; err != nil {
			return fmt.Errorf("seed assessments: %w", err)
		}
	}
	return nil
}
