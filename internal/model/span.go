package model

import (
	"gorm.io/gorm"
)

const (
	SpanTypeTool      = "TOOL"
	SpanTypeLLM       = "LLM"
	SpanTypeRetriever = "RETRIEVER"

	SpanStatusOK    = "OK"
	SpanStatusError = "ERROR"
)

type Span struct {
	Id           int64   `json:"id" gorm:"primarykey"`
	RequestId    string  `json:"request_id" gorm:"type:char(64);index"`
	ExperimentId string  `json:"experiment_id" gorm:"type:char(64);index:idx_spans_exp_ts,priority:1"`
	TimestampMs  int64   `json:"timestamp_ms" gorm:"index:idx_spans_exp_ts,priority:2"`
	Name         string  `json:"name" gorm:"type:varchar(191);index"`
	SpanType     string  `json:"span_type" gorm:"type:char(32);index"`
	Status       string  `json:"status" gorm:"type:char(16)"`
	DurationMs   float64 `json:"duration_ms"`
}

func windowedSpans(db *gorm.DB, expIds []string, start, end *int64) *gorm.DB {
	q := db.Model(&Span{}).Where("experiment_id IN ?", expIds)
	if start != nil {
		q = q.Where("timestamp_ms >= ?", *start)
	}
	if end != nil {
		q = q.Where("timestamp_ms <= ?", *end)
	}
	return q
}

// GetToolSpans returns tool-call spans in the window; an empty name matches
// all tools.
func GetToolSpans(expIds []string, start, end *int64, name string) ([]Span, error) {
	q := windowedSpans(DB, expIds, start, end).
		Where("span_type = ?", SpanTypeTool).
		Select("request_id, timestamp_ms, name, status, duration_ms")
	if name != "" {
		q = q.Where("name = ?", name)
	}
	var rows []Span
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
