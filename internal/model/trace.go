package model

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	TraceStatusOK    = "OK"
	TraceStatusError = "ERROR"
)

type Trace struct {
	RequestId       string    `json:"request_id" gorm:"primarykey;type:char(64)"`
	ExperimentId    string    `json:"experiment_id" gorm:"type:char(64);index:idx_traces_exp_ts,priority:1"`
	TimestampMs     int64     `json:"timestamp_ms" gorm:"index:idx_traces_exp_ts,priority:2"`
	ExecutionTimeMs float64   `json:"execution_time_ms"`
	Status          string    `json:"status" gorm:"type:char(16);index"`
	InputTokens     int64     `json:"input_tokens"`
	OutputTokens    int64     `json:"output_tokens"`
	RequestPreview  string    `json:"request_preview" gorm:"type:text"`
	ResponsePreview string    `json:"response_preview" gorm:"type:text"`
	PayloadKey      string    `json:"payload_key" gorm:"type:varchar(255)"`
	CreatedTime     time.Time `json:"created_time" gorm:"datetime;autoCreateTime"`
}

func CreateTrace(trace *Trace) error {
	return DB.Create(trace).Error
}

func GetTraceByRequestId(requestId string) (*Trace, error) {
	var trace Trace
	err := DB.Where("request_id = ?", requestId).First(&trace).Error
	if err != nil {
		return nil, err
	}
	return &trace, nil
}

// TraceFilter selects traces where one dimension takes one value. Dimension
// is either "tag.<key>" or a builtin ("trace.status", "trace.has_error").
type TraceFilter struct {
	Dimension string
	Value     string
}

func windowedTraces(db *gorm.DB, expIds []string, start, end *int64) *gorm.DB {
	q := db.Model(&Trace{}).Where("experiment_id IN ?", expIds)
	if start != nil {
		q = q.Where("timestamp_ms >= ?", *start)
	}
	if end != nil {
		q = q.Where("timestamp_ms <= ?", *end)
	}
	return q
}

// applyTraceFilters narrows a query to traces matching every filter. table is
// the alias the status column lives under in the outer query.
func applyTraceFilters(q *gorm.DB, table string, filters []TraceFilter) (*gorm.DB, error) {
	for _, f := range filters {
		switch {
		case strings.HasPrefix(f.Dimension, "tag."):
			key := strings.TrimPrefix(f.Dimension, "tag.")
			q = q.Where(
				"EXISTS (SELECT 1 FROM trace_tags ft WHERE ft.request_id = "+table+".request_id AND ft.tag_key = ? AND ft.tag_value = ?)",
				key, f.Value)
		case f.Dimension == "trace.status":
			q = q.Where(table+".status = ?", f.Value)
		case f.Dimension == "trace.has_error":
			if f.Value == "true" {
				q = q.Where(table+".status = ?", TraceStatusError)
			} else {
				q = q.Where(table+".status <> ?", TraceStatusError)
			}
		default:
			return nil, fmt.Errorf("unknown dimension: %s", f.Dimension)
		}
	}
	return q, nil
}

// BucketStatusCount is one (time bucket, status) cell of the volume grid.
// Bucket is the epoch-ms start of the bucket.
type BucketStatusCount struct {
	Bucket int64
	Status string
	Count  int64
}

func CountTraceStatusBuckets(expIds []string, start, end *int64, bucketMs int64) ([]BucketStatusCount, error) {
	var rows []BucketStatusCount
	err := windowedTraces(DB, expIds, start, end).
		Select("(timestamp_ms DIV ?) * ? AS bucket, status, COUNT(*) AS count", bucketMs, bucketMs).
		Group("bucket, status").
		Order("bucket").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// BucketTokenUsage is one time bucket's token consumption.
type BucketTokenUsage struct {
	Bucket       int64
	InputTokens  int64
	OutputTokens int64
	TraceCount   int64
}

func GetTokenUsageBuckets(expIds []string, start, end *int64, bucketMs int64) ([]BucketTokenUsage, error) {
	var rows []BucketTokenUsage
	err := windowedTraces(DB, expIds, start, end).
		Select("(timestamp_ms DIV ?) * ? AS bucket, SUM(input_tokens) AS input_tokens, SUM(output_tokens) AS output_tokens, COUNT(*) AS trace_count", bucketMs, bucketMs).
		Group("bucket").
		Order("bucket").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LatencyRow is one completed trace's latency sample.
type LatencyRow struct {
	TimestampMs     int64
	ExecutionTimeMs float64
}

// GetOkLatencyRows returns latency samples for successful traces only;
// errored traces would skew the percentiles.
func GetOkLatencyRows(expIds []string, start, end *int64) ([]LatencyRow, error) {
	var rows []LatencyRow
	err := windowedTraces(DB, expIds, start, end).
		Where("status = ?", TraceStatusOK).
		Select("timestamp_ms, execution_time_ms").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func CountTracesMatching(expIds []string, start, end *int64, filters []TraceFilter) (int64, error) {
	q, err := applyTraceFilters(windowedTraces(DB, expIds, start, end), "traces", filters)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// StatusCount is the per-status total over the window.
type StatusCount struct {
	Status string
	Count  int64
}

func CountTraceStatuses(expIds []string, start, end *int64) ([]StatusCount, error) {
	var rows []StatusCount
	err := windowedTraces(DB, expIds, start, end).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
