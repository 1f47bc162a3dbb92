package insightsclient

import (
	"tracelens/pkg/chart"
	"tracelens/pkg/timerange"
)

// Query carries the common parameters every insights endpoint takes. Bucket
// is optional; when empty the client picks one from the range span.
type Query struct {
	ExperimentIDs []string
	Range         timerange.Range
	Bucket        timerange.Bucket
}

func (q Query) body() baseBody {
	bucket := q.Bucket
	if bucket == "" {
		bucket, _ = timerange.AutoBucket(q.Range)
	}
	end := q.Range.EndMs()
	return baseBody{
		ExperimentIDs: q.ExperimentIDs,
		StartTime:     q.Range.StartMs(),
		EndTime:       &end,
		TimeBucket:    string(bucket),
	}
}

type baseBody struct {
	ExperimentIDs []string `json:"experiment_ids"`
	StartTime     *int64   `json:"start_time,omitempty"`
	EndTime       *int64   `json:"end_time,omitempty"`
	TimeBucket    string   `json:"time_bucket,omitempty"`
}

type assessmentBody struct {
	baseBody
	AssessmentName string `json:"assessment_name"`
}

type toolBody struct {
	baseBody
	ToolName string `json:"tool_name,omitempty"`
}

type tagBody struct {
	baseBody
	TagKey    string `json:"tag_key"`
	MaxValues int    `json:"max_values,omitempty"`
}

type npmiBody struct {
	baseBody
	Filter1 DimensionFilter `json:"filter1"`
	Filter2 DimensionFilter `json:"filter2"`
}

type correlationsBody struct {
	baseBody
	Filters    []string `json:"filters"`
	MaxResults int      `json:"max_results,omitempty"`
}

// DimensionFilter selects traces where one dimension takes one value, e.g.
// {Dimension: "trace.status", Value: "ERROR"} or {Dimension: "tag.model",
// Value: "gpt-4"}.
type DimensionFilter struct {
	Dimension string `json:"dimension"`
	Value     string `json:"value"`
}

type VolumeSummary struct {
	Count      int64 `json:"count"`
	OkCount    int64 `json:"ok_count"`
	ErrorCount int64 `json:"error_count"`
}

type TrafficVolumeResponse struct {
	Summary    VolumeSummary `json:"summary"`
	TimeSeries []chart.Point `json:"time_series"`
}

type LatencySummary struct {
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
	P99 float64 `json:"p99"`
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type TrafficLatencyResponse struct {
	Summary    LatencySummary `json:"summary"`
	TimeSeries []chart.Point  `json:"time_series"`
}

type ErrorSummary struct {
	TotalCount int64   `json:"total_count"`
	ErrorCount int64   `json:"error_count"`
	ErrorRate  float64 `json:"error_rate"`
}

type TrafficErrorsResponse struct {
	Summary    ErrorSummary  `json:"summary"`
	TimeSeries []chart.Point `json:"time_series"`
}

type TokenSummary struct {
	TotalInputTokens  int64   `json:"total_input_tokens"`
	TotalOutputTokens int64   `json:"total_output_tokens"`
	TotalTokens       int64   `json:"total_tokens"`
	AvgInputTokens    float64 `json:"avg_input_tokens"`
	AvgOutputTokens   float64 `json:"avg_output_tokens"`
}

// TokenUsageResponse reports token consumption over the window. TimeSeries
// carries "input" and "output" series of per-bucket totals.
type TokenUsageResponse struct {
	Summary    TokenSummary  `json:"summary"`
	TimeSeries []chart.Point `json:"time_series"`
}

// AssessmentInfo describes one assessment name seen on the selected traces.
// AssessmentType is one of boolean, pass-fail, numeric, string.
type AssessmentInfo struct {
	AssessmentName string   `json:"assessment_name"`
	AssessmentType string   `json:"assessment_type"`
	Sources        []string `json:"sources"`
	TraceCount     int64    `json:"trace_count"`
}

type AssessmentDiscoveryResponse struct {
	Data []AssessmentInfo `json:"data"`
}

// ValueCount is one value of a string-typed field with its occurrence count
// and share of the total.
type ValueCount struct {
	Value      string  `json:"value"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AssessmentSummary carries the aggregate for one assessment. Which fields
// are set depends on the assessment's data type: failure rate for boolean and
// pass-fail, percentiles for numeric, top values for string.
type AssessmentSummary struct {
	Count       int64        `json:"count"`
	FailureRate *float64     `json:"failure_rate,omitempty"`
	P50         *float64     `json:"p50,omitempty"`
	P90         *float64     `json:"p90,omitempty"`
	P99         *float64     `json:"p99,omitempty"`
	Avg         *float64     `json:"avg,omitempty"`
	TopValues   []ValueCount `json:"top_values,omitempty"`
}

type AssessmentMetricsResponse struct {
	AssessmentName string            `json:"assessment_name"`
	AssessmentType string            `json:"assessment_type"`
	Summary        AssessmentSummary `json:"summary"`
	TimeSeries     []chart.Point     `json:"time_series"`
}

// ToolInfo aggregates spans of type TOOL for one tool. The series fields are
// populated by the metrics endpoint and left empty by discovery.
type ToolInfo struct {
	ToolName      string        `json:"tool_name"`
	TotalCalls    int64         `json:"total_calls"`
	ErrorCalls    int64         `json:"error_calls"`
	ErrorRate     float64       `json:"error_rate"`
	LatencyP50    float64       `json:"latency_p50"`
	LatencyP90    float64       `json:"latency_p90"`
	LatencyP99    float64       `json:"latency_p99"`
	VolumeSeries  []chart.Point `json:"volume_series,omitempty"`
	LatencySeries []chart.Point `json:"latency_series,omitempty"`
	ErrorSeries   []chart.Point `json:"error_series,omitempty"`
}

type ToolDiscoveryResponse struct {
	Data []ToolInfo `json:"data"`
}

type ToolMetricsResponse struct {
	Tool ToolInfo `json:"tool"`
}

type TagInfo struct {
	TagKey       string `json:"tag_key"`
	TraceCount   int64  `json:"trace_count"`
	UniqueValues int64  `json:"unique_values"`
}

type TagDiscoveryResponse struct {
	Data []TagInfo `json:"data"`
}

type TagValuesResponse struct {
	TagKey      string       `json:"tag_key"`
	TotalTraces int64        `json:"total_traces"`
	Data        []ValueCount `json:"data"`
}

type TagMetricsResponse struct {
	TagKey     string        `json:"tag_key"`
	TimeSeries []chart.Point `json:"time_series"`
}

// Dimension is one correlatable axis: a trace tag or a builtin trace field,
// with its inferred data type (boolean, numeric or string).
type Dimension struct {
	Name     string `json:"name"`
	Source   string `json:"source"`
	DataType string `json:"data_type"`
}

type DimensionDiscoveryResponse struct {
	Data []Dimension `json:"data"`
}

type NPMIResponse struct {
	Filter1    DimensionFilter `json:"filter1"`
	Filter2    DimensionFilter `json:"filter2"`
	Count1     int64           `json:"count1"`
	Count2     int64           `json:"count2"`
	JointCount int64           `json:"joint_count"`
	TotalCount int64           `json:"total_count"`
	NPMI       float64         `json:"npmi"`
	Strength   string          `json:"strength"`
}

// CorrelationItem is one dimension value correlated with the filtered
// slice. TraceCount is the co-occurrence count: traces in both the slice
// and the dimension value.
type CorrelationItem struct {
	Dimension         string  `json:"dimension"`
	Value             string  `json:"value"`
	TraceCount        int64   `json:"trace_count"`
	PercentageOfSlice float64 `json:"percentage_of_slice"`
	PercentageOfTotal float64 `json:"percentage_of_total"`
	NPMI              float64 `json:"npmi"`
	Strength          string  `json:"strength"`
}

type CorrelationsResponse struct {
	SliceCount int64             `json:"slice_count"`
	TotalCount int64             `json:"total_count"`
	Data       []CorrelationItem `json:"data"`
}
