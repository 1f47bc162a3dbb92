package dao

// InsightsRequest is the common body every insights endpoint accepts. The
// experiment id list is mandatory; requests without one are rejected before
// any query runs.
type InsightsRequest struct {
	// experiment ids to aggregate over
	ExperimentIds []string `json:"experiment_ids" binding:"required,min=1"`
	// window start, epoch ms; nil means unbounded
	StartTime *int64 `json:"start_time"`
	// window end, epoch ms; nil means unbounded
	EndTime *int64 `json:"end_time"`
	// aggregation bucket: hour, day or week
	TimeBucket string `json:"time_bucket"`
}

type AssessmentMetricsRequest struct {
	InsightsRequest
	// assessment name as discovered
	AssessmentName string `json:"assessment_name" binding:"required"`
}

type ToolMetricsRequest struct {
	InsightsRequest
	// tool name; empty aggregates across all tools
	ToolName string `json:"tool_name"`
}

type TagRequest struct {
	InsightsRequest
	// tag key as discovered
	TagKey string `json:"tag_key" binding:"required"`
	// cap on distinct values returned; 0 uses the server default
	MaxValues int `json:"max_values"`
}

type DimensionFilterSpec struct {
	// dimension name: tag.<key>, trace.status or trace.has_error
	Dimension string `json:"dimension" binding:"required"`
	// the value the dimension must take
	Value string `json:"value" binding:"required"`
}

type NPMIRequest struct {
	InsightsRequest
	Filter1 DimensionFilterSpec `json:"filter1" binding:"required"`
	Filter2 DimensionFilterSpec `json:"filter2" binding:"required"`
}

type CorrelationsRequest struct {
	InsightsRequest
	// filter strings defining the slice, e.g. "status:ERROR", "tag.model:gpt-4o"
	Filters []string `json:"filters" binding:"required,min=1"`
	// cap on returned correlation items; 0 uses the server default
	MaxResults int `json:"max_results"`
}
