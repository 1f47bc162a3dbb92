package insights

import (
	"tracelens/internal/dao"
	"tracelens/internal/model"
	"tracelens/pkg/chart"
	"tracelens/pkg/insightsclient"
	"tracelens/pkg/timerange"
)

func (s *Service) TokenUsage(req dao.InsightsRequest, bucket timerange.Bucket) (*insightsclient.TokenUsageResponse, error) {
	rows, err := model.GetTokenUsageBuckets(req.ExperimentIds, req.StartTime, req.EndTime, bucket.SizeMs())
	if err != nil {
		return nil, err
	}
	return tokenUsageFromBuckets(rows), nil
}

func tokenUsageFromBuckets(rows []model.BucketTokenUsage) *insightsclient.TokenUsageResponse {
	resp := &insightsclient.TokenUsageResponse{TimeSeries: []chart.Point{}}
	var traces int64
	for _, row := range rows {
		resp.Summary.TotalInputTokens += row.InputTokens
		resp.Summary.TotalOutputTokens += row.OutputTokens
		traces += row.TraceCount
		resp.TimeSeries = append(resp.TimeSeries,
			chart.Point{TimeBucket: row.Bucket, Value: float64(row.InputTokens), Series: "input"},
			chart.Point{TimeBucket: row.Bucket, Value: float64(row.OutputTokens), Series: "output"},
		)
	}
	resp.Summary.TotalTokens = resp.Summary.TotalInputTokens + resp.Summary.TotalOutputTokens
	if traces > 0 {
		resp.Summary.AvgInputTokens = float64(resp.Summary.TotalInputTokens) / float64(traces)
		resp.Summary.AvgOutputTokens = float64(resp.Summary.TotalOutputTokens) / float64(traces)
	}
	return resp
}
