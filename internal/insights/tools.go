package insights

import (
	"sort"

	"tracelens/internal/dao"
	"tracelens/internal/model"
	"tracelens/pkg/chart"
	"tracelens/pkg/insightsclient"
	"tracelens/pkg/timerange"
)

func (s *Service) ToolsDiscovery(req dao.InsightsRequest) (*insightsclient.ToolDiscoveryResponse, error) {
	spans, err := model.GetToolSpans(req.ExperimentIds, req.StartTime, req.EndTime, "")
	if err != nil {
		return nil, err
	}

	byName := make(map[string][]model.Span)
	order := []string{}
	for _, span := range spans {
		if _, ok := byName[span.Name]; !ok {
			order = append(order, span.Name)
		}
		byName[span.Name] = append(byName[span.Name], span)
	}

	resp := &insightsclient.ToolDiscoveryResponse{Data: []insightsclient.ToolInfo{}}
	for _, name := range order {
		resp.Data = append(resp.Data, toolAggregate(name, byName[name]))
	}
	sort.Slice(resp.Data, func(i, j int) bool {
		if resp.Data[i].TotalCalls != resp.Data[j].TotalCalls {
			return resp.Data[i].TotalCalls > resp.Data[j].TotalCalls
		}
		return resp.Data[i].ToolName < resp.Data[j].ToolName
	})
	return resp, nil
}

func (s *Service) ToolMetrics(req dao.ToolMetricsRequest, bucket timerange.Bucket) (*insightsclient.ToolMetricsResponse, error) {
	spans, err := model.GetToolSpans(req.ExperimentIds, req.StartTime, req.EndTime, req.ToolName)
	if err != nil {
		return nil, err
	}

	info := toolAggregate(req.ToolName, spans)
	info.VolumeSeries = []chart.Point{}
	info.LatencySeries = []chart.Point{}
	info.ErrorSeries = []chart.Point{}

	type cell struct {
		durations []float64
		errors    int64
	}
	byBucket := make(map[int64]*cell)
	for _, span := range spans {
		b := bucket.TruncateMs(span.TimestampMs)
		c, ok := byBucket[b]
		if !ok {
			c = &cell{}
			byBucket[b] = c
		}
		c.durations = append(c.durations, span.DurationMs)
		if span.Status == model.SpanStatusError {
			c.errors++
		}
	}
	for _, b := range sortedKeys(byBucket) {
		c := byBucket[b]
		total := int64(len(c.durations))
		info.VolumeSeries = append(info.VolumeSeries, chart.Point{TimeBucket: b, Value: float64(total)})
		info.LatencySeries = append(info.LatencySeries, chart.Point{TimeBucket: b, Value: Percentile(c.durations, 50), Series: "p50"})
		info.ErrorSeries = append(info.ErrorSeries, chart.Point{TimeBucket: b, Value: float64(c.errors) / float64(total)})
	}
	return &insightsclient.ToolMetricsResponse{Tool: info}, nil
}

func toolAggregate(name string, spans []model.Span) insightsclient.ToolInfo {
	info := insightsclient.ToolInfo{ToolName: name}
	if len(spans) == 0 {
		return info
	}
	durations := make([]float64, 0, len(spans))
	for _, span := range spans {
		durations = append(durations, span.DurationMs)
		if span.Status == model.SpanStatusError {
			info.ErrorCalls++
		}
	}
	info.TotalCalls = int64(len(spans))
	info.ErrorRate = float64(info.ErrorCalls) / float64(info.TotalCalls)
	sort.Float64s(durations)
	info.LatencyP50 = percentileSorted(durations, 50)
	info.LatencyP90 = percentileSorted(durations, 90)
	info.LatencyP99 = percentileSorted(durations, 99)
	return info
}
