package insights

import (
	"sort"
	"strings"

	"tracelens/internal/dao"
	"tracelens/internal/model"
	"tracelens/pkg/chart"
	"tracelens/pkg/insightsclient"
	"tracelens/pkg/timerange"
)

func isReservedTag(key string) bool {
	return strings.HasPrefix(key, reservedTagPrefix)
}

func (s *Service) TagsDiscovery(req dao.InsightsRequest) (*insightsclient.TagDiscoveryResponse, error) {
	stats, err := model.GetTagKeyStats(req.ExperimentIds, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	resp := &insightsclient.TagDiscoveryResponse{Data: []insightsclient.TagInfo{}}
	for _, stat := range stats {
		if isReservedTag(stat.TagKey) {
			continue
		}
		resp.Data = append(resp.Data, insightsclient.TagInfo{
			TagKey:       stat.TagKey,
			TraceCount:   stat.TraceCount,
			UniqueValues: stat.UniqueValues,
		})
	}
	return resp, nil
}

func (s *Service) TagValues(req dao.TagRequest) (*insightsclient.TagValuesResponse, error) {
	total, err := model.CountTaggedTraces(req.ExperimentIds, req.StartTime, req.EndTime, req.TagKey)
	if err != nil {
		return nil, err
	}
	values, err := model.GetTagValueStats(req.ExperimentIds, req.StartTime, req.EndTime, req.TagKey, s.limit(req.MaxValues))
	if err != nil {
		return nil, err
	}

	resp := &insightsclient.TagValuesResponse{
		TagKey:      req.TagKey,
		TotalTraces: total,
		Data:        []insightsclient.ValueCount{},
	}
	for _, v := range values {
		pct := 0.0
		if total > 0 {
			pct = float64(v.Count) / float64(total)
		}
		resp.Data = append(resp.Data, insightsclient.ValueCount{
			Value:      v.TagValue,
			Count:      v.Count,
			Percentage: pct,
		})
	}
	return resp, nil
}

func (s *Service) TagMetrics(req dao.TagRequest, bucket timerange.Bucket) (*insightsclient.TagMetricsResponse, error) {
	top, err := model.GetTagValueStats(req.ExperimentIds, req.StartTime, req.EndTime, req.TagKey, s.limit(req.MaxValues))
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(top))
	for _, v := range top {
		values = append(values, v.TagValue)
	}

	resp := &insightsclient.TagMetricsResponse{TagKey: req.TagKey, TimeSeries: []chart.Point{}}
	if len(values) == 0 {
		return resp, nil
	}

	rows, err := model.CountTagValueBuckets(req.ExperimentIds, req.StartTime, req.EndTime, req.TagKey, values, bucket.SizeMs())
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Bucket < rows[j].Bucket })
	for _, row := range rows {
		resp.TimeSeries = append(resp.TimeSeries, chart.Point{
			TimeBucket: row.Bucket,
			Value:      float64(row.Count),
			Series:     row.TagValue,
		})
	}
	return resp, nil
}
