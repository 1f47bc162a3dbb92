package insights

import (
	"sort"

	"tracelens/internal/dao"
	"tracelens/internal/model"
	"tracelens/pkg/chart"
	"tracelens/pkg/insightsclient"
	"tracelens/pkg/timerange"
)

func (s *Service) TrafficVolume(req dao.InsightsRequest, bucket timerange.Bucket) (*insightsclient.TrafficVolumeResponse, error) {
	rows, err := model.CountTraceStatusBuckets(req.ExperimentIds, req.StartTime, req.EndTime, bucket.SizeMs())
	if err != nil {
		return nil, err
	}

	resp := &insightsclient.TrafficVolumeResponse{TimeSeries: []chart.Point{}}
	for _, row := range rows {
		resp.Summary.Count += row.Count
		series := "ok"
		if row.Status == model.TraceStatusError {
			series = "error"
			resp.Summary.ErrorCount += row.Count
		} else {
			resp.Summary.OkCount += row.Count
		}
		resp.TimeSeries = append(resp.TimeSeries, chart.Point{
			TimeBucket: row.Bucket,
			Value:      float64(row.Count),
			Series:     series,
		})
	}
	return resp, nil
}

func (s *Service) TrafficLatency(req dao.InsightsRequest, bucket timerange.Bucket) (*insightsclient.TrafficLatencyResponse, error) {
	rows, err := model.GetOkLatencyRows(req.ExperimentIds, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	resp := &insightsclient.TrafficLatencyResponse{TimeSeries: []chart.Point{}}
	if len(rows) == 0 {
		return resp, nil
	}

	all := make([]float64, 0, len(rows))
	byBucket := make(map[int64][]float64)
	for _, row := range rows {
		all = append(all, row.ExecutionTimeMs)
		b := bucket.TruncateMs(row.TimestampMs)
		byBucket[b] = append(byBucket[b], row.ExecutionTimeMs)
	}

	sort.Float64s(all)
	resp.Summary = insightsclient.LatencySummary{
		P50: percentileSorted(all, 50),
		P90: percentileSorted(all, 90),
		P99: percentileSorted(all, 99),
		Avg: mean(all),
		Min: all[0],
		Max: all[len(all)-1],
	}

	buckets := make([]int64, 0, len(byBucket))
	for b := range byBucket {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })
	for _, b := range buckets {
		values := byBucket[b]
		sort.Float64s(values)
		for _, series := range []struct {
			name string
			p    float64
		}{{"p50", 50}, {"p90", 90}, {"p99", 99}} {
			resp.TimeSeries = append(resp.TimeSeries, chart.Point{
				TimeBucket: b,
				Value:      percentileSorted(values, series.p),
				Series:     series.name,
			})
		}
	}
	return resp, nil
}

func (s *Service) TrafficErrors(req dao.InsightsRequest, bucket timerange.Bucket) (*insightsclient.TrafficErrorsResponse, error) {
	rows, err := model.CountTraceStatusBuckets(req.ExperimentIds, req.StartTime, req.EndTime, bucket.SizeMs())
	if err != nil {
		return nil, err
	}

	type cell struct{ total, errors int64 }
	byBucket := make(map[int64]*cell)
	buckets := make([]int64, 0, len(byBucket))
	resp := &insightsclient.TrafficErrorsResponse{TimeSeries: []chart.Point{}}
	for _, row := range rows {
		c, ok := byBucket[row.Bucket]
		if !ok {
			c = &cell{}
			byBucket[row.Bucket] = c
			buckets = append(buckets, row.Bucket)
		}
		c.total += row.Count
		resp.Summary.TotalCount += row.Count
		if row.Status == model.TraceStatusError {
			c.errors += row.Count
			resp.Summary.ErrorCount += row.Count
		}
	}
	if resp.Summary.TotalCount > 0 {
		resp.Summary.ErrorRate = float64(resp.Summary.ErrorCount) / float64(resp.Summary.TotalCount)
	}

	sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })
	for _, b := range buckets {
		c := byBucket[b]
		rate := 0.0
		if c.total > 0 {
			rate = float64(c.errors) / float64(c.total)
		}
		resp.TimeSeries = append(resp.TimeSeries, chart.Point{TimeBucket: b, Value: rate})
	}
	return resp, nil
}
