package insights

import (
	"fmt"
	"sort"

	"tracelens/internal/dao"
	"tracelens/internal/model"
	"tracelens/pkg/chart"
	"tracelens/pkg/insightsclient"
	"tracelens/pkg/timerange"
)

func (s *Service) AssessmentsDiscovery(req dao.InsightsRequest) (*insightsclient.AssessmentDiscoveryResponse, error) {
	rows, err := model.GetAssessments(req.ExperimentIds, req.StartTime, req.EndTime, "")
	if err != nil {
		return nil, err
	}

	type agg struct {
		dataType string
		sources  map[string]bool
		traces   map[string]bool
	}
	byName := make(map[string]*agg)
	order := []string{}
	for _, row := range rows {
		a, ok := byName[row.Name]
		if !ok {
			a = &agg{dataType: row.DataType, sources: map[string]bool{}, traces: map[string]bool{}}
			byName[row.Name] = a
			order = append(order, row.Name)
		}
		a.sources[row.Source] = true
		a.traces[row.RequestId] = true
	}

	resp := &insightsclient.AssessmentDiscoveryResponse{Data: []insightsclient.AssessmentInfo{}}
	for _, name := range order {
		a := byName[name]
		sources := make([]string, 0, len(a.sources))
		for src := range a.sources {
			sources = append(sources, src)
		}
		sort.Strings(sources)
		resp.Data = append(resp.Data, insightsclient.AssessmentInfo{
			AssessmentName: name,
			AssessmentType: a.dataType,
			Sources:        sources,
			TraceCount:     int64(len(a.traces)),
		})
	}
	sort.Slice(resp.Data, func(i, j int) bool {
		if resp.Data[i].TraceCount != resp.Data[j].TraceCount {
			return resp.Data[i].TraceCount > resp.Data[j].TraceCount
		}
		return resp.Data[i].AssessmentName < resp.Data[j].AssessmentName
	})
	return resp, nil
}

func (s *Service) AssessmentMetrics(req dao.AssessmentMetricsRequest, bucket timerange.Bucket) (*insightsclient.AssessmentMetricsResponse, error) {
	rows, err := model.GetAssessments(req.ExperimentIds, req.StartTime, req.EndTime, req.AssessmentName)
	if err != nil {
		return nil, err
	}

	resp := &insightsclient.AssessmentMetricsResponse{
		AssessmentName: req.AssessmentName,
		TimeSeries:     []chart.Point{},
	}
	if len(rows) == 0 {
		return resp, nil
	}
	resp.AssessmentType = rows[0].DataType
	resp.Summary.Count = int64(len(rows))

	switch resp.AssessmentType {
	case model.AssessmentTypeBoolean, model.AssessmentTypePassFail:
		s.failureMetrics(rows, bucket, resp)
	case model.AssessmentTypeNumeric:
		s.numericMetrics(rows, bucket, resp)
	case model.AssessmentTypeString:
		s.stringMetrics(rows, bucket, resp)
	default:
		return nil, fmt.Errorf("unknown assessment type: %q", resp.AssessmentType)
	}
	return resp, nil
}

func assessmentFailed(row model.Assessment) bool {
	switch row.DataType {
	case model.AssessmentTypeBoolean:
		return row.BoolValue != nil && !*row.BoolValue
	case model.AssessmentTypePassFail:
		return row.StringValue != nil && *row.StringValue == model.AssessmentValueFail
	}
	return false
}

func (s *Service) failureMetrics(rows []model.Assessment, bucket timerange.Bucket, resp *insightsclient.AssessmentMetricsResponse) {
	type cell struct{ total, failed int64 }
	byBucket := make(map[int64]*cell)
	var failed int64
	for _, row := range rows {
		b := bucket.TruncateMs(row.TimestampMs)
		c, ok := byBucket[b]
		if !ok {
			c = &cell{}
			byBucket[b] = c
		}
		c.total++
		if assessmentFailed(row) {
			c.failed++
			failed++
		}
	}
	rate := float64(failed) / float64(len(rows))
	resp.Summary.FailureRate = &rate

	for _, b := range sortedKeys(byBucket) {
		c := byBucket[b]
		resp.TimeSeries = append(resp.TimeSeries, chart.Point{
			TimeBucket: b,
			Value:      float64(c.failed) / float64(c.total),
		})
	}
}

func (s *Service) numericMetrics(rows []model.Assessment, bucket timerange.Bucket, resp *insightsclient.AssessmentMetricsResponse) {
	all := []float64{}
	byBucket := make(map[int64][]float64)
	for _, row := range rows {
		if row.NumericValue == nil {
			continue
		}
		all = append(all, *row.NumericValue)
		b := bucket.TruncateMs(row.TimestampMs)
		byBucket[b] = append(byBucket[b], *row.NumericValue)
	}
	if len(all) == 0 {
		return
	}
	p50, p90, p99 := Percentile(all, 50), Percentile(all, 90), Percentile(all, 99)
	avg := mean(all)
	resp.Summary.P50, resp.Summary.P90, resp.Summary.P99, resp.Summary.Avg = &p50, &p90, &p99, &avg

	for _, b := range sortedKeys(byBucket) {
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
}

func (s *Service) stringMetrics(rows []model.Assessment, bucket timerange.Bucket, resp *insightsclient.AssessmentMetricsResponse) {
	counts := make(map[string]int64)
	type key struct {
		bucket int64
		value  string
	}
	bucketCounts := make(map[key]int64)
	var total int64
	for _, row := range rows {
		if row.StringValue == nil {
			continue
		}
		v := *row.StringValue
		counts[v]++
		total++
		bucketCounts[key{bucket.TruncateMs(row.TimestampMs), v}]++
	}
	if total == 0 {
		return
	}

	resp.Summary.TopValues = topValueCounts(counts, total, s.maxValues)
	top := make(map[string]bool, len(resp.Summary.TopValues))
	for _, vc := range resp.Summary.TopValues {
		top[vc.Value] = true
	}

	keys := make([]key, 0, len(bucketCounts))
	for k := range bucketCounts {
		if top[k.value] {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].bucket != keys[j].bucket {
			return keys[i].bucket < keys[j].bucket
		}
		return keys[i].value < keys[j].value
	})
	for _, k := range keys {
		resp.TimeSeries = append(resp.TimeSeries, chart.Point{
			TimeBucket: k.bucket,
			Value:      float64(bucketCounts[k]),
			Series:     k.value,
		})
	}
}

// topValueCounts ranks values by count descending, ties broken by value, and
// reports each count's share of total as a 0-1 fraction.
func topValueCounts(counts map[string]int64, total int64, limit int) []insightsclient.ValueCount {
	out := make([]insightsclient.ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, insightsclient.ValueCount{
			Value:      v,
			Count:      c,
			Percentage: float64(c) / float64(total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
