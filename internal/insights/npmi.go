package insights

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"tracelens/internal/dao"
	"tracelens/internal/model"
	"tracelens/pkg/insightsclient"
)

// ErrBadInput marks errors caused by the request rather than the store;
// handlers map it to 400.
var ErrBadInput = errors.New("bad input")

// NPMI is normalized pointwise mutual information between two events over
// total trials: log(p_joint/(p1*p2)) / -log(p_joint), in [-1, 1]. Perfect
// co-occurrence is 1, never co-occurring is -1, independence is 0.
func NPMI(joint, count1, count2, total int64) float64 {
	if total == 0 || count1 == 0 || count2 == 0 {
		return 0
	}
	if joint == 0 {
		return -1
	}
	pJoint := float64(joint) / float64(total)
	if pJoint >= 1 {
		return 1
	}
	p1 := float64(count1) / float64(total)
	p2 := float64(count2) / float64(total)
	return math.Log(pJoint/(p1*p2)) / -math.Log(pJoint)
}

// ParseFilter turns a wire filter string into a trace filter. Accepted forms
// are "status:<v>", "has_error:<v>", "trace.<field>:<v>" and "tag.<key>:<v>".
func ParseFilter(s string) (model.TraceFilter, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return model.TraceFilter{}, fmt.Errorf("%w: invalid filter %q", ErrBadInput, s)
	}
	dim, value := parts[0], parts[1]
	switch dim {
	case "status":
		dim = "trace.status"
	case "has_error":
		dim = "trace.has_error"
	}
	if err := validateDimension(dim); err != nil {
		return model.TraceFilter{}, err
	}
	return model.TraceFilter{Dimension: dim, Value: value}, nil
}

func validateDimension(dim string) error {
	if strings.HasPrefix(dim, "tag.") && len(dim) > len("tag.") {
		return nil
	}
	if dim == "trace.status" || dim == "trace.has_error" {
		return nil
	}
	return fmt.Errorf("%w: unknown dimension %q", ErrBadInput, dim)
}

func (s *Service) DimensionNPMI(req dao.NPMIRequest) (*insightsclient.NPMIResponse, error) {
	f1 := model.TraceFilter{Dimension: req.Filter1.Dimension, Value: req.Filter1.Value}
	f2 := model.TraceFilter{Dimension: req.Filter2.Dimension, Value: req.Filter2.Value}
	if err := validateDimension(f1.Dimension); err != nil {
		return nil, err
	}
	if err := validateDimension(f2.Dimension); err != nil {
		return nil, err
	}

	total, err := model.CountTracesMatching(req.ExperimentIds, req.StartTime, req.EndTime, nil)
	if err != nil {
		return nil, err
	}
	count1, err := model.CountTracesMatching(req.ExperimentIds, req.StartTime, req.EndTime, []model.TraceFilter{f1})
	if err != nil {
		return nil, err
	}
	count2, err := model.CountTracesMatching(req.ExperimentIds, req.StartTime, req.EndTime, []model.TraceFilter{f2})
	if err != nil {
		return nil, err
	}
	joint, err := model.CountTracesMatching(req.ExperimentIds, req.StartTime, req.EndTime, []model.TraceFilter{f1, f2})
	if err != nil {
		return nil, err
	}

	score := NPMI(joint, count1, count2, total)
	return &insightsclient.NPMIResponse{
		Filter1:    insightsclient.DimensionFilter{Dimension: f1.Dimension, Value: f1.Value},
		Filter2:    insightsclient.DimensionFilter{Dimension: f2.Dimension, Value: f2.Value},
		Count1:     count1,
		Count2:     count2,
		JointCount: joint,
		TotalCount: total,
		NPMI:       score,
		Strength:   insightsclient.Strength(score),
	}, nil
}

// Correlations finds the dimension values most correlated (by absolute NPMI)
// with the slice of traces matching the given filters.
func (s *Service) Correlations(req dao.CorrelationsRequest) (*insightsclient.CorrelationsResponse, error) {
	filters := make([]model.TraceFilter, 0, len(req.Filters))
	inSlice := make(map[string]bool, len(req.Filters))
	for _, raw := range req.Filters {
		f, err := ParseFilter(raw)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
		inSlice[f.Dimension+"\x00"+f.Value] = true
	}

	total, err := model.CountTracesMatching(req.ExperimentIds, req.StartTime, req.EndTime, nil)
	if err != nil {
		return nil, err
	}
	sliceCount, err := model.CountTracesMatching(req.ExperimentIds, req.StartTime, req.EndTime, filters)
	if err != nil {
		return nil, err
	}

	resp := &insightsclient.CorrelationsResponse{
		SliceCount: sliceCount,
		TotalCount: total,
		Data:       []insightsclient.CorrelationItem{},
	}
	if total == 0 || sliceCount == 0 {
		return resp, nil
	}

	candidates := []candidate{}

	// tag candidates come from two grouped queries: pair totals over the
	// window and pair counts inside the slice
	totals, err := model.GetTagPairStats(req.ExperimentIds, req.StartTime, req.EndTime, nil)
	if err != nil {
		return nil, err
	}
	joints, err := model.GetTagPairStats(req.ExperimentIds, req.StartTime, req.EndTime, filters)
	if err != nil {
		return nil, err
	}
	jointByPair := make(map[string]int64, len(joints))
	for _, pair := range joints {
		jointByPair[pair.TagKey+"\x00"+pair.TagValue] = pair.Count
	}
	for _, pair := range totals {
		if isReservedTag(pair.TagKey) {
			continue
		}
		dim := "tag." + pair.TagKey
		if inSlice[dim+"\x00"+pair.TagValue] {
			continue
		}
		candidates = append(candidates, candidate{
			dimension: dim,
			value:     pair.TagValue,
			count:     pair.Count,
			joint:     jointByPair[pair.TagKey+"\x00"+pair.TagValue],
		})
	}

	// builtin candidates: each observed trace status
	statuses, err := model.CountTraceStatuses(req.ExperimentIds, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	for _, sc := range statuses {
		if inSlice["trace.status\x00"+sc.Status] {
			continue
		}
		statusFilter := model.TraceFilter{Dimension: "trace.status", Value: sc.Status}
		joint, err := model.CountTracesMatching(req.ExperimentIds, req.StartTime, req.EndTime,
			append(append([]model.TraceFilter{}, filters...), statusFilter))
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate{
			dimension: "trace.status",
			value:     sc.Status,
			count:     sc.Count,
			joint:     joint,
		})
	}

	resp.Data = rankCorrelations(candidates, sliceCount, total, s.limit(req.MaxResults))
	return resp, nil
}

type candidate struct {
	dimension string
	value     string
	count     int64
	joint     int64
}

// rankCorrelations scores candidates against the slice and keeps the top
// entries by absolute NPMI. Candidates that never co-occur with the slice
// are dropped: they all score -1 and would crowd out real correlations.
func rankCorrelations(candidates []candidate, sliceCount, total int64, limit int) []insightsclient.CorrelationItem {
	items := []insightsclient.CorrelationItem{}
	for _, c := range candidates {
		if c.joint == 0 {
			continue
		}
		score := NPMI(c.joint, sliceCount, c.count, total)
		items = append(items, insightsclient.CorrelationItem{
			Dimension:         c.dimension,
			Value:             c.value,
			TraceCount:        c.joint,
			PercentageOfSlice: float64(c.joint) / float64(sliceCount),
			PercentageOfTotal: float64(c.joint) / float64(total),
			NPMI:              score,
			Strength:          insightsclient.Strength(score),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		ai, aj := math.Abs(items[i].NPMI), math.Abs(items[j].NPMI)
		if ai != aj {
			return ai > aj
		}
		if items[i].Dimension != items[j].Dimension {
			return items[i].Dimension < items[j].Dimension
		}
		return items[i].Value < items[j].Value
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
