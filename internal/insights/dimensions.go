package insights

import (
	"sort"
	"strconv"
	"strings"

	"tracelens/internal/dao"
	"tracelens/internal/model"
	"tracelens/pkg/insightsclient"
)

const (
	dimensionSourceTag   = "tag"
	dimensionSourceTrace = "trace"

	dataTypeBoolean = "boolean"
	dataTypeNumeric = "numeric"
	dataTypeString  = "string"
)

func (s *Service) DimensionsDiscovery(req dao.InsightsRequest) (*insightsclient.DimensionDiscoveryResponse, error) {
	pairs, err := model.GetTagPairStats(req.ExperimentIds, req.StartTime, req.EndTime, nil)
	if err != nil {
		return nil, err
	}

	valuesByKey := make(map[string][]string)
	for _, pair := range pairs {
		if isReservedTag(pair.TagKey) {
			continue
		}
		valuesByKey[pair.TagKey] = append(valuesByKey[pair.TagKey], pair.TagValue)
	}

	resp := &insightsclient.DimensionDiscoveryResponse{
		Data: []insightsclient.Dimension{
			{Name: "trace.status", Source: dimensionSourceTrace, DataType: dataTypeString},
			{Name: "trace.has_error", Source: dimensionSourceTrace, DataType: dataTypeBoolean},
		},
	}

	keys := make([]string, 0, len(valuesByKey))
	for key := range valuesByKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		resp.Data = append(resp.Data, insightsclient.Dimension{
			Name:     "tag." + key,
			Source:   dimensionSourceTag,
			DataType: inferDataType(valuesByKey[key]),
		})
	}
	return resp, nil
}

// inferDataType guesses a dimension's type from its observed values: all
// true/false is boolean, all parseable numbers is numeric, anything else is
// string. An empty value set is string.
func inferDataType(values []string) string {
	if len(values) == 0 {
		return dataTypeString
	}
	boolean, numeric := true, true
	for _, v := range values {
		lower := strings.ToLower(v)
		if lower != "true" && lower != "false" {
			boolean = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			numeric = false
		}
		if !boolean && !numeric {
			return dataTypeString
		}
	}
	if boolean {
		return dataTypeBoolean
	}
	return dataTypeNumeric
}
