// Package chart shapes flat analytics responses into chart-ready structures:
// per-series point lists, axis ticks with thinned labels, and display-unit
// formatting. Everything here is pure; inputs are never mutated.
package chart

// Point is one flat time-series sample as returned by the analytics API.
// Series is optional; unnamed points fall into a single default series.
type Point struct {
	TimeBucket int64   `json:"time_bucket"`
	Value      float64 `json:"value"`
	Series     string  `json:"series,omitempty"`
}

// SeriesPoint is a point inside a grouped series.
type SeriesPoint struct {
	TimeBucket int64   `json:"time_bucket"`
	Value      float64 `json:"value"`
}

// Series is an ordered run of points sharing one series name.
type Series struct {
	Name   string        `json:"name"`
	Points []SeriesPoint `json:"points"`
}

// GroupSeries partitions points into one series per distinct name, keeping
// series in first-appearance order and points in input order within each
// series. Grouping already-grouped data is a no-op.
func GroupSeries(points []Point) []Series {
	index := make(map[string]int, 4)
	out := make([]Series, 0, 4)
	for _, p := range points {
		i, ok := index[p.Series]
		if !ok {
			i = len(out)
			index[p.Series] = i
			out = append(out, Series{Name: p.Series})
		}
		out[i].Points = append(out[i].Points, SeriesPoint{TimeBucket: p.TimeBucket, Value: p.Value})
	}
	return out
}
