package stratum

import (
	"sort"
	"strings"
)

// LayerRecord is a layer row as the model store supplies it.
type LayerRecord struct {
	Name     string  `json:"layer_name"`
	Distance float64 `json:"layer_distance"`
	Depth    float64 `json:"layer_depth"`
	Type     string  `json:"layer_type,omitempty"`
}

// FromRecords converts store rows to definitions, preserving order. A
// record whose type matches analysisType (case-insensitive) or has no type
// becomes an analysis layer; anything else is display only.
func FromRecords(records []LayerRecord, analysisType string) []Definition {
	defs := make([]Definition, len(records))
	for i, r := range records {
		kind := KindDisplay
		if r.Type == "" || strings.EqualFold(r.Type, analysisType) {
			kind = KindAnalysis
		}
		defs[i] = Definition{
			Name:               r.Name,
			DepthFromReference: r.Distance,
			Thickness:          r.Depth,
			Order:              i,
			Kind:               kind,
		}
	}
	return defs
}

// AnalysisLayers keeps only the classification layers, in order.
func AnalysisLayers(defs []Definition) []Definition {
	var out []Definition
	for _, d := range defs {
		if d.Kind == KindAnalysis || d.Kind == "" {
			out = append(out, d)
		}
	}
	return out
}

// Tally counts classification results for reporting.
type Tally struct {
	Total      int
	Unmatched  int
	OutOfRange int
	ByStratum  map[string]int
}

// Summarize tallies results.
func Summarize(results []Result) Tally {
	t := Tally{Total: len(results), ByStratum: make(map[string]int)}
	for _, r := range results {
		switch r.Kind {
		case Matched:
			t.ByStratum[r.Stratum]++
		case Unmatched:
			t.Unmatched++
		case OutOfRange:
			t.OutOfRange++
		}
	}
	return t
}

// Matched returns the total number of matched points.
func (t Tally) Matched() int {
	return t.Total - t.Unmatched - t.OutOfRange
}

// Names returns the matched stratum names sorted by name.
func (t Tally) Names() []string {
	names := make([]string, 0, len(t.ByStratum))
	for n := range t.ByStratum {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
