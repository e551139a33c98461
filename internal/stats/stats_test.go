package stats

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

type fakeData struct {
	genes   []string
	hcc     map[string][]float64
	normal  map[string][]float64
	samples map[string][]float64
	ids     []string
}

func (f *fakeData) Genes() []string { return f.genes }

func (f *fakeData) HCC(g string) ([]float64, bool) {
	v, ok := f.hcc[g]
	return v, ok
}

func (f *fakeData) Normal(g string) ([]float64, bool) {
	v, ok := f.normal[g]
	return v, ok
}

func (f *fakeData) SampleIDs() []string { return f.ids }

func (f *fakeData) SampleValues(id string) ([]float64, bool) {
	v, ok := f.samples[id]
	return v, ok
}

// twoGenes is S1 (HCC): G1=2.0,G2=4.0 and S2 (normal): G1=1.0,G2=8.0.
func twoGenes() *fakeData {
	return &fakeData{
		genes:   []string{"G1", "G2"},
		hcc:     map[string][]float64{"G1": {2.0}, "G2": {4.0}},
		normal:  map[string][]float64{"G1": {1.0}, "G2": {8.0}},
		samples: map[string][]float64{"S1": {2.0, 4.0}, "S2": {1.0, 8.0}},
		ids:     []string{"S1", "S2"},
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func mustGet(t *testing.T, r *Result[float64], key string) float64 {
	t.Helper()
	v, ok := r.Get(key)
	if !ok {
		t.Fatalf("%s: missing key %q in %v", r.Metric, key, r.Keys())
	}
	return v
}

func TestTwoGeneScenario(t *testing.T) {
	ds := twoGenes()

	hcc, err := MeanHCC(ds, []string{"G1"})
	if err != nil {
		t.Fatalf("MeanHCC: %v", err)
	}
	if got := mustGet(t, hcc, "G1"); got != 2.0 {
		t.Fatalf("MeanHCC(G1) = %v, want 2.0", got)
	}
	normal, err := MeanNormal(ds, []string{"G1"})
	if err != nil {
		t.Fatalf("MeanNormal: %v", err)
	}
	if got := mustGet(t, normal, "G1"); got != 1.0 {
		t.Fatalf("MeanNormal(G1) = %v, want 1.0", got)
	}
	diff, err := Differential(ds, []string{"G1"})
	if err != nil {
		t.Fatalf("Differential: %v", err)
	}
	if got := mustGet(t, diff, "G1"); got != 2.0 {
		t.Fatalf("Differential(G1) = %v, want 2.0", got)
	}

	above, err := AboveThreshold(ds, 3.0)
	if err != nil {
		t.Fatalf("AboveThreshold: %v", err)
	}
	if above.Len() != 1 {
		t.Fatalf("AboveThreshold keys = %v, want only G2", above.Keys())
	}
	vals, ok := above.Get("G2")
	if !ok || !reflect.DeepEqual(vals, []float64{4.0, 8.0}) {
		t.Fatalf("AboveThreshold(G2) = %v, want [4 8]", vals)
	}
}

func TestMeanRoundsAndKeepsHeaderOutOfEntries(t *testing.T) {
	ds := &fakeData{
		genes:  []string{"A", "B"},
		hcc:    map[string][]float64{"A": {1, 2}, "B": {0.1}},
		normal: map[string][]float64{"A": {2}, "B": {0.2, 0.3}},
	}
	res, err := Mean(ds, []string{"A", "B"})
	if err != nil {
		t.Fatalf("Mean: %v", err)
	}
	if res.Len() != 2 {
		t.Fatalf("Len = %d, want 2", res.Len())
	}
	if k, v := res.Columns(); k != "Desired gene name" || v != "Mean expression" {
		t.Fatalf("Columns = %q, %q", k, v)
	}
	if !reflect.DeepEqual(res.Keys(), []string{"A", "B"}) {
		t.Fatalf("Keys = %v", res.Keys())
	}
	if got := mustGet(t, res, "A"); got != 1.667 {
		t.Fatalf("Mean(A) = %v, want 1.667", got)
	}
	if got := mustGet(t, res, "B"); math.Abs(got-0.2) > 0.0005 {
		t.Fatalf("Mean(B) = %v, want ~0.2", got)
	}
}

func TestMeanDuplicateGeneKeepsFirstPosition(t *testing.T) {
	ds := twoGenes()
	res, err := Mean(ds, []string{"G2", "G1", "G2"})
	if err != nil {
		t.Fatalf("Mean: %v", err)
	}
	if !reflect.DeepEqual(res.Keys(), []string{"G2", "G1"}) {
		t.Fatalf("Keys = %v", res.Keys())
	}
}

func TestMedian(t *testing.T) {
	ds := &fakeData{
		hcc:    map[string][]float64{"odd": {3, 1}, "even": {4, 1}, "one": {7}, "frac": {1}},
		normal: map[string][]float64{"odd": {2}, "even": {3, 2}, "one": {}, "frac": {2.0005}},
	}
	res, err := Median(ds, []string{"odd", "even", "one", "frac"})
	if err != nil {
		t.Fatalf("Median: %v", err)
	}
	want := map[string]float64{"odd": 2, "even": 2.5, "one": 7, "frac": 1.5}
	for g, w := range want {
		if got := mustGet(t, res, g); !approx(got, w) {
			t.Fatalf("Median(%s) = %v, want %v", g, got, w)
		}
	}
}

func TestVarianceUsesRoundedMean(t *testing.T) {
	ds := &fakeData{
		hcc:    map[string][]float64{"A": {1, 2}, "B": {2}, "C": {5}},
		normal: map[string][]float64{"A": {2}, "B": {1}, "C": {5}},
	}
	variance, std, err := Variance(ds, []string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("Variance: %v", err)
	}
	m := 1.667
	wantA := ((1-m)*(1-m) + 2*(2-m)*(2-m)) / 3
	if got := mustGet(t, variance, "A"); !approx(got, wantA) {
		t.Fatalf("Variance(A) = %v, want %v", got, wantA)
	}
	if got := mustGet(t, variance, "B"); !approx(got, 0.25) {
		t.Fatalf("Variance(B) = %v, want 0.25", got)
	}
	if got := mustGet(t, std, "B"); !approx(got, 0.5) {
		t.Fatalf("StdDev(B) = %v, want 0.5", got)
	}
	if got := mustGet(t, variance, "C"); got != 0 {
		t.Fatalf("Variance(C) = %v, want 0", got)
	}
	for _, e := range variance.Entries() {
		if e.Value < 0 {
			t.Fatalf("negative variance for %s: %v", e.Key, e.Value)
		}
	}
}

func TestGeneNotFound(t *testing.T) {
	ds := &fakeData{
		genes:  []string{"G1", "ONLYH"},
		hcc:    map[string][]float64{"G1": {1}, "ONLYH": {3}},
		normal: map[string][]float64{"G1": {2}},
	}
	tests := []struct {
		name      string
		run       func() error
		wantGene  string
		wantGroup Group
	}{
		{"mean missing everywhere", func() error { _, err := Mean(ds, []string{"G1", "NOPE"}); return err }, "NOPE", ""},
		{"median missing normal", func() error { _, err := Median(ds, []string{"ONLYH"}); return err }, "ONLYH", GroupNormal},
		{"variance missing normal", func() error { _, _, err := Variance(ds, []string{"ONLYH"}); return err }, "ONLYH", GroupNormal},
		{"mean normal", func() error { _, err := MeanNormal(ds, []string{"ONLYH"}); return err }, "ONLYH", GroupNormal},
		{"mean hcc", func() error { _, err := MeanHCC(ds, []string{"NOPE"}); return err }, "NOPE", GroupHCC},
		{"differential", func() error { _, err := Differential(ds, []string{"G1", "ONLYH"}); return err }, "ONLYH", GroupNormal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			var nf *GeneNotFoundError
			if !errors.As(err, &nf) {
				t.Fatalf("err = %v, want GeneNotFoundError", err)
			}
			if nf.Gene != tc.wantGene || nf.Group != tc.wantGroup {
				t.Fatalf("got gene %q group %q, want %q %q", nf.Gene, nf.Group, tc.wantGene, tc.wantGroup)
			}
			if !IsStatsError(err) {
				t.Fatalf("IsStatsError(%v) = false", err)
			}
		})
	}

	// A gene present in only one group is still fine for that group's mean.
	res, err := MeanHCC(ds, []string{"ONLYH"})
	if err != nil {
		t.Fatalf("MeanHCC(ONLYH): %v", err)
	}
	if got := mustGet(t, res, "ONLYH"); got != 3 {
		t.Fatalf("MeanHCC(ONLYH) = %v", got)
	}
}

func TestNoPartialResultOnError(t *testing.T) {
	res, err := Mean(twoGenes(), []string{"G1", "G2", "MISSING"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if res != nil {
		t.Fatalf("expected nil result, got %v", res.Keys())
	}
}

func TestEmptyExpression(t *testing.T) {
	ds := &fakeData{
		hcc:    map[string][]float64{"E": {}},
		normal: map[string][]float64{"E": {}},
	}
	for name, run := range map[string]func() error{
		"mean":     func() error { _, err := Mean(ds, []string{"E"}); return err },
		"median":   func() error { _, err := Median(ds, []string{"E"}); return err },
		"variance": func() error { _, _, err := Variance(ds, []string{"E"}); return err },
		"hcc":      func() error { _, err := MeanHCC(ds, []string{"E"}); return err },
	} {
		var ee *EmptyExpressionError
		if err := run(); !errors.As(err, &ee) {
			t.Fatalf("%s: err = %v, want EmptyExpressionError", name, err)
		}
	}
}

func TestDifferentialZeroNormalMean(t *testing.T) {
	ds := &fakeData{
		hcc:    map[string][]float64{"OK": {2}, "Z": {1}},
		normal: map[string][]float64{"OK": {1}, "Z": {0.0001, -0.0001}},
	}
	_, err := Differential(ds, []string{"OK", "Z"})
	var dz *DivisionByZeroError
	if !errors.As(err, &dz) || dz.Gene != "Z" {
		t.Fatalf("err = %v, want DivisionByZeroError for Z", err)
	}
	res, err := Differential(ds, []string{"OK"})
	if err != nil {
		t.Fatalf("Differential(OK): %v", err)
	}
	if k, v := res.Columns(); k != "Gene name" || v != "Differential value" {
		t.Fatalf("Columns = %q, %q", k, v)
	}
}

func TestNormalizedScore(t *testing.T) {
	tests := []struct {
		ratio, want float64
	}{
		{4, 4},
		{1, 1},
		{0.5, 2},
		{0.3, 3.333},
		{0, math.Inf(1)},
	}
	for _, tc := range tests {
		if got := NormalizedScore(tc.ratio); got != tc.want {
			t.Fatalf("NormalizedScore(%v) = %v, want %v", tc.ratio, got, tc.want)
		}
	}
}

func rankingData() *fakeData {
	return &fakeData{
		genes: []string{"A", "B", "C", "D", "E"},
		hcc:   map[string][]float64{"A": {4}, "B": {1}, "C": {2}, "D": {3}, "E": {1}},
		// ratios: A=4, B=0.2, C=1, D=3, E=0.25
		normal: map[string][]float64{"A": {1}, "B": {5}, "C": {2}, "D": {1}, "E": {4}},
	}
}

func TestTopDifferential(t *testing.T) {
	ds := rankingData()

	top, err := TopDifferential(ds, ds.Genes(), 3)
	if err != nil {
		t.Fatalf("TopDifferential: %v", err)
	}
	// B scores 5, A and E tie at 4 and keep gene order.
	if !reflect.DeepEqual(top.Keys(), []string{"B", "A", "E"}) {
		t.Fatalf("Keys = %v", top.Keys())
	}
	if got := mustGet(t, top, "B"); got != 0.2 {
		t.Fatalf("reported ratio for B = %v, want original 0.2", got)
	}

	all, err := TopDifferential(ds, ds.Genes(), 10)
	if err != nil {
		t.Fatalf("TopDifferential(10): %v", err)
	}
	if !reflect.DeepEqual(all.Keys(), []string{"B", "A", "E", "D", "C"}) {
		t.Fatalf("Keys = %v", all.Keys())
	}
	prev := math.Inf(1)
	for _, e := range all.Entries() {
		s := NormalizedScore(e.Value)
		if s > prev {
			t.Fatalf("scores not non-increasing at %s", e.Key)
		}
		prev = s
	}
}

func TestTopDifferentialInvalidCount(t *testing.T) {
	ds := rankingData()
	for _, n := range []int{0, -3} {
		_, err := TopDifferential(ds, ds.Genes(), n)
		var ia *InvalidArgumentError
		if !errors.As(err, &ia) || ia.Name != "count" {
			t.Fatalf("count %d: err = %v, want InvalidArgumentError", n, err)
		}
	}
}

func TestAboveThresholdMonotonic(t *testing.T) {
	ds := &fakeData{
		genes:  []string{"A", "B", "C"},
		hcc:    map[string][]float64{"A": {1, 5, 9}, "B": {0.5}, "C": {3}},
		normal: map[string][]float64{"A": {2}, "B": {0.1}},
	}
	prev := map[string]int{}
	for i, thr := range []float64{0, 1, 2.5, 5, 100} {
		res, err := AboveThreshold(ds, thr)
		if err != nil {
			t.Fatalf("AboveThreshold(%v): %v", thr, err)
		}
		for _, e := range res.Entries() {
			if len(e.Value) == 0 {
				t.Fatalf("threshold %v: empty list for %s", thr, e.Key)
			}
			if i > 0 && len(e.Value) > prev[e.Key] {
				t.Fatalf("threshold %v: %s grew from %d to %d", thr, e.Key, prev[e.Key], len(e.Value))
			}
		}
		next := map[string]int{}
		for _, e := range res.Entries() {
			next[e.Key] = len(e.Value)
		}
		prev = next
	}

	res, err := AboveThreshold(ds, 2.5)
	if err != nil {
		t.Fatalf("AboveThreshold: %v", err)
	}
	if !reflect.DeepEqual(res.Keys(), []string{"A", "C"}) {
		t.Fatalf("Keys = %v", res.Keys())
	}
	if v, _ := res.Get("A"); !reflect.DeepEqual(v, []float64{5, 9}) {
		t.Fatalf("A = %v", v)
	}

	if _, err := AboveThreshold(ds, -0.1); err == nil {
		t.Fatalf("expected error for negative threshold")
	}
}

func TestSampleMinMax(t *testing.T) {
	minimum, maximum, err := SampleMinMax(twoGenes())
	if err != nil {
		t.Fatalf("SampleMinMax: %v", err)
	}
	for _, id := range []string{"S1", "S2"} {
		lo, hi := mustGet(t, minimum, id), mustGet(t, maximum, id)
		if lo > hi {
			t.Fatalf("%s: min %v > max %v", id, lo, hi)
		}
	}
	if got := mustGet(t, maximum, "S2"); got != 8 {
		t.Fatalf("max(S2) = %v", got)
	}

	empty := &fakeData{ids: []string{"X"}, samples: map[string][]float64{"X": {}}}
	_, _, err = SampleMinMax(empty)
	var ee *EmptyExpressionError
	if !errors.As(err, &ee) || ee.Name != "X" {
		t.Fatalf("err = %v, want EmptyExpressionError for X", err)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{2.0, "2.0"},
		{0.25, "0.25"},
		{-1.5, "-1.5"},
		{math.Inf(1), "inf"},
		{[]float64{4, 8.5}, "[4.0, 8.5]"},
		{"x", "x"},
	}
	for _, tc := range tests {
		if got := FormatValue(tc.in); got != tc.want {
			t.Fatalf("FormatValue(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
