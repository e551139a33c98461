// Package stats computes descriptive expression metrics over a loaded dataset.
//
// Every function takes the dataset explicitly and returns a fresh Result; no
// state is shared between calls, so concurrent read-only use is safe as long
// as the dataset itself is not mutated. Functions fail on the first invalid
// gene or argument and never return partial results.
package stats

import (
	"math"
	"sort"

	mfstats "github.com/montanaflynn/stats"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
)

// Expressions is a read-only view of per-gene values split by tissue group.
// A gene absent from a group reports ok == false, which is distinct from a
// present gene with no values.
type Expressions interface {
	Genes() []string
	HCC(gene string) ([]float64, bool)
	Normal(gene string) ([]float64, bool)
}

// Samples is a read-only view of per-sample value sequences.
type Samples interface {
	SampleIDs() []string
	SampleValues(id string) ([]float64, bool)
}

// Column headers used by the results.
const (
	desiredGeneColumn = "Desired gene name"
	geneColumn        = "Gene name"
	sampleColumn      = "Sample ID"
)

// Mean returns the mean of the combined HCC and normal values per gene,
// rounded to 3 decimals.
func Mean(ds Expressions, genes []string) (*Result[float64], error) {
	res := newResult[float64](desiredGeneColumn, "Mean expression", len(genes))
	for _, g := range genes {
		vals, err := combined(ds, g, "mean")
		if err != nil {
			return nil, err
		}
		res.set(g, round3(mean(vals)))
	}
	return res, nil
}

// Median returns the median of the combined values per gene, rounded to 3
// decimals. Even-length sequences average the two middle elements.
func Median(ds Expressions, genes []string) (*Result[float64], error) {
	res := newResult[float64](desiredGeneColumn, "Median expression", len(genes))
	for _, g := range genes {
		vals, err := combined(ds, g, "median")
		if err != nil {
			return nil, err
		}
		res.set(g, round3(median(vals)))
	}
	return res, nil
}

// Variance returns the population variance and standard deviation per gene.
// Deviations are taken from the rounded Mean result; neither output is rounded.
func Variance(ds Expressions, genes []string) (variance, stdDev *Result[float64], err error) {
	means, err := Mean(ds, genes)
	if err != nil {
		return nil, nil, err
	}
	variance = newResult[float64](desiredGeneColumn, "Variance of expression", len(genes))
	stdDev = newResult[float64](desiredGeneColumn, "Standard deviation of expression", len(genes))
	for _, g := range genes {
		vals, err := combined(ds, g, "variance")
		if err != nil {
			return nil, nil, err
		}
		m, _ := means.Get(g)
		var ss float64
		for _, v := range vals {
			d := v - m
			ss += d * d
		}
		v := ss / float64(len(vals))
		variance.set(g, v)
		stdDev.set(g, math.Sqrt(v))
	}
	return variance, stdDev, nil
}

// MeanHCC returns the per-gene mean of the HCC group only, rounded to 3 decimals.
func MeanHCC(ds Expressions, genes []string) (*Result[float64], error) {
	return groupMean(genes, GroupHCC, ds.HCC, "Mean expression for HCC type")
}

// MeanNormal returns the per-gene mean of the normal group only, rounded to 3 decimals.
func MeanNormal(ds Expressions, genes []string) (*Result[float64], error) {
	return groupMean(genes, GroupNormal, ds.Normal, "Mean expression for normal type")
}

func groupMean(genes []string, group Group, lookup func(string) ([]float64, bool), metric string) (*Result[float64], error) {
	res := newResult[float64](desiredGeneColumn, metric, len(genes))
	for _, g := range genes {
		vals, ok := lookup(g)
		if !ok {
			return nil, &GeneNotFoundError{Gene: g, Group: group}
		}
		if len(vals) == 0 {
			return nil, &EmptyExpressionError{Name: g, Metric: metric}
		}
		res.set(g, round3(mean(vals)))
	}
	return res, nil
}

// Differential returns MeanHCC/MeanNormal per gene, rounded to 3 decimals.
// The ratio is taken between the already rounded group means.
func Differential(ds Expressions, genes []string) (*Result[float64], error) {
	hcc, err := MeanHCC(ds, genes)
	if err != nil {
		return nil, err
	}
	normal, err := MeanNormal(ds, genes)
	if err != nil {
		return nil, err
	}
	res := newResult[float64](geneColumn, "Differential value", len(genes))
	for _, g := range genes {
		h, _ := hcc.Get(g)
		n, _ := normal.Get(g)
		if n == 0 {
			return nil, &DivisionByZeroError{Gene: g}
		}
		res.set(g, round3(h/n))
	}
	return res, nil
}

// NormalizedScore folds a differential ratio onto [1, +Inf) so over- and
// under-expression rank alike: ratios above 1 are kept, the rest are replaced
// by their reciprocal rounded to 3 decimals. A zero ratio scores +Inf.
func NormalizedScore(ratio float64) float64 {
	if ratio > 1 {
		return ratio
	}
	if ratio == 0 {
		return math.Inf(1)
	}
	return round3(1 / ratio)
}

// TopDifferential ranks genes by NormalizedScore of their differential ratio,
// descending, and keeps the first count. Ties keep the order of genes. The
// reported values are the original ratios, not the scores.
func TopDifferential(ds Expressions, genes []string, count int) (*Result[float64], error) {
	if count <= 0 {
		return nil, &InvalidArgumentError{Name: "count", Value: count, Reason: "must be positive"}
	}
	diff, err := Differential(ds, genes)
	if err != nil {
		return nil, err
	}
	type scored struct {
		gene         string
		ratio, score float64
	}
	ranked := make([]scored, 0, diff.Len())
	for _, e := range diff.Entries() {
		ranked = append(ranked, scored{gene: e.Key, ratio: e.Value, score: NormalizedScore(e.Value)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if count < len(ranked) {
		ranked = ranked[:count]
	}
	res := newResult[float64](geneColumn, "Differential value", len(ranked))
	for _, s := range ranked {
		res.set(s.gene, s.ratio)
	}
	return res, nil
}

// AboveThreshold returns, for every gene of the dataset, its combined values
// strictly greater than threshold. Genes left with no values are omitted.
func AboveThreshold(ds Expressions, threshold float64) (*Result[[]float64], error) {
	if threshold < 0 || math.IsNaN(threshold) {
		return nil, &InvalidArgumentError{Name: "threshold", Value: threshold, Reason: "must be non-negative"}
	}
	genes := ds.Genes()
	res := newResult[[]float64](geneColumn, "Expressions value", len(genes))
	for _, g := range genes {
		h, _ := ds.HCC(g)
		n, _ := ds.Normal(g)
		above := lo.Filter(concat(h, n), func(v float64, _ int) bool { return v > threshold })
		if len(above) == 0 {
			continue
		}
		res.set(g, above)
	}
	return res, nil
}

// SampleMinMax returns the minimum and maximum value of every sample.
func SampleMinMax(ss Samples) (minimum, maximum *Result[float64], err error) {
	ids := ss.SampleIDs()
	minimum = newResult[float64](sampleColumn, "Minimum expression", len(ids))
	maximum = newResult[float64](sampleColumn, "Maximum expression", len(ids))
	for _, id := range ids {
		vals, _ := ss.SampleValues(id)
		if len(vals) == 0 {
			return nil, nil, &EmptyExpressionError{Name: id, Metric: "sample min/max"}
		}
		minimum.set(id, floats.Min(vals))
		maximum.set(id, floats.Max(vals))
	}
	return minimum, maximum, nil
}

// combined returns HCC followed by normal values of gene. The gene must be
// present in both groups.
func combined(ds Expressions, gene, metric string) ([]float64, error) {
	h, okH := ds.HCC(gene)
	n, okN := ds.Normal(gene)
	switch {
	case !okH && !okN:
		return nil, &GeneNotFoundError{Gene: gene}
	case !okH:
		return nil, &GeneNotFoundError{Gene: gene, Group: GroupHCC}
	case !okN:
		return nil, &GeneNotFoundError{Gene: gene, Group: GroupNormal}
	}
	vals := concat(h, n)
	if len(vals) == 0 {
		return nil, &EmptyExpressionError{Name: gene, Metric: metric}
	}
	return vals, nil
}

func concat(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func mean(vals []float64) float64 {
	return floats.Sum(vals) / float64(len(vals))
}

func median(vals []float64) float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	n := len(cp)
	if n%2 == 0 {
		return (cp[n/2-1] + cp[n/2]) / 2
	}
	return cp[n/2]
}

// round3 rounds half away from zero to 3 decimals.
func round3(x float64) float64 {
	r, err := mfstats.Round(x, 3)
	if err != nil {
		return x
	}
	return r
}
