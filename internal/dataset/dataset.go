// Package dataset loads gene-expression tables into an immutable Dataset.
package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFileNotFound is returned when the input path does not resolve to a file.
var ErrFileNotFound = errors.New("dataset file not found")

// Options controls how a dataset file is read.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the file extension (.tsv -> tab, else comma).
	Delimiter rune
	// Tissue labels of the second column. Rows with any other label are kept
	// as samples but do not feed either gene group.
	HCCLabel    string
	NormalLabel string
	// XLSX sheet selection: by name, else by 1-based index.
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns the labels used by the reference datasets.
func DefaultOptions() Options {
	return Options{
		HCCLabel:    "HCC",
		NormalLabel: "normal",
		SheetIndex:  1,
	}
}

// Sample is one data row: its ID, tissue label and values aligned to Genes().
type Sample struct {
	ID     string
	Label  string
	Values []float64
}

// Dataset holds per-gene values split by tissue group and per-sample rows.
// It is built once by a loader and never modified afterwards; accessors
// return copies.
type Dataset struct {
	Name     string
	Warnings []string

	genes   []string
	hcc     map[string][]float64
	normal  map[string][]float64
	samples []Sample
	byID    map[string]int
}

// Genes returns gene names in header order.
func (d *Dataset) Genes() []string { return cloneStrings(d.genes) }

// HCC returns the HCC-group values of gene. ok is false when no HCC sample
// carried the gene.
func (d *Dataset) HCC(gene string) ([]float64, bool) {
	v, ok := d.hcc[gene]
	return cloneFloats(v), ok
}

// Normal returns the normal-group values of gene.
func (d *Dataset) Normal(gene string) ([]float64, bool) {
	v, ok := d.normal[gene]
	return cloneFloats(v), ok
}

// SampleIDs returns sample IDs in file order.
func (d *Dataset) SampleIDs() []string {
	out := make([]string, len(d.samples))
	for i, s := range d.samples {
		out[i] = s.ID
	}
	return out
}

// SampleValues returns the values of sample id in gene header order.
func (d *Dataset) SampleValues(id string) ([]float64, bool) {
	s, ok := d.Sample(id)
	return s.Values, ok
}

// Sample returns a copy of the sample with the given ID.
func (d *Dataset) Sample(id string) (Sample, bool) {
	i, ok := d.byID[id]
	if !ok {
		return Sample{}, false
	}
	s := d.samples[i]
	s.Values = cloneFloats(s.Values)
	return s, true
}

// Samples returns copies of all samples in file order.
func (d *Dataset) Samples() []Sample {
	out := make([]Sample, len(d.samples))
	for i := range d.samples {
		out[i] = d.samples[i]
		out[i].Values = cloneFloats(d.samples[i].Values)
	}
	return out
}

// builder accumulates rows for a Dataset. Row numbers are 1-based and count
// data rows only.
type builder struct {
	ds  *Dataset
	opt Options
}

func newBuilder(name string, header []string, opt Options) (*builder, error) {
	if len(header) < 3 {
		return nil, fmt.Errorf("header: expected sample, type and at least one gene column, got %d columns", len(header))
	}
	if opt.HCCLabel == "" {
		opt.HCCLabel = "HCC"
	}
	if opt.NormalLabel == "" {
		opt.NormalLabel = "normal"
	}
	genes := make([]string, 0, len(header)-2)
	seen := make(map[string]struct{}, len(header)-2)
	for i, h := range header[2:] {
		g := strings.TrimSpace(h)
		if g == "" {
			return nil, fmt.Errorf("header: empty gene name in column %d", i+3)
		}
		if _, dup := seen[g]; dup {
			return nil, fmt.Errorf("header: duplicate gene %s", g)
		}
		seen[g] = struct{}{}
		genes = append(genes, g)
	}
	return &builder{
		ds: &Dataset{
			Name:   name,
			genes:  genes,
			hcc:    make(map[string][]float64),
			normal: make(map[string][]float64),
			byID:   make(map[string]int),
		},
		opt: opt,
	}, nil
}

func (b *builder) add(row int, rec []string) error {
	if len(rec) < 2 {
		return fmt.Errorf("row %d: expected sample and type columns", row)
	}
	id := strings.TrimSpace(rec[0])
	label := strings.TrimSpace(rec[1])
	if id == "" {
		return fmt.Errorf("row %d: empty sample ID", row)
	}
	if _, dup := b.ds.byID[id]; dup {
		return fmt.Errorf("row %d: duplicate sample %s", row, id)
	}
	fields := rec[2:]
	if len(fields) != len(b.ds.genes) {
		return fmt.Errorf("row %d (%s): expected %d values, got %d", row, id, len(b.ds.genes), len(fields))
	}
	vals := make([]float64, len(fields))
	for j, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return fmt.Errorf("row %d (%s), gene %s: %w", row, id, b.ds.genes[j], err)
		}
		vals[j] = x
	}

	var group map[string][]float64
	switch label {
	case b.opt.HCCLabel:
		group = b.ds.hcc
	case b.opt.NormalLabel:
		group = b.ds.normal
	default:
		b.ds.Warnings = append(b.ds.Warnings, fmt.Sprintf("row %d: sample %s has unknown type %q; excluded from gene groups", row, id, label))
	}
	if group != nil {
		for j, g := range b.ds.genes {
			group[g] = append(group[g], vals[j])
		}
	}
	b.ds.byID[id] = len(b.ds.samples)
	b.ds.samples = append(b.ds.samples, Sample{ID: id, Label: label, Values: vals})
	return nil
}

func (b *builder) build() *Dataset {
	if len(b.ds.samples) == 0 {
		b.ds.Warnings = append(b.ds.Warnings, "dataset has no sample rows")
	}
	return b.ds
}

func cloneFloats(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func cloneStrings(v []string) []string {
	out := make([]string, len(v))
	copy(out, v)
	return out
}
