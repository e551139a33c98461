package stats

import (
	"errors"
	"fmt"
)

// Group names a tissue group of the dataset.
type Group string

const (
	GroupHCC    Group = "HCC"
	GroupNormal Group = "normal"
)

// GeneNotFoundError indicates a requested gene is missing from a tissue group.
// Group is empty when the gene is missing from both groups.
type GeneNotFoundError struct {
	Gene  string
	Group Group
}

func (e *GeneNotFoundError) Error() string {
	if e.Group == "" {
		return fmt.Sprintf("gene %s not found", e.Gene)
	}
	return fmt.Sprintf("gene %s not found in %s data", e.Gene, e.Group)
}

// EmptyExpressionError indicates a gene or sample has no values to aggregate.
type EmptyExpressionError struct {
	Name   string
	Metric string
}

func (e *EmptyExpressionError) Error() string {
	return fmt.Sprintf("no expressions for %s (%s)", e.Name, e.Metric)
}

// DivisionByZeroError indicates the normal-group mean of a gene is exactly zero,
// which leaves its differential ratio undefined.
type DivisionByZeroError struct {
	Gene string
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("normal expression is zero for gene %s", e.Gene)
}

// InvalidArgumentError indicates a metric parameter outside its domain.
type InvalidArgumentError struct {
	Name   string
	Value  any
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Name, e.Value, e.Reason)
}

// IsStatsError reports whether err (or anything it wraps) was raised by this package.
func IsStatsError(err error) bool {
	var (
		nf  *GeneNotFoundError
		ee  *EmptyExpressionError
		dz  *DivisionByZeroError
		arg *InvalidArgumentError
	)
	return errors.As(err, &nf) || errors.As(err, &ee) || errors.As(err, &dz) || errors.As(err, &arg)
}
