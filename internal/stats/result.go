package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Result is an ordered gene (or sample) to value mapping for one metric.
// The column headers live in KeyColumn/Metric, never among the entries.
type Result[V any] struct {
	KeyColumn string
	Metric    string

	entries []Entry[V]
	index   map[string]int
}

// Entry is one data row of a Result.
type Entry[V any] struct {
	Key   string
	Value V
}

func newResult[V any](keyColumn, metric string, capacity int) *Result[V] {
	return &Result[V]{
		KeyColumn: keyColumn,
		Metric:    metric,
		entries:   make([]Entry[V], 0, capacity),
		index:     make(map[string]int, capacity),
	}
}

// set inserts key or overwrites its value in place, so a repeated key keeps
// the position of its first occurrence.
func (r *Result[V]) set(key string, v V) {
	if i, ok := r.index[key]; ok {
		r.entries[i].Value = v
		return
	}
	r.index[key] = len(r.entries)
	r.entries = append(r.entries, Entry[V]{Key: key, Value: v})
}

// Len returns the number of data entries.
func (r *Result[V]) Len() int { return len(r.entries) }

// Get returns the value stored for key.
func (r *Result[V]) Get(key string) (V, bool) {
	i, ok := r.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return r.entries[i].Value, true
}

// Keys returns entry keys in insertion order.
func (r *Result[V]) Keys() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Key
	}
	return out
}

// Entries returns a copy of the data entries in insertion order.
func (r *Result[V]) Entries() []Entry[V] {
	out := make([]Entry[V], len(r.entries))
	copy(out, r.entries)
	return out
}

// Columns returns the key and value column headers.
func (r *Result[V]) Columns() (string, string) { return r.KeyColumn, r.Metric }

// Rows returns the entries formatted for display.
func (r *Result[V]) Rows() [][2]string {
	out := make([][2]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = [2]string{e.Key, FormatValue(e.Value)}
	}
	return out
}

// FormatValue renders floats with at least one decimal digit ("2.0") and
// float lists as "[4.0, 8.0]".
func FormatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return formatFloat(x)
	case []float64:
		parts := make([]string, len(x))
		for i, f := range x {
			parts[i] = formatFloat(f)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
