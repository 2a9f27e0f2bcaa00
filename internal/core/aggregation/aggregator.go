package aggregation

import (
	"github.com/shopspring/decimal"
)

// Aggregator defines the reduce semantics of an operator.
type Aggregator interface {
	// Initial returns the aggregate value after the first value for a key.
	Initial(incoming decimal.Decimal) decimal.Decimal

	// Apply folds an incoming value into an existing aggregate.
	Apply(current, incoming decimal.Decimal) decimal.Decimal
}

// Sum accumulates the sum of incoming values.
var Sum Aggregator = sumAgg{}

// Max tracks the largest value seen.
var Max Aggregator = maxAgg{}

type sumAgg struct{}

func (sumAgg) Initial(v decimal.Decimal) decimal.Decimal      { return v }
func (sumAgg) Apply(cur, inc decimal.Decimal) decimal.Decimal { return cur.Add(inc) }

type maxAgg struct{}

func (maxAgg) Initial(v decimal.Decimal) decimal.Decimal { return v }
func (maxAgg) Apply(cur, inc decimal.Decimal) decimal.Decimal {
	if inc.GreaterThan(cur) {
		return inc
	}
	return cur
}

// Reducer folds decimal values by key with a single operator. One reducer replaces a
// hand-written accumulator per unit, platform or fee. Not safe for concurrent use: give
// each worker its own reducer and Merge them afterwards.
type Reducer[K comparable] struct {
	op     Aggregator
	values map[K]decimal.Decimal
}

func NewReducer[K comparable](op Aggregator) *Reducer[K] {
	return &Reducer[K]{op: op, values: make(map[K]decimal.Decimal)}
}

// NewSum is shorthand for NewReducer(Sum).
func NewSum[K comparable]() *Reducer[K] {
	return NewReducer[K](Sum)
}

// Add folds v into the aggregate for key.
func (r *Reducer[K]) Add(key K, v decimal.Decimal) {
	if cur, ok := r.values[key]; ok {
		r.values[key] = r.op.Apply(cur, v)
		return
	}
	r.values[key] = r.op.Initial(v)
}

// Merge folds every aggregate of other into r. Both reducers must use the same operator.
func (r *Reducer[K]) Merge(other *Reducer[K]) {
	for key, v := range other.values {
		r.Add(key, v)
	}
}

// Get returns the aggregate for key, zero when the key was never added.
func (r *Reducer[K]) Get(key K) decimal.Decimal {
	if v, ok := r.values[key]; ok {
		return v
	}
	return decimal.Zero
}

// Map returns a copy of the aggregates.
func (r *Reducer[K]) Map() map[K]decimal.Decimal {
	out := make(map[K]decimal.Decimal, len(r.values))
	for key, v := range r.values {
		out[key] = v
	}
	return out
}

// Total folds every aggregate with Sum, regardless of the reducer's operator.
func (r *Reducer[K]) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range r.values {
		total = total.Add(v)
	}
	return total
}
