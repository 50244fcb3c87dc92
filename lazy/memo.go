// Package lazy provides a one-shot memoisation cell for values derived from expensive, side-effect-free computations.
package lazy

// Memo holds a supplier and its cached result.
//
// The zero value is not usable; create one with New or Of. Suppliers must be deterministic and side-effect-free, which
// is a caller obligation that Memo does not enforce. Memo is not safe for concurrent first access: two goroutines racing
// on the first Get may both invoke the supplier, and one result wins.
type Memo[T any] struct {
	supplier func() (T, error)
	value    T
	set      bool
}

// New returns an unset Memo that will compute its value with the given supplier.
func New[T any](supplier func() (T, error)) *Memo[T] {
	return &Memo[T]{supplier: supplier}
}

// Of returns a Memo that is already set to v.
//
// Its supplier returns v so that Copy still produces v.
func Of[T any](v T) *Memo[T] {
	return &Memo[T]{
		supplier: func() (T, error) {
			return v, nil
		},
		value: v,
		set:   true,
	}
}

// Get returns the cached value, invoking the supplier first if the Memo is unset.
//
// The supplier is invoked at most once per successful Get. If the supplier returns an error, nothing is cached and the
// next Get invokes the supplier again.
func (m *Memo[T]) Get() (T, error) {
	if m.set {
		return m.value, nil
	}

	v, err := m.supplier()
	if err != nil {
		var zero T
		return zero, err
	}

	m.value, m.set = v, true
	return v, nil
}

// Set explicitly seeds the cached value.
func (m *Memo[T]) Set(v T) {
	m.value, m.set = v, true
}

// IsSet returns true if the Memo holds a cached value.
func (m *Memo[T]) IsSet() bool {
	return m.set
}

// Copy returns an independent Memo sharing the same supplier.
//
// The copy always starts unset, even if m is set.
func (m *Memo[T]) Copy() *Memo[T] {
	return &Memo[T]{supplier: m.supplier}
}

// CopyWithValue is a variant of Copy that also propagates the cached value if m is set.
func (m *Memo[T]) CopyWithValue() *Memo[T] {
	return &Memo[T]{supplier: m.supplier, value: m.value, set: m.set}
}

// Equal compares the realised values of both Memo using eq.
//
// Both sides are forced to compute their values. Comparing many unrealised cells this way can be expensive since every
// comparison may run a supplier.
func Equal[T any](a, b *Memo[T], eq func(T, T) bool) (bool, error) {
	if a == nil || b == nil {
		return a == nil && b == nil, nil
	}

	va, err := a.Get()
	if err != nil {
		return false, err
	}

	vb, err := b.Get()
	if err != nil {
		return false, err
	}

	return eq(va, vb), nil
}

// Hash returns the hash of the realised value of m using h.
//
// Like Equal, Hash forces m to compute its value.
func Hash[T any](m *Memo[T], h func(T) (uint64, error)) (uint64, error) {
	v, err := m.Get()
	if err != nil {
		return 0, err
	}

	return h(v)
}
