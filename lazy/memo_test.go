package lazy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func counter(v int) (*int, func() (int, error)) {
	calls := new(int)
	return calls, func() (int, error) {
		*calls++
		return v, nil
	}
}

func TestMemo_Get(t *testing.T) {
	calls, supplier := counter(42)
	m := New(supplier)
	assert.False(t, m.IsSet())

	for range 5 {
		v, err := m.Get()
		assert.NoError(t, err)
		assert.Equal(t, 42, v)
	}

	assert.True(t, m.IsSet())
	assert.Equal(t, 1, *calls)
}

func TestMemo_Copy(t *testing.T) {
	calls, supplier := counter(7)
	m := New(supplier)

	// copy taken before first Get has its own cache.
	c := m.Copy()
	_, _ = m.Get()
	assert.False(t, c.IsSet())
	_, _ = c.Get()
	assert.Equal(t, 2, *calls)

	// copy of a set memo still starts unset.
	c2 := m.Copy()
	assert.False(t, c2.IsSet())
	_, _ = c2.Get()
	assert.Equal(t, 3, *calls)

	// unless the value is explicitly propagated.
	c3 := m.CopyWithValue()
	assert.True(t, c3.IsSet())
	v, err := c3.Get()
	assert.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 3, *calls)
}

func TestMemo_ErrorNotCached(t *testing.T) {
	fail := true
	calls := 0
	m := New(func() (string, error) {
		calls++
		if fail {
			return "", errors.New("boom")
		}
		return "ok", nil
	})

	_, err := m.Get()
	assert.EqualError(t, err, "boom")
	assert.False(t, m.IsSet())

	fail = false
	v, err := m.Get()
	assert.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)

	_, _ = m.Get()
	assert.Equal(t, 2, calls)
}

func TestMemo_SetAndOf(t *testing.T) {
	calls, supplier := counter(1)
	m := New(supplier)
	m.Set(2)

	v, err := m.Get()
	assert.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 0, *calls)

	o := Of("seeded")
	assert.True(t, o.IsSet())
	s, err := o.Copy().Get()
	assert.NoError(t, err)
	assert.Equal(t, "seeded", s)
}

func TestEqualAndHash(t *testing.T) {
	callsA, a := counter(3)
	callsB, b := counter(3)
	ma, mb := New(a), New(b)

	eq, err := Equal(ma, mb, func(x, y int) bool { return x == y })
	assert.NoError(t, err)
	assert.True(t, eq)

	// both sides were realised.
	assert.Equal(t, 1, *callsA)
	assert.Equal(t, 1, *callsB)

	h, err := Hash(ma, func(v int) (uint64, error) { return uint64(v) * 31, nil })
	assert.NoError(t, err)
	assert.Equal(t, uint64(93), h)

	boom := errors.New("boom")
	_, err = Equal(ma, New(func() (int, error) { return 0, boom }), func(x, y int) bool { return x == y })
	assert.ErrorIs(t, err, boom)
}
