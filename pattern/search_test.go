package pattern

import (
	"testing"

	"github.com/nguyengg/zipscan/bytesource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	p, err := Parse("50 4b ?? 06")
	require.NoError(t, err)
	assert.Equal(t, Pattern{0x50, 0x4B, Wildcard, 0x06}, p)
	assert.Equal(t, "50 4B ?? 06", p.String())
	assert.True(t, p.HasWildcard())

	_, err = Parse("50 4G")
	assert.Error(t, err)
	_, err = Parse("100")
	assert.Error(t, err)

	assert.Equal(t, Pattern{0x50, 0x4B, 0x05, 0x06}, Quad(0x06054B50))
	assert.Equal(t, Pattern{0x50, 0x4B}, Word(0x4B50))
}

func TestIndexOf(t *testing.T) {
	src := bytesource.FromBytes([]byte("xxPK\x01\x02yyPK\x01\x02zz"))

	tests := []struct {
		name string
		from int64
		p    Pattern
		want int64
	}{
		{name: "quad fast path", from: 0, p: Quad(0x02014B50), want: 2},
		{name: "quad fast path from after first", from: 3, p: Quad(0x02014B50), want: 8},
		{name: "word fast path", from: 0, p: Word(0x4B50), want: 2},
		{name: "wildcard", from: 0, p: MustParse("?? 02 79"), want: 4},
		{name: "negative from", from: -10, p: Literal([]byte("xx")), want: 0},
		{name: "from at length", from: 14, p: Literal([]byte("z")), want: NotFound},
		{name: "pattern longer than source", from: 0, p: make(Pattern, 15), want: NotFound},
		{name: "absent", from: 0, p: Literal([]byte("PK\x03\x04")), want: NotFound},
		{name: "match at very end", from: 0, p: Literal([]byte("zz")), want: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IndexOf(src, tt.from, tt.p))
		})
	}
}

func TestLastIndexOf(t *testing.T) {
	src := bytesource.FromBytes([]byte("xxPK\x01\x02yyPK\x01\x02zz"))

	tests := []struct {
		name string
		from int64
		p    Pattern
		want int64
	}{
		{name: "rightmost quad", from: src.Len(), p: Quad(0x02014B50), want: 8},
		{name: "bounded from", from: 7, p: Quad(0x02014B50), want: 2},
		{name: "wildcard", from: 100, p: MustParse("50 4B ?? ??"), want: 8},
		{name: "generic rightmost", from: 100, p: Literal([]byte("PK\x01")), want: 8},
		{name: "negative from", from: -1, p: Word(0x4B50), want: NotFound},
		{name: "absent", from: 100, p: Quad(0x06054B50), want: NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LastIndexOf(src, tt.from, tt.p))
		})
	}

	assert.Equal(t, int64(12), Last(src, Literal([]byte("zz"))))
}

func TestIndexOf_FirstMatchProperty(t *testing.T) {
	data := []byte{0, 1, 2, 1, 2, 1, 2, 3, 0xFF, 0x80, 1, 2}
	src := bytesource.FromBytes(data)

	for _, p := range []Pattern{
		{1, 2},
		{1, Wildcard, 1},
		{2, 3, 0xFF},
		{0xFF, 0x80},
		{Wildcard, 2, Wildcard, 2},
	} {
		i := IndexOf(src, 0, p)
		require.NotEqualf(t, NotFound, i, "pattern %s", p)
		assert.Truef(t, StartsWith(src, i, p), "pattern %s", p)
		for j := int64(0); j < i; j++ {
			assert.Falsef(t, StartsWith(src, j, p), "pattern %s matched earlier at %d", p, j)
		}

		k := Last(src, p)
		require.NotEqualf(t, NotFound, k, "pattern %s", p)
		assert.Truef(t, StartsWith(src, k, p), "pattern %s", p)
		for j := k + 1; j < src.Len(); j++ {
			assert.Falsef(t, StartsWith(src, j, p), "pattern %s matched later at %d", p, j)
		}
	}

	// exactly one match means forward and backward agree.
	p := Pattern{3, 0xFF}
	assert.Equal(t, IndexOf(src, 0, p), Last(src, p))
}

func TestWildcard(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	src := bytesource.FromBytes(data)

	// a wildcard matches every byte value including those with the high bit set.
	for i := int64(0); i < 256; i++ {
		assert.True(t, StartsWith(src, i, Pattern{Wildcard}))
	}

	// an all-wildcard pattern matches at every offset where the span fits.
	p := Pattern{Wildcard, Wildcard, Wildcard}
	for i := int64(0); i < 256; i++ {
		assert.Equal(t, i <= 253, StartsWith(src, i, p))
	}
	assert.Equal(t, int64(0), IndexOf(src, 0, p))
	assert.Equal(t, int64(253), Last(src, p))

	// bytes are unsigned so 0xFF never equals the wildcard sentinel or -1.
	assert.False(t, StartsWith(src, 255, Pattern{-1}))
	assert.True(t, StartsWith(src, 255, Pattern{0xFF}))
}

func TestStartsWith_Bounds(t *testing.T) {
	src := bytesource.FromBytes([]byte("PK\x03\x04"))

	assert.True(t, StartsWithQuad(src, 0, 0x04034B50))
	assert.False(t, StartsWithQuad(src, 1, 0x04034B50))
	assert.False(t, StartsWithQuad(src, -1, 0x04034B50))
	assert.True(t, StartsWithWord(src, 2, 0x0403))
	assert.False(t, StartsWithWord(src, 3, 0x0403))
	assert.False(t, StartsWith(src, 2, Literal([]byte("\x03\x04\x05"))))
	assert.False(t, StartsWith(nil, 0, Pattern{}))
}
