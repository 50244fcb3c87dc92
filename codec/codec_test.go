package codec

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/nguyengg/zipscan/bytesource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

var content = []byte(strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200))

func deflateEncode(t *testing.T, b []byte) []byte {
	buf := &bytes.Buffer{}
	w, err := flate.NewWriter(buf, flate.BestCompression)
	require.NoError(t, err)
	_, err = w.Write(b)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdEncode(t *testing.T, b []byte) []byte {
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(b, nil)
}

func xzEncode(t *testing.T, b []byte) []byte {
	buf := &bytes.Buffer{}
	w, err := xz.NewWriter(buf)
	require.NoError(t, err)
	_, err = w.Write(b)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// lzmaEncode produces the ZIP framing of an LZMA stream: version, properties size, properties, then data.
func lzmaEncode(t *testing.T, b []byte) []byte {
	buf := &bytes.Buffer{}
	w, err := lzma.WriterConfig{SizeInHeader: true, Size: int64(len(b)), EOSMarker: false}.NewWriter(buf)
	require.NoError(t, err)
	_, err = w.Write(b)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	classic := buf.Bytes()
	framed := []byte{9, 20, 5, 0}
	framed = append(framed, classic[:5]...)
	return append(framed, classic[13:]...)
}

func TestRegistry_Decompress(t *testing.T) {
	tests := []struct {
		name   string
		method uint16
		encode func(t *testing.T, b []byte) []byte
	}{
		{name: "store", method: Store, encode: func(t *testing.T, b []byte) []byte { return b }},
		{name: "deflate", method: Deflate, encode: deflateEncode},
		{name: "zstd", method: Zstd, encode: zstdEncode},
		{name: "zstd legacy id", method: ZstdLegacy, encode: zstdEncode},
		{name: "xz", method: XZ, encode: xzEncode},
		{name: "lzma", method: LZMA, encode: lzmaEncode},
	}

	r := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed := bytesource.FromBytes(tt.encode(t, content))

			got, err := r.Decompress(tt.method, compressed, uint64(len(content)))
			assert.NoErrorf(t, err, "Decompress() error = %v", err)
			assert.Equal(t, content, got)

			rc, err := r.NewReader(tt.method, compressed, uint64(len(content)))
			require.NoErrorf(t, err, "NewReader() error = %v", err)
			got, err = io.ReadAll(rc)
			assert.NoError(t, err)
			assert.NoError(t, rc.Close())
			assert.Equal(t, content, got)
		})
	}
}

func TestRegistry_UnsupportedMethod(t *testing.T) {
	_, err := Default().Decompress(99, bytesource.FromBytes([]byte("whatever")), 8)
	assert.ErrorIs(t, err, ErrUnsupportedMethod)

	_, ok := NewRegistry().Lookup(Store)
	assert.False(t, ok)
}

func TestRegistry_DecodeFailure(t *testing.T) {
	r := Default()

	tests := []struct {
		name   string
		method uint16
		data   []byte
		size   uint64
	}{
		{name: "corrupted deflate", method: Deflate, data: []byte{0xff, 0xff, 0xff, 0xff}, size: 10},
		{name: "corrupted bzip2", method: BZIP2, data: []byte("BZh9not really bzip2"), size: 10},
		{name: "corrupted xz", method: XZ, data: []byte("definitely not xz"), size: 10},
		{name: "size mismatch", method: Store, data: []byte("0123456789"), size: 5},
		{name: "content too short", method: Store, data: []byte("0123"), size: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Decompress(tt.method, bytesource.FromBytes(tt.data), tt.size)
			assert.ErrorIs(t, err, ErrDecodeFailure)
		})
	}
}

func TestMethodName(t *testing.T) {
	assert.Equal(t, "store", MethodName(Store))
	assert.Equal(t, "deflate", MethodName(Deflate))
	assert.Equal(t, "zstd", MethodName(ZstdLegacy))
	assert.Equal(t, "zstd", MethodName(Zstd))
	assert.Equal(t, "method(99)", MethodName(99))
}
