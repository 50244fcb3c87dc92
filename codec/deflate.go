package codec

import (
	"io"

	"github.com/klauspost/compress/flate"
)

// DeflateCodec implements Codec for the deflate compression method.
type DeflateCodec struct{}

var _ Codec = DeflateCodec{}

func (c DeflateCodec) NewDecoder(src io.Reader, _ uint64) (io.ReadCloser, error) {
	return flate.NewReader(src), nil
}
