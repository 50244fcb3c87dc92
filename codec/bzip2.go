package codec

import (
	"compress/bzip2"
	"io"
)

// Bzip2Codec implements Codec for the bzip2 compression method.
type Bzip2Codec struct{}

var _ Codec = Bzip2Codec{}

func (c Bzip2Codec) NewDecoder(src io.Reader, _ uint64) (io.ReadCloser, error) {
	return io.NopCloser(bzip2.NewReader(src)), nil
}
