package codec

import (
	"io"

	"github.com/ulikunitz/xz"
)

// XzCodec implements Codec for the xz compression method.
type XzCodec struct {
}

var _ Codec = XzCodec{}

func (c XzCodec) NewDecoder(src io.Reader, _ uint64) (io.ReadCloser, error) {
	r, err := xz.NewReader(src)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(r), nil
}
