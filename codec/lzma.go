package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// LzmaCodec implements Codec for the LZMA compression method.
//
// ZIP stores LZMA payloads with their own 4-byte header (2-byte LZMA SDK version, 2-byte properties size) followed by
// the properties and the compressed stream. The decoder rewrites this into the classic .lzma header, which also needs
// the uncompressed size.
type LzmaCodec struct{}

var _ Codec = LzmaCodec{}

func (c LzmaCodec) NewDecoder(src io.Reader, uncompressedSize uint64) (io.ReadCloser, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(src, hdr[:]); err != nil {
		return nil, fmt.Errorf("read LZMA header error: %w", err)
	}

	if n := binary.LittleEndian.Uint16(hdr[2:]); n != 5 {
		return nil, fmt.Errorf("unexpected LZMA properties size: %d", n)
	}

	classic := make([]byte, 13)
	if _, err := io.ReadFull(src, classic[:5]); err != nil {
		return nil, fmt.Errorf("read LZMA properties error: %w", err)
	}
	binary.LittleEndian.PutUint64(classic[5:], uncompressedSize)

	r, err := lzma.NewReader(io.MultiReader(bytes.NewReader(classic), src))
	if err != nil {
		return nil, err
	}

	return io.NopCloser(r), nil
}
