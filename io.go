package zipscan

import (
	"context"
	"fmt"
	"io"
)

// CopyBufferWithContext is a variant of io.CopyBuffer that is cancellable via context.
//
// If buf is nil, a new buffer of size 32*1024 is created. Whether src implements [io.WriterTo] or dst implements
// [io.ReaderFrom] is ignored since neither supports context.
//
// The context is checked after every write, so a very large buffer delays the effect of cancellation. The number of
// bytes written is returned.
func CopyBufferWithContext(ctx context.Context, dst io.Writer, src io.Reader, buf []byte) (written int64, err error) {
	if buf == nil {
		buf = make([]byte, 32*1024)
	}

	var nr, nw int
	for {
		nr, err = src.Read(buf)

		if nr > 0 {
			switch nw, err = dst.Write(buf[0:nr]); {
			case err != nil:
				return written, err
			case nw < nr:
				return written + int64(nw), io.ErrShortWrite
			case nw != nr:
				return written, fmt.Errorf("invalid write: expected to write %d bytes, wrote %d bytes instead", nr, nw)
			}

			written += int64(nw)

			select {
			case <-ctx.Done():
				return written, ctx.Err()
			default:
			}
		}

		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}
