package zipscan

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopyBufferWithContext(t *testing.T) {
	src := strings.Repeat("hello, world!", 100)

	dst := &bytes.Buffer{}
	written, err := CopyBufferWithContext(context.Background(), dst, strings.NewReader(src), make([]byte, 7))
	assert.NoErrorf(t, err, "CopyBufferWithContext() error = %v", err)
	assert.Equal(t, int64(len(src)), written)
	assert.Equal(t, src, dst.String())
}

func TestCopyBufferWithContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dst := &bytes.Buffer{}
	written, err := CopyBufferWithContext(ctx, dst, strings.NewReader("hello, world!"), make([]byte, 4))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(4), written)
	assert.Equal(t, "hell", dst.String())
}
