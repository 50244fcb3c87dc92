package internal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefix(t *testing.T) {
	tests := []struct {
		name string
		i, n int
		arg  string
		want string
	}{
		{name: "local", i: 0, n: 2, arg: "/path/to/app.apk", want: `[1/2] "app.apk" - `},
		{name: "windows", i: 1, n: 2, arg: `C:\path\to\app.apk`, want: `[2/2] "app.apk" - `},
		{name: "s3", i: 0, n: 1, arg: "s3://bucket/path/lib.jar", want: `[1/1] "lib.jar" - `},
		{
			name: "truncated",
			i:    0,
			n:    1,
			arg:  "a-very-long-archive-name-that-needs-truncating.zip",
			want: `[1/1] "a-very-long-archive-name-that-..." - `,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Prefix(tt.i, tt.n, tt.arg))
		})
	}
}

func TestWithPrefixLogger(t *testing.T) {
	ctx := WithPrefixLogger(context.Background(), "[1/1] ")
	assert.Equal(t, "[1/1] ", MustPrefix(ctx))
	assert.Equal(t, "[1/1] ", MustLogger(ctx).Prefix())
}
