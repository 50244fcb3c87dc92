package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRightWithSuffix(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		n      int
		suffix string
		want   string
	}{
		{name: "no truncation", text: "app.apk", n: 30, suffix: "...", want: "app.apk"},
		{name: "exact length", text: "app.apk", n: 7, suffix: "...", want: "app.apk"},
		{name: "truncated", text: "app.apk", n: 3, suffix: "...", want: "app..."},
		{name: "runes", text: "日本語.zip", n: 2, suffix: "…", want: "日本…"},
		{name: "zero", text: "app.apk", n: 0, suffix: "...", want: "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateRightWithSuffix(tt.text, tt.n, tt.suffix))
		})
	}

	assert.Equal(t, "app", TruncateRight("app.apk", 3))
}
