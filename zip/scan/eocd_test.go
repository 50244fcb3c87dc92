package scan

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/nguyengg/zipscan/bytesource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomComment(n int) string {
	alphabet := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	comment := make([]byte, n)
	for i := range n {
		comment[i] = alphabet[rand.IntN(len(alphabet))]
	}

	return string(comment)
}

func TestFindEOCD_WithComment(t *testing.T) {
	tests := []struct {
		commentLength int
		deltas        []int
	}{
		{
			commentLength: 0,
			deltas:        []int{0, 1, 2, 3, 4},
		},
		{
			commentLength: 8 * 1024,
			deltas:        []int{-4, -3, -2, -1, 0, 1, 2, 3, 4},
		},
		{
			commentLength: 32 * 1024,
			deltas:        []int{-4, -3, -2, -1, 0, 1, 2, 3, 4},
		},
		{
			commentLength: MaxCommentLength,
			deltas:        []int{-4, -3, -2, -1, 0},
		},
	}

	for _, tt := range tests {
		for _, delta := range tt.deltas {
			t.Run(fmt.Sprintf("%d with delta=%d", tt.commentLength, delta), func(t *testing.T) {
				n := tt.commentLength + delta
				comment := randomComment(n)

				buf := &bytes.Buffer{}
				zw := zip.NewWriter(buf)

				err := zw.SetComment(comment)
				assert.NoErrorf(t, err, "SetComment(...) error = %v", err)

				err = zw.Close()
				assert.NoErrorf(t, err, "Close() error = %v", err)
				assert.Equalf(t, n+22, buf.Len(), "Mismatched buffer size; got = %d, want = %d", buf.Len(), n+22)

				r, err := findEOCD(bytesource.FromBytes(buf.Bytes()))
				require.NoErrorf(t, err, "findEOCD() error = %v", err)
				assert.Equal(t, int64(0), r.Offset)
				assert.Equal(t, EndOfCentralDirectorySignature, r.Signature)
				assert.Equal(t, uint16(n), r.CommentLength)

				got, err := bytesource.String(r.Comment)
				assert.NoError(t, err)
				assert.Equal(t, comment, got)
			})
		}
	}
}

func TestFindEOCD_AfterEntries(t *testing.T) {
	comment := randomComment(MaxCommentLength)
	data := buildZip(t, []file{{name: "a.txt", content: "hello"}, {name: "b.txt", content: "world"}}, comment)

	r, err := findEOCD(bytesource.FromBytes(data))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)-MaxCommentLength-22), r.Offset)
	assert.Equal(t, uint16(2), r.CDCount)
	assert.Equal(t, uint16(2), r.CDCountOnDisk)

	got, err := bytesource.String(r.Comment)
	assert.NoError(t, err)
	assert.Equal(t, comment, got)
}

func TestFindEOCD_FakeSignatureInComment(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		// wantDelta is the expected offset relative to the real EOCD.
		wantDelta int64
	}{
		{
			// the fixed-size record cannot fit after the fake signature so it is skipped.
			name:      "fake too close to end",
			comment:   "xxxxxxxxPK\x05\x06padding",
			wantDelta: 0,
		},
		{
			// a fake that fits is closer to EOF than the real one, so it wins.
			name:      "fake that fits",
			comment:   "xxxxPK\x05\x06" + string(make([]byte, 18)) + "tail",
			wantDelta: 22 + 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildZip(t, []file{{name: "a.txt", content: "hello"}}, tt.comment)
			eocdOff := int64(len(data) - len(tt.comment) - 22)

			r, err := findEOCD(bytesource.FromBytes(data))
			require.NoError(t, err)
			assert.Equal(t, eocdOff+tt.wantDelta, r.Offset)
		})
	}
}

func TestFindEOCD_CommentClamped(t *testing.T) {
	data := buildZip(t, nil, "0123456789")
	binary.LittleEndian.PutUint16(data[20:], 100)

	r, err := findEOCD(bytesource.FromBytes(data))
	require.NoError(t, err)
	assert.Equal(t, uint16(100), r.CommentLength)
	assert.Equal(t, int64(10), r.Comment.Len())
}

func TestFindEOCD_NotFound(t *testing.T) {
	empty := buildZip(t, nil, "")

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{
			name: "too short",
			data: []byte("PK\x05\x06"),
			want: ErrNoEOCDFound,
		},
		{
			name: "no signature",
			data: bytes.Repeat([]byte("not a zip file "), 100),
			want: ErrNoEOCDFound,
		},
		{
			name: "signature outside of search window",
			data: append(bytes.Clone(empty), make([]byte, MaxCommentLength+1)...),
			want: ErrNoEOCDFound,
		},
		{
			name: "signature at edge of search window",
			data: append(bytes.Clone(empty), make([]byte, MaxCommentLength)...),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := findEOCD(bytesource.FromBytes(tt.data))
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.want)
		})
	}
}
