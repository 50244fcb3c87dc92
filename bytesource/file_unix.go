//go:build unix

package bytesource

import (
	"fmt"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

// Open memory-maps the named file read-only and returns it as a Source.
//
// Caller must call File.Close once the Source and everything derived from it is no longer needed.
func Open(name string) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file error: %w", err)
	}

	size := fi.Size()
	if size == 0 {
		return &File{Source: FromBytes(nil), name: name}, nil
	}
	if size > math.MaxInt {
		return nil, fmt.Errorf("file too large to map: %d bytes", size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap file error: %w", err)
	}

	return &File{
		Source: FromBytes(data),
		name:   name,
		closeFn: func() error {
			return unix.Munmap(data)
		},
	}, nil
}
