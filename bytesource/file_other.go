//go:build !unix

package bytesource

import "os"

// Open reads the named file into memory and returns it as a Source.
//
// Close is a no-op on this platform but callers should still call it.
func Open(name string) (*File, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	return &File{Source: FromBytes(data), name: name}, nil
}
