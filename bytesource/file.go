package bytesource

import "sync"

// File is a Source backed by the content of a local file.
//
// Close releases the backing storage. Every view obtained from File, including records and lazily computed slices
// derived from it, becomes invalid after Close; on platforms where the file is memory-mapped, touching such a view is
// a fatal error.
type File struct {
	Source

	name    string
	closeFn func() error
	once    sync.Once
	err     error
}

// Name returns the name of the file as given to Open.
func (f *File) Name() string {
	return f.name
}

// Close releases the backing storage. It is safe to call Close more than once.
func (f *File) Close() error {
	f.once.Do(func() {
		if f.closeFn != nil {
			f.err = f.closeFn()
		}
	})

	return f.err
}
