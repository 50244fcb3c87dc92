package cmd

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipscan"
	"github.com/nguyengg/zipscan/codec"
	"github.com/nguyengg/zipscan/internal"
	"github.com/nguyengg/zipscan/zip/scan"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrChecksumMismatch is returned if the CRC-32 of an extracted entry does not match its central directory entry.
var ErrChecksumMismatch = errors.New("checksum mismatch")

type Extract struct {
	Dir                  flags.Filename `short:"d" long:"dir" description:"the directory in which to create the output directories" default:"."`
	Jobs                 int            `short:"j" long:"jobs" description:"the number of entries to decompress in parallel" default:"4"`
	NoVerify             bool           `long:"no-verify" description:"skip CRC-32 verification of extracted entries"`
	Download             bool           `long:"download" description:"download S3 objects in full instead of reading only the needed ranges"`
	MaxLocalHeaderSearch int64          `long:"max-search" description:"maximum number of bytes to search for a misplaced local file header; defaults to searching up to the central directory"`
	Args                 struct {
		Files []flags.Filename `positional-arg-name:"file" description:"the local files or S3 URIs (s3://bucket/key) to extract" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Extract) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	success := 0
	n := len(c.Args.Files)
	for i, file := range c.Args.Files {
		ctx := internal.WithPrefixLogger(ctx, internal.Prefix(i, n, string(file)))
		logger := internal.MustLogger(ctx)

		output, err := c.extract(ctx, string(file))
		if err == nil {
			logger.Printf(`done extracting to "%s"`, output)
			success++
			continue
		}

		if errors.Is(err, context.Canceled) {
			break
		}

		logger.Printf("extract error: %v", err)
	}

	log.Printf("successfully extracted %d/%d files", success, n)
	if success < n {
		return fmt.Errorf("failed to extract %d/%d files", n-success, n)
	}

	return nil
}

// extract extracts the entries of the named archive and returns the newly created directory.
//
// Entries whose local file header could not be resolved, and entries whose names would escape the output directory,
// are skipped. Entries with duplicate names are all extracted, the later ones with numeric suffixes.
func (c *Extract) extract(ctx context.Context, name string) (output string, err error) {
	logger := internal.MustLogger(ctx)

	src, closer, err := openSource(ctx, name, c.Download)
	if err != nil {
		return "", err
	}
	defer closer.Close()

	a, err := resolve(ctx, src, c.MaxLocalHeaderSearch, true)
	if err != nil {
		return "", err
	}

	names := make([]string, len(a.Entries))
	var size int64
	for i, e := range a.Entries {
		names[i] = e.Name()
		if _, ok := a.Local(e); ok && !e.IsDir() {
			size += int64(e.UncompressedSize)
		}
	}

	rootDir := internal.FindZipRootDir(names)
	stem, _ := zipscan.StemAndExt(name)
	if rootDir != "" {
		stem = string(rootDir)
	}

	if output, err = zipscan.MkExclDir(string(c.Dir), stem); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(output)
		}
	}()

	bar := internal.DefaultBytes(size, "extracting")
	defer bar.Close()

	var (
		registry  = codec.Default()
		sometimes = rate.Sometimes{Interval: 5 * time.Second}
		done      atomic.Int64
		written   atomic.Int64
		skipped   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, c.Jobs))

	for _, e := range a.Entries {
		path, err := rootDir.Join(output, e.Name())
		if err != nil {
			logger.Printf("skipping entry #%d (%q): %v", e.Index, e.Name(), err)
			skipped++
			continue
		}

		if e.IsDir() {
			if err = os.MkdirAll(path, 0755); err != nil {
				_ = g.Wait()
				return output, err
			}
			continue
		}

		if _, ok := a.Local(e); !ok {
			logger.Printf("skipping entry #%d (%q): %v", e.Index, e.Name(), scan.ErrUnresolvedLink)
			skipped++
			continue
		}

		f, err := c.create(path)
		if err != nil {
			_ = g.Wait()
			return output, err
		}

		g.Go(func() error {
			n, err := c.write(gctx, a, e, registry, f, bar)
			if err != nil {
				return err
			}

			written.Add(n)

			_ = os.Chtimes(f.Name(), e.Modified(), e.Modified())

			count := done.Add(1)
			sometimes.Do(func() {
				logger.Printf("extracted %d entries (%s) so far", count, humanize.IBytes(uint64(written.Load())))
			})
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return output, err
	}

	if skipped > 0 {
		logger.Printf("skipped %d/%d entries", skipped, len(a.Entries))
	}

	return output, nil
}

// create creates the file for an entry, choosing a new name if one already exists at path.
func (c *Extract) create(path string) (*os.File, error) {
	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, err
	}

	stem, ext := zipscan.StemAndExt(path)
	return zipscan.OpenExclFile(parent, stem, ext)
}

// write decompresses the entry into f, verifies its checksum unless disabled, then closes f.
func (c *Extract) write(ctx context.Context, a *scan.Archive, e *scan.CentralDirectoryEntry, d scan.Decompressor, f *os.File, bar io.Writer) (written int64, err error) {
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	rc, err := a.Open(e, d)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	h := crc32.NewIEEE()
	if written, err = zipscan.CopyBufferWithContext(ctx, io.MultiWriter(f, h, bar), rc, nil); err != nil {
		return written, fmt.Errorf("write entry #%d (%q) error: %w", e.Index, e.Name(), err)
	}

	if sum := h.Sum32(); !c.NoVerify && sum != e.CRC32 {
		return written, fmt.Errorf("entry #%d (%q): %w: expected %08x, got %08x", e.Index, e.Name(), ErrChecksumMismatch, e.CRC32, sum)
	}

	return written, nil
}
