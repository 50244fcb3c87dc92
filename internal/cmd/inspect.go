package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/mholt/archives"
	"github.com/nguyengg/zipscan/bytesource"
	"github.com/nguyengg/zipscan/codec"
	"github.com/nguyengg/zipscan/internal"
	"github.com/nguyengg/zipscan/zip/scan"
)

type Inspect struct {
	Download             bool  `long:"download" description:"download S3 objects in full instead of reading only the needed ranges"`
	MaxLocalHeaderSearch int64 `long:"max-search" description:"maximum number of bytes to search for a misplaced local file header; defaults to searching up to the central directory"`
	Args                 struct {
		Files []flags.Filename `positional-arg-name:"file" description:"the local files or S3 URIs (s3://bucket/key) to inspect" required:"yes"`
	} `positional-args:"yes"`

	out io.Writer
}

func (c *Inspect) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	if c.out == nil {
		c.out = os.Stdout
	}

	success := 0
	n := len(c.Args.Files)
	for i, file := range c.Args.Files {
		ctx := internal.WithPrefixLogger(ctx, internal.Prefix(i, n, string(file)))

		if err := c.inspect(ctx, string(file)); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}

			internal.MustLogger(ctx).Printf("inspect error: %v", err)
			continue
		}

		success++
	}

	log.Printf("successfully inspected %d/%d files", success, n)
	if success < n {
		return fmt.Errorf("failed to inspect %d/%d files", n-success, n)
	}

	return nil
}

func (c *Inspect) inspect(ctx context.Context, name string) error {
	src, closer, err := openSource(ctx, name, c.Download)
	if err != nil {
		return err
	}
	defer closer.Close()

	a, err := resolve(ctx, src, c.MaxLocalHeaderSearch, false)
	if errors.Is(err, scan.ErrNoEOCDFound) {
		_, _ = fmt.Fprintf(c.out, "%s: not a ZIP archive; detected format: %s\n", name, identify(ctx, name, src))
		return err
	}
	if err != nil {
		return err
	}

	eocd := a.EOCD
	_, _ = fmt.Fprintf(c.out, "%s: %s, %d entries (declared %d), central directory at %d (declared %d), EOCD at %d, comment %d bytes\n",
		name,
		humanize.IBytes(uint64(src.Len())),
		len(a.Entries),
		eocd.CDCount,
		eocd.CentralDirectoryStart,
		eocd.CDOffset,
		eocd.Offset,
		eocd.Comment.Len())

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tMETHOD\tSIZE\tCOMPRESSED\tCRC32\tMODIFIED\tLOCAL HEADER\tNAME")
	for _, e := range a.Entries {
		local := "unresolved"
		if lfh, ok := a.Local(e); ok {
			local = fmt.Sprintf("%d", lfh.Offset)
			if lfh.Offset != int64(e.LocalHeaderOffset) {
				local += fmt.Sprintf(" (declared %d)", e.LocalHeaderOffset)
			}
		}

		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%08x\t%s\t%s\t%s\n",
			e.Index,
			codec.MethodName(e.Method),
			humanize.IBytes(uint64(e.UncompressedSize)),
			humanize.IBytes(uint64(e.CompressedSize)),
			e.CRC32,
			e.Modified().Format("2006-01-02 15:04:05"),
			local,
			e.Name())
	}
	if err = w.Flush(); err != nil {
		return err
	}

	for _, warning := range a.Warnings {
		_, _ = fmt.Fprintf(c.out, "warning: %v\n", warning)
	}

	return nil
}

// identify returns the extension of the format detected from the file's name and header, or "unknown".
func identify(ctx context.Context, name string, src bytesource.Source) string {
	format, _, err := archives.Identify(ctx, name, bytesource.NewReader(src))
	switch {
	case errors.Is(err, archives.NoMatch):
		return "unknown"
	case err != nil:
		internal.MustLogger(ctx).Printf("identify format error: %v", err)
		return "unknown"
	default:
		return format.Extension()
	}
}
