package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipscan"
	"github.com/nguyengg/zipscan/codec"
	"github.com/nguyengg/zipscan/internal"
)

type Cat struct {
	Download             bool  `long:"download" description:"download S3 objects in full instead of reading only the needed ranges"`
	MaxLocalHeaderSearch int64 `long:"max-search" description:"maximum number of bytes to search for a misplaced local file header; defaults to searching up to the central directory"`
	Args                 struct {
		File  flags.Filename `positional-arg-name:"file" description:"the local file or S3 URI (s3://bucket/key) of the archive" required:"yes"`
		Names []string       `positional-arg-name:"entry" description:"the names of the entries to print" required:"yes"`
	} `positional-args:"yes"`

	out io.Writer
}

func (c *Cat) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	if c.out == nil {
		c.out = os.Stdout
	}

	ctx = internal.WithPrefixLogger(ctx, internal.Prefix(0, 1, string(c.Args.File)))
	if err := c.cat(ctx, string(c.Args.File)); err != nil {
		internal.MustLogger(ctx).Printf("cat error: %v", err)
		return err
	}

	return nil
}

func (c *Cat) cat(ctx context.Context, name string) error {
	src, closer, err := openSource(ctx, name, c.Download)
	if err != nil {
		return err
	}
	defer closer.Close()

	a, err := resolve(ctx, src, c.MaxLocalHeaderSearch, true)
	if err != nil {
		return err
	}

	registry := codec.Default()
	for _, entryName := range c.Args.Names {
		e, ok := a.Lookup(entryName)
		if !ok {
			return fmt.Errorf("entry %q not found", entryName)
		}

		rc, err := a.Open(e, registry)
		if err != nil {
			return err
		}

		_, err = zipscan.CopyBufferWithContext(ctx, c.out, rc, nil)
		_ = rc.Close()
		if err != nil {
			return fmt.Errorf("write entry %q error: %w", entryName, err)
		}
	}

	return nil
}
