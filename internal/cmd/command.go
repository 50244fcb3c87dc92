package cmd

import (
	"context"
	"fmt"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipscan/internal/config"
)

type Zipscan struct {
	Profile string  `short:"p" long:"profile" description:"override the AWS profile used to read S3 objects"`
	Inspect Inspect `command:"inspect" alias:"i" description:"print the resolved structure of archives"`
	Cat     Cat     `command:"cat" description:"write the decompressed content of archive entries to stdout"`
	Extract Extract `command:"extract" alias:"x" description:"extract archives"`
}

func NewParser() (*flags.Parser, error) {
	opts := &Zipscan{}

	p := flags.NewNamedParser("zipscan", flags.Default)
	if _, err := p.AddGroup("Global Options", "", opts); err != nil {
		return nil, err
	}

	p.CommandHandler = func(command flags.Commander, args []string) error {
		if command == nil {
			return nil
		}

		if _, err := config.LoadProfile(context.Background(), opts.Profile); err != nil {
			return fmt.Errorf("load config error: %w", err)
		}

		return command.Execute(args)
	}

	return p, nil
}
