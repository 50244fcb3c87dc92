package main

import (
	"errors"

	"github.com/jessevdk/go-flags"
)

// exitCode is 2 for command-line usage errors and 1 for any other error.
func exitCode(err error) int {
	var flagsErr *flags.Error

	switch {
	case err == nil, flags.WroteHelp(err):
		return 0
	case errors.As(err, &flagsErr):
		return 2
	default:
		return 1
	}
}
