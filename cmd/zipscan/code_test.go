package main

import (
	"errors"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 0, exitCode(&flags.Error{Type: flags.ErrHelp}))
	assert.Equal(t, 2, exitCode(&flags.Error{Type: flags.ErrRequired, Message: "required argument missing"}))
	assert.Equal(t, 1, exitCode(errors.New("resolve error")))
}
