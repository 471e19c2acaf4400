package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCLIArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		mode cliMode
		arg  string
	}{
		{name: "run default", args: nil, mode: cliRun},
		{name: "version long", args: []string{"--version"}, mode: cliVersion},
		{name: "version short", args: []string{"-v"}, mode: cliVersion},
		{name: "help long", args: []string{"--help"}, mode: cliHelp},
		{name: "help short", args: []string{"-h"}, mode: cliHelp},
		{name: "url", args: []string{"https://www.reddit.com/r/soccer/comments/abc/"}, mode: cliRun, arg: "https://www.reddit.com/r/soccer/comments/abc/"},
		{name: "path", args: []string{"/r/nba/comments/xyz"}, mode: cliRun, arg: "/r/nba/comments/xyz"},
		{name: "invalid flag", args: []string{"--bogus"}, mode: cliInvalid, arg: "unexpected argument: --bogus"},
		{name: "too many args", args: []string{"/r/a/comments/1", "extra"}, mode: cliInvalid, arg: "unexpected argument: extra"},
		{name: "version wins", args: []string{"--version", "extra"}, mode: cliVersion},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mode, arg := parseCLIArgs(tc.args)
			assert.Equal(t, tc.mode, mode)
			assert.Equal(t, tc.arg, arg)
		})
	}
}
