// Package urfavecli contains helpers for apps built on github.com/urfave/cli/v2.
package urfavecli

import (
	cli "github.com/urfave/cli/v2"
	"go.dimquant.dev/dimquant/go/sklog"
)

// LogFlags logs the value of every flag known to the context, one per line,
// in the order the flags were declared. Called from an app level Before it
// logs the global flags, from a command Action the command's flags.
func LogFlags(c *cli.Context) {
	flags := c.App.Flags
	if c.Command != nil {
		flags = c.Command.Flags
	}
	for _, f := range flags {
		names := f.Names()
		if len(names) == 0 {
			continue
		}
		sklog.Infof("Flags: --%s=%v", names[0], c.Value(names[0]))
	}
}
