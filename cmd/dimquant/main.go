// package main is the main executable for the dimquant cli interface.
package main

import (
	"os"

	dimquantcli "go.dimquant.dev/dimquant/cmd/dimquant/cli"
	"go.dimquant.dev/dimquant/go/sklog"
)

func main() {
	if err := dimquantcli.NewApp(os.Stdout).Run(os.Args); err != nil {
		sklog.Fatal(err)
	}
}
