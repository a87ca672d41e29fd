// Package cli implements the dimquant subcommands.
package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"go.dimquant.dev/dimquant/go/dimension"
	"go.dimquant.dev/dimquant/go/quantity"
	"go.dimquant.dev/dimquant/go/skerr"
	"go.dimquant.dev/dimquant/go/sklog"
	"go.dimquant.dev/dimquant/go/sklog/stdlogging"
	"go.dimquant.dev/dimquant/go/units"
	"go.dimquant.dev/dimquant/go/urfavecli"
)

// flag names
const (
	configFlagName  = "config"
	verboseFlagName = "verbose"
	exportFlagName  = "export"
)

// commonCmd holds the global flag values and the Translator built from them
// before any subcommand runs.
type commonCmd struct {
	configPath string
	verbose    bool
	exportPath string
	translator *units.Translator
}

// NewApp returns the dimquant [*cli.App]. All command output is written to
// stdout.
func NewApp(stdout io.Writer) *cli.App {
	cmd := &commonCmd{}
	return &cli.App{
		Name:        "dimquant",
		Usage:       "translate and convert SI unit expressions",
		Description: "dimquant turns unit expressions such as \"kg.m/s2\" into a factor and dimensions and back.",
		Writer:      stdout,
		Flags:       cmd.flags(),
		Before:      cmd.before,
		Commands: []*cli.Command{
			{
				Name:      "translate",
				Usage:     "print the factor and dimensions of a unit expression",
				ArgsUsage: "EXPR",
				Action:    cmd.translate,
			},
			{
				Name:      "format",
				Usage:     "print the unit expression for dimensions given as SYM=EXP,...",
				ArgsUsage: "SYM=EXP,...",
				Action:    cmd.format,
			},
			{
				Name:      "convert",
				Usage:     "convert a quantity such as \"2.54 cm\" into another unit",
				ArgsUsage: "\"<number> <expr>\" TARGET",
				Action:    cmd.convert,
			},
			{
				Name:  "units",
				Usage: "list the known units and prefixes, or write them to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        exportFlagName,
						Value:       "",
						Usage:       "write the tables to this file in a form --config reads back",
						Destination: &cmd.exportPath,
					},
				},
				Action: cmd.units,
			},
		},
	}
}

func (cmd *commonCmd) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        configFlagName,
			Value:       "",
			Usage:       "JSON5 file with extra units and prefixes",
			Destination: &cmd.configPath,
		},
		&cli.BoolFlag{
			Name:        verboseFlagName,
			Value:       false,
			Usage:       "log at debug level to stderr",
			Destination: &cmd.verbose,
		},
	}
}

func (cmd *commonCmd) before(ctx *cli.Context) error {
	if cmd.verbose {
		sklog.SetLogger(stdlogging.New(os.Stderr, true))
		urfavecli.LogFlags(ctx)
	}
	t := units.New()
	if cmd.configPath != "" {
		cfg, err := units.LoadConfig(cmd.configPath)
		if err != nil {
			return skerr.Wrap(err)
		}
		if err := cfg.Apply(t); err != nil {
			return skerr.Wrapf(err, "applying %s", cmd.configPath)
		}
	}
	cmd.translator = t
	quantity.SetDefault(t)
	return nil
}

func exactArgs(ctx *cli.Context, n int) error {
	if ctx.NArg() != n {
		return skerr.Fmt("%s takes %d argument(s), got %d", ctx.Command.Name, n, ctx.NArg())
	}
	return nil
}

func (cmd *commonCmd) translate(ctx *cli.Context) error {
	if err := exactArgs(ctx, 1); err != nil {
		return err
	}
	u, err := cmd.translator.Translate(ctx.Args().First())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.App.Writer, u)
	return skerr.Wrap(err)
}

// parseDimensions parses "L=1,t=-2" into a dimension Vector. The empty
// string is the dimensionless Vector.
func parseDimensions(s string) (dimension.Vector, error) {
	m := map[string]float64{}
	if s == "" {
		return dimension.New(m), nil
	}
	for _, pair := range strings.Split(s, ",") {
		sym, exp, ok := strings.Cut(pair, "=")
		if !ok || sym == "" {
			return dimension.Vector{}, skerr.Fmt("%q is not SYM=EXP", pair)
		}
		v, err := strconv.ParseFloat(exp, 64)
		if err != nil {
			return dimension.Vector{}, skerr.Wrapf(err, "exponent of %q", sym)
		}
		m[sym] += v
	}
	return dimension.New(m), nil
}

func (cmd *commonCmd) format(ctx *cli.Context) error {
	if err := exactArgs(ctx, 1); err != nil {
		return err
	}
	v, err := parseDimensions(ctx.Args().First())
	if err != nil {
		return err
	}
	expr, err := cmd.translator.ReverseLookup(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.App.Writer, expr)
	return skerr.Wrap(err)
}

func (cmd *commonCmd) convert(ctx *cli.Context) error {
	if err := exactArgs(ctx, 2); err != nil {
		return err
	}
	q, err := quantity.ParseWith(cmd.translator, ctx.Args().Get(0))
	if err != nil {
		return err
	}
	target := ctx.Args().Get(1)
	v, err := q.In(cmd.translator, target)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(ctx.App.Writer, "%s %s\n", strconv.FormatFloat(v, 'g', -1, 64), target)
	return skerr.Wrap(err)
}

func (cmd *commonCmd) units(ctx *cli.Context) error {
	if err := exactArgs(ctx, 0); err != nil {
		return err
	}
	if cmd.exportPath != "" {
		cfg := units.ConfigOf(cmd.translator)
		if err := cfg.WriteFile(cmd.exportPath); err != nil {
			return err
		}
		_, err := fmt.Fprintf(ctx.App.Writer, "wrote %d units and %d prefixes to %s\n", len(cfg.Units), len(cfg.Prefixes), cmd.exportPath)
		return skerr.Wrap(err)
	}
	unitTable := cmd.translator.Units()
	tw := tablewriter.NewWriter(ctx.App.Writer)
	tw.SetHeader([]string{"Unit", "Factor", "Dimensions"})
	for _, sym := range sortedKeys(unitTable) {
		u := unitTable[sym]
		tw.Append([]string{sym, strconv.FormatFloat(u.Factor, 'g', -1, 64), u.Dimensions.String()})
	}
	tw.Render()

	prefixTable := cmd.translator.Prefixes()
	tw = tablewriter.NewWriter(ctx.App.Writer)
	tw.SetHeader([]string{"Prefix", "Multiplier"})
	for _, sym := range sortedKeys(prefixTable) {
		if sym == "" {
			continue
		}
		tw.Append([]string{sym, strconv.FormatFloat(prefixTable[sym], 'g', -1, 64)})
	}
	tw.Render()
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
