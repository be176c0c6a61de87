//go:build !js

// gotac compiles programs of a small typed imperative language into
// three-address code and can run the result.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
	"gopkg.in/urfave/cli.v1"

	"gotac/pkg/config"
	"gotac/pkg/log"
	"gotac/pkg/report"
)

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	colorFlag = cli.StringFlag{
		Name:  "color",
		Usage: "Color diagnostics: auto, always or never",
	}
	formatFlag = cli.StringFlag{
		Name:  "format",
		Usage: "Listing format: table or plain",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: int(log.LvlInfo),
	}
)

// stdin feeds the input instruction of programs started by the run command.
var stdin io.Reader = os.Stdin

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "gotac"
	app.Usage = "compile source programs to three-address code"
	app.Version = "0.3.0"
	app.Flags = []cli.Flag{
		configFileFlag,
		colorFlag,
		formatFlag,
		verbosityFlag,
	}
	app.Commands = []cli.Command{
		tokensCommand,
		astCommand,
		checkCommand,
		tacCommand,
		runCommand,
		buildCommand,
		serveCommand,
		dumpConfigCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))
	app.Before = setup
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration, applies the global flags over it and
// installs the root log handler.
func setup(ctx *cli.Context) error {
	cfg := config.Defaults
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := config.Load(file, &cfg); err != nil {
			return err
		}
	}
	if ctx.GlobalIsSet(colorFlag.Name) {
		cfg.Output.Color = ctx.GlobalString(colorFlag.Name)
	}
	if ctx.GlobalIsSet(formatFlag.Name) {
		cfg.Output.Format = ctx.GlobalString(formatFlag.Name)
	}
	if ctx.GlobalIsSet(verbosityFlag.Name) {
		v := ctx.GlobalInt(verbosityFlag.Name)
		if v < int(log.LvlCrit) || v > int(log.LvlTrace) {
			return fmt.Errorf("invalid verbosity %d", v)
		}
		cfg.Log.Level = log.Lvl(v).String()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lvl, _ := log.LvlFromString(cfg.Log.Level)
	log.Root().SetHandler(log.TerminalHandler(lvl))

	if ctx.App.Metadata == nil {
		ctx.App.Metadata = make(map[string]interface{})
	}
	ctx.App.Metadata["config"] = &cfg
	return nil
}

func configOf(ctx *cli.Context) *config.Config {
	if cfg, ok := ctx.App.Metadata["config"].(*config.Config); ok {
		return cfg
	}
	cfg := config.Defaults
	return &cfg
}

func newPrinter(ctx *cli.Context) *report.Printer {
	cfg := configOf(ctx)
	out := ctx.App.Writer
	return &report.Printer{
		Out:   out,
		Table: cfg.Output.Format == config.FormatTable,
		Color: useColor(cfg.Output.Color, out),
	}
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
}
