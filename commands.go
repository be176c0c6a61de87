//go:build !js

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/urfave/cli.v1"

	"gotac/pkg/compiler"
	"gotac/pkg/config"
	"gotac/pkg/log"
	"gotac/pkg/report"
	"gotac/pkg/server"
	"gotac/pkg/utils"
	"gotac/pkg/vm"
)

var errCompileFailed = errors.New("compilation failed")

var (
	rawFlag = cli.BoolFlag{
		Name:  "raw",
		Usage: "Dump every field of the tree instead of the outline",
	}
	symbolsFlag = cli.BoolFlag{
		Name:  "symbols",
		Usage: "Also print the symbol table",
	}
	maxStepsFlag = cli.IntFlag{
		Name:  "max-steps",
		Usage: "Stop the program after this many instructions (0 = unlimited)",
	}
	outDirFlag = cli.StringFlag{
		Name:  "out",
		Usage: "Directory for the generated .tac files (default: next to each source)",
	}
	addrFlag = cli.StringFlag{
		Name:  "addr",
		Usage: "HTTP listening address",
	}
	corsFlag = cli.StringFlag{
		Name:  "cors",
		Usage: "Comma separated list of domains from which to accept cross origin requests",
	}
)

var (
	tokensCommand = cli.Command{
		Action:    tokens,
		Name:      "tokens",
		Usage:     "Print the token stream of a source file",
		ArgsUsage: "<file>",
		Category:  "STAGE COMMANDS",
	}
	astCommand = cli.Command{
		Action:    ast,
		Name:      "ast",
		Usage:     "Print the syntax tree of a source file",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{rawFlag},
		Category:  "STAGE COMMANDS",
	}
	checkCommand = cli.Command{
		Action:    check,
		Name:      "check",
		Usage:     "Report the diagnostics of one or more source files",
		ArgsUsage: "<file> [<file>...]",
		Category:  "STAGE COMMANDS",
		Description: `
The check command runs the whole pipeline on every file and prints the
errors of the first failing stage. It exits non-zero if any file failed.`,
	}
	tacCommand = cli.Command{
		Action:    tacListing,
		Name:      "tac",
		Usage:     "Print the three-address code of a source file",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{symbolsFlag},
		Category:  "STAGE COMMANDS",
	}
	runCommand = cli.Command{
		Action:    run,
		Name:      "run",
		Usage:     "Compile a source file and execute its three-address code",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{maxStepsFlag},
		Category:  "EXECUTION COMMANDS",
		Description: `
The run command executes the generated code on the interpreter. Program
input is read from standard input, one value per line.`,
	}
	buildCommand = cli.Command{
		Action:    build,
		Name:      "build",
		Usage:     "Compile source files concurrently and write .tac listings",
		ArgsUsage: "<file> [<file>...]",
		Flags:     []cli.Flag{outDirFlag},
		Category:  "EXECUTION COMMANDS",
	}
	serveCommand = cli.Command{
		Action:   serve,
		Name:     "serve",
		Usage:    "Serve the compiler over HTTP",
		Flags:    []cli.Flag{addrFlag, corsFlag},
		Category: "EXECUTION COMMANDS",
	}
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "[<file>]",
		Category:    "MISCELLANEOUS COMMANDS",
		Description: `The dumpconfig command shows configuration values.`,
	}
)

func errWriter(ctx *cli.Context) io.Writer {
	if ctx.App.ErrWriter != nil {
		return ctx.App.ErrWriter
	}
	return os.Stderr
}

// diagnostics prints the outcome of r to the error stream.
func diagnostics(ctx *cli.Context, name string, r *compiler.Result) int {
	p := &report.Printer{Out: errWriter(ctx), Color: useColor(configOf(ctx).Output.Color, errWriter(ctx))}
	return p.Diagnostics(name, r)
}

// compileArg compiles the single file named on the command line.
func compileArg(ctx *cli.Context) (string, *compiler.Result, error) {
	if ctx.NArg() != 1 {
		return "", nil, fmt.Errorf("%s: expected one source file", ctx.Command.Name)
	}
	path := ctx.Args().First()
	_, src, err := utils.ReadSource(path)
	if err != nil {
		return "", nil, err
	}
	return path, compiler.CompileWith(src, configOf(ctx).CompileOptions()), nil
}

// failedBy reports whether r stopped at stage or earlier.
func failedBy(r *compiler.Result, stage compiler.Stage) bool {
	return r.Failed != compiler.StageNone && r.Failed <= stage
}

func tokens(ctx *cli.Context) error {
	name, r, err := compileArg(ctx)
	if err != nil {
		return err
	}
	newPrinter(ctx).Tokens(r.Tokens)
	if failedBy(r, compiler.StageLex) {
		diagnostics(ctx, name, r)
		return errCompileFailed
	}
	return nil
}

func ast(ctx *cli.Context) error {
	name, r, err := compileArg(ctx)
	if err != nil {
		return err
	}
	if failedBy(r, compiler.StageParse) {
		diagnostics(ctx, name, r)
		return errCompileFailed
	}
	p := newPrinter(ctx)
	if ctx.Bool(rawFlag.Name) {
		p.Dump(r.AST)
	} else {
		p.Tree(r.AST)
	}
	return nil
}

func check(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return errors.New("check: no source files")
	}
	opts := configOf(ctx).CompileOptions()
	failed := 0
	for _, path := range ctx.Args() {
		_, src, err := utils.ReadSource(path)
		if err != nil {
			return err
		}
		r := compiler.CompileWith(src, opts)
		if !r.OK() {
			failed++
		}
		diagnostics(ctx, path, r)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, ctx.NArg())
	}
	return nil
}

func tacListing(ctx *cli.Context) error {
	name, r, err := compileArg(ctx)
	if err != nil {
		return err
	}
	if !r.OK() {
		diagnostics(ctx, name, r)
		return errCompileFailed
	}
	p := newPrinter(ctx)
	p.TAC(r.TAC)
	if ctx.Bool(symbolsFlag.Name) {
		fmt.Fprintln(p.Out)
		p.Symbols(r.Analysis.Symbols)
	}
	return nil
}

func run(ctx *cli.Context) error {
	name, r, err := compileArg(ctx)
	if err != nil {
		return err
	}
	if !r.OK() {
		diagnostics(ctx, name, r)
		return errCompileFailed
	}

	m := vm.New(r.TAC)
	m.Output = ctx.App.Writer
	m.Input = stdin
	m.MaxSteps = configOf(ctx).VM.MaxSteps
	if ctx.IsSet(maxStepsFlag.Name) {
		m.MaxSteps = ctx.Int(maxStepsFlag.Name)
	}

	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err = m.RunContext(sigctx)
	log.Debug("Run complete", "file", name, "pc", m.PC, "steps", m.Steps)
	return err
}

func build(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return errors.New("build: no source files")
	}
	cfg := configOf(ctx)
	size := cfg.Compiler.CacheSize
	if size == 0 {
		size = ctx.NArg()
	}
	cache, err := compiler.NewCache(size, cfg.CompileOptions())
	if err != nil {
		return err
	}
	outDir := ctx.String(outDirFlag.Name)
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return err
		}
	}

	paths := []string(ctx.Args())
	results := make([]*compiler.Result, len(paths))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			_, src, err := utils.ReadSource(path)
			if err != nil {
				return err
			}
			r := cache.Compile(src)
			results[i] = r
			if !r.OK() {
				return nil
			}
			out := utils.OutputPath(path, outDir, ".tac")
			if err := os.WriteFile(out, []byte(r.TAC.String()), 0644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			log.Debug("Wrote three-address code", "file", out, "quads", len(r.TAC.Quads))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for i, r := range results {
		if !r.OK() {
			failed++
			diagnostics(ctx, paths[i], r)
		}
	}
	log.Info("Build finished", "files", len(paths), "failed", failed, "cached", cache.Len())
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func serve(ctx *cli.Context) error {
	cfg := *configOf(ctx)
	if ctx.IsSet(addrFlag.Name) {
		cfg.Server.Addr = ctx.String(addrFlag.Name)
	}
	if ctx.IsSet(corsFlag.Name) {
		cfg.Server.AllowedOrigins = splitAndTrim(ctx.String(corsFlag.Name))
	}
	srv, err := server.New(&cfg)
	if err != nil {
		return err
	}
	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return srv.ListenAndServe(sigctx)
}

// splitAndTrim splits input separated by a comma
// and trims excessive white space from the substrings.
func splitAndTrim(input string) (ret []string) {
	l := strings.Split(input, ",")
	for _, r := range l {
		if r = strings.TrimSpace(r); r != "" {
			ret = append(ret, r)
		}
	}
	return ret
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	out, err := config.Marshal(configOf(ctx))
	if err != nil {
		return err
	}

	dump := ctx.App.Writer
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		dump = f
	}
	_, err = dump.Write(out)
	return err
}
