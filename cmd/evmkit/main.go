// Command evmkit inspects the EVM instruction set and disassembles bytecode.
//
// Usage:
//
//	evmkit [global flags] command [flags] [args]
//
// Commands:
//
//	opcodes    List every mnemonic available under a fork
//	describe   Describe one mnemonic by name
//	disasm     Disassemble bytecode from hex or a file
//	forks      Show the upgrade history and activation blocks
//	eip        Show what an EIP introduces and where it is included
//	config     Print the effective configuration
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/eth2030/evmkit/core/forks"
	"github.com/eth2030/evmkit/log"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

// env carries the resolved configuration and output streams into command
// actions.
type env struct {
	cfg    Config
	stdout io.Writer
	stderr io.Writer
	log    *log.Logger
}

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	forkFlag = &cli.StringFlag{
		Name:  "fork",
		Usage: "upgrade used to judge instruction availability (e.g. shanghai)",
	}
	chainFlag = &cli.Uint64Flag{
		Name:  "chain",
		Usage: "chain id for activation lookups",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "log level 0-5 (0=silent, 5=debug)",
	}
	logFormatFlag = &cli.StringFlag{
		Name:  "log.format",
		Usage: "log output format (text, json)",
	}
	pagerFlag = &cli.StringFlag{
		Name:  "pager",
		Usage: `pager command for listings ("-" disables paging)`,
	}
	colorFlag = &cli.StringFlag{
		Name:  "color",
		Usage: "colour output (auto, always, never)",
	}
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the CLI with the given arguments (including the program name)
// and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	e := &env{stdout: stdout, stderr: stderr, log: log.Default()}
	app := newApp(e)
	if err := app.Run(args); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		var ec cli.ExitCoder
		if errors.As(err, &ec) {
			return ec.ExitCode()
		}
		return 1
	}
	return 0
}

func newApp(e *env) *cli.App {
	return &cli.App{
		Name:      "evmkit",
		Usage:     "EVM opcode table, disassembler and fork resolver",
		Version:   fmt.Sprintf("%s (commit %s)", version, commit),
		Writer:    e.stdout,
		ErrWriter: e.stderr,
		Flags: []cli.Flag{
			configFlag,
			forkFlag,
			chainFlag,
			verbosityFlag,
			logFormatFlag,
			pagerFlag,
			colorFlag,
		},
		Before: e.setup,
		Commands: []*cli.Command{
			opcodesCommand(e),
			describeCommand(e),
			disasmCommand(e),
			forksCommand(e),
			eipCommand(e),
			configCommand(e),
		},
		// Exit codes are decided by run, never by os.Exit inside the app.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// setup resolves the configuration (defaults < file < flags) and installs
// the logger.
func (e *env) setup(ctx *cli.Context) error {
	cfg, err := LoadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return cli.Exit(err, 2)
	}
	if ctx.IsSet(forkFlag.Name) {
		u, err := forks.UpgradeByName(ctx.String(forkFlag.Name))
		if err != nil {
			return cli.Exit(err, 2)
		}
		cfg.Fork = u
	}
	if ctx.IsSet(chainFlag.Name) {
		cfg.Chain = ctx.Uint64(chainFlag.Name)
	}
	if ctx.IsSet(verbosityFlag.Name) {
		cfg.Verbosity = ctx.Int(verbosityFlag.Name)
	}
	if ctx.IsSet(logFormatFlag.Name) {
		cfg.LogFormat = ctx.String(logFormatFlag.Name)
	}
	if ctx.IsSet(pagerFlag.Name) {
		cfg.Pager = ctx.String(pagerFlag.Name)
	}
	if ctx.IsSet(colorFlag.Name) {
		cfg.Color = ctx.String(colorFlag.Name)
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err, 2)
	}

	logger, err := log.NewFor(e.stderr, cfg.LogFormat, log.LevelFromVerbosity(cfg.Verbosity))
	if err != nil {
		return cli.Exit(err, 2)
	}
	log.SetDefault(logger)
	e.cfg = cfg
	e.log = logger.Module("cli")
	e.log.Info("Configuration loaded", "fork", cfg.Fork, "chain", cfg.Chain,
		"verbosity", cfg.Verbosity, "config", ctx.String(configFlag.Name))
	return nil
}
