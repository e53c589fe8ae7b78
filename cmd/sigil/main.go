// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the Sigil CLI: a quarantine-first security
// scanner for untrusted source trees, packages, and repositories.
//
// Usage:
//
//	sigil scan <path> [--format fmt] [--threshold v] [--no-cache]
//	sigil clone <url>
//	sigil pip <name[@version]> | sigil npm <name[@version]>
//	sigil fetch <url>
//	sigil list
//	sigil approve <id> | sigil reject <id>
//	sigil diff <baseline> <current>
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/sigil/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags holds the global CLI flags that apply to all commands.
type GlobalFlags struct {
	JSON    bool
	NoColor bool
	Verbose int
	Quiet   bool
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		configPath  = flag.StringP("config", "c", "", "Path to .sigil/config.yaml (default: discovered)")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format (for applicable commands)")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v for info, -vv for debug)")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress non-essential output (progress, info messages)")
	)

	// Stop parsing at the first non-flag argument so subcommand flags like
	// "scan --no-cache" pass through instead of being rejected here.
	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Sigil - quarantine-first security auditing for untrusted code

Sigil stages untrusted source trees, git repositories, and packages into
an isolated quarantine area, scans them against a catalog of supply-chain
attack signatures, and holds them Pending until explicitly approved.

Usage:
  sigil <command> [options]

Commands:
  init                           Create .sigil/config.yaml configuration
  scan <path>                    Scan an on-disk directory or file
  clone <url>                    Stage a git repository, then scan
  pip <name[@version]>           Stage a pip package, then scan
  npm <name[@version]>           Stage an npm package, then scan
  fetch <url>                    Stage an arbitrary URL payload, then scan
  list                           Enumerate quarantine items
  approve <id>                   Move an item from Pending to Approved
  reject <id>                    Delete a Pending item's staged tree
  diff <baseline> <current>      Compare two JSON scan reports
  completion                     Generate shell completion script (bash|zsh|fish)

Global Options:
  --json            Output in JSON format (for applicable commands)
  --no-color        Disable color output (respects NO_COLOR env var)
  -v, --verbose     Increase verbosity (-v for info, -vv for debug)
  -q, --quiet       Suppress non-essential output (progress, info messages)
  -c, --config      Path to .sigil/config.yaml
  -V, --version     Show version and exit

Examples:
  sigil init
  sigil scan ./vendor/some-dep
  sigil clone https://github.com/example/pkg
  sigil pip requests@2.31.0
  sigil list
  sigil approve 20260101_120000_some-dep

Environment Variables:
  SIGIL_ROOT          Quarantine root directory (default: ~/.sigil/root)
  SIGIL_CONFIG_PATH   Explicit path to config.yaml
  SIGIL_WORKERS       Override the scanner worker pool size

For detailed command help: sigil <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("sigil version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}

	if *quiet && *verbose > 0 {
		fmt.Fprintf(os.Stderr, "Error: cannot use --quiet and --verbose together\n")
		os.Exit(1)
	}

	// JSON mode auto-enables quiet to prevent progress bars corrupting
	// machine-readable output.
	if *jsonOutput {
		*quiet = true
	}

	globals := GlobalFlags{
		JSON:    *jsonOutput,
		NoColor: *noColor,
		Verbose: *verbose,
		Quiet:   *quiet,
	}

	ui.InitColors(globals.NoColor)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	var exitCode int
	switch command {
	case "init":
		exitCode = runInit(cmdArgs, *configPath, globals)
	case "scan":
		exitCode = runScan(cmdArgs, *configPath, globals)
	case "clone":
		exitCode = runClone(cmdArgs, *configPath, globals)
	case "pip":
		exitCode = runPackage(cmdArgs, *configPath, globals, "pip")
	case "npm":
		exitCode = runPackage(cmdArgs, *configPath, globals, "npm")
	case "fetch":
		exitCode = runFetch(cmdArgs, *configPath, globals)
	case "list":
		exitCode = runList(cmdArgs, *configPath, globals)
	case "approve":
		exitCode = runApprove(cmdArgs, *configPath, globals)
	case "reject":
		exitCode = runReject(cmdArgs, *configPath, globals)
	case "diff":
		exitCode = runDiff(cmdArgs, *configPath, globals)
	case "completion":
		exitCode = runCompletion(cmdArgs, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
	os.Exit(exitCode)
}
