package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/alignlab/entalign/internal/config"
	"github.com/alignlab/entalign/internal/corpus"
	"github.com/alignlab/entalign/internal/db"
	"github.com/alignlab/entalign/internal/embed"
	"github.com/alignlab/entalign/internal/match"
	"github.com/alignlab/entalign/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"ingest": true, "align": true, "submit": true, "annotations": true,
	"delete": true, "categories": true, "status": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
  entalign

  Entity-to-text alignment and annotation ledger

  Usage: entalign <command> [options]
         entalign --help

  MCP server mode requires piped input.`)
}

// loadCorpus reads the configured corpus file. A missing corpus is not
// fatal: ledger-only commands still work against an empty store.
func loadCorpus(cfg *config.Config) *corpus.Store {
	store, parseErrors, err := corpus.LoadFile(cfg.CorpusPath)
	if err != nil {
		log.Printf("corpus: %s not loaded: %v", cfg.CorpusPath, err)
		return corpus.NewStore()
	}
	for _, pe := range parseErrors {
		log.Printf("corpus: %s: %v", cfg.CorpusPath, pe)
	}
	return store
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil, nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".entalign")

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	db.ConfigurePool(database, cfg)

	store := loadCorpus(cfg)
	embedder := embed.NewOllamaEmbedder(cfg.EmbedEndpoint, cfg.EmbedModel)
	engine := match.NewEngine(embedder, cfg.SemanticThreshold, cfg.FuzzyThreshold, cfg.MaxWindowWords)

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(database, cfg, store, engine)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'entalign --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Printf("config: unknown disabled tools: %v", unknown)
	}
	if err := mcp.Run(database, cfg, store, engine, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
