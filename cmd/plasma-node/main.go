package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kfichter/plasma-core/node"
	"github.com/kfichter/plasma-core/node/store"
)

func main() {
	defaults := node.DefaultConfig()

	cfg := defaults
	flag.StringVar(&cfg.DataDir, "datadir", defaults.DataDir, "node data directory")
	flag.StringVar(&cfg.Operator, "operator", defaults.Operator, "operator address (hex) allowed to commit block roots")
	flag.Uint64Var(&cfg.ExitBond, "exit-bond", defaults.ExitBond, "bond attached to every startExit")
	flag.Uint64Var(&cfg.ChallengePeriod, "challenge-period", defaults.ChallengePeriod, "challenge period in seconds")
	flag.IntVar(&cfg.TreeHeight, "tree-height", defaults.TreeHeight, "fixed merkle tree height per block")
	flag.StringVar(&cfg.LogLevel, "log-level", defaults.LogLevel, "log level: debug|info|warn|error")
	dryRun := flag.Bool("dry-run", false, "print effective config and exit")
	flag.Parse()

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := node.ValidateConfig(cfg); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(2)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "datadir create failed: %v\n", err)
		os.Exit(2)
	}

	db, err := store.Open(cfg.DataDir)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "store open failed: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = db.Close() }()

	game, err := node.NewExitGame(cfg, db)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "exit game restore failed: %v\n", err)
		os.Exit(2)
	}

	if err := printConfig(cfg); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config encode failed: %v\n", err)
		os.Exit(1)
	}
	_, _ = fmt.Fprintf(os.Stdout, "exitgame: next_block=%d pending_exits=%d\n", game.CurrentBlock(), game.QueueLen())
	if *dryRun {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprintln(os.Stdout, "plasma-node running")
	<-ctx.Done()
	_, _ = fmt.Fprintln(os.Stdout, "plasma-node stopped")
}

func printConfig(cfg node.Config) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}
