package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"fintrack/internal/cli"
	"fintrack/internal/log"
)

const usage = `Usage: fintrack <command> [flags]

Commands:
  snapshot     month overview, budgets, overspend and unread alerts
  project      projected recurring transactions for a month
  status       budget status for every active limit
  overspend    month-end overspend projection
  adjust       budget adjustment suggestions
  duplicates   possible duplicate transaction groups
  resolve      confirm or dismiss a duplicate candidate
  alerts       list | process | read <id> | dismiss <id> | prune
  similarity   similarity score of two descriptions
  limits       list | add
  invoices     list | add
`

var errUsage = errors.New("invalid usage")

func main() {
	cli.LoadEnvFile()

	// Reports go to stdout; logs stay on stderr.
	logger := cli.SetupLogger(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	repo, cleanup, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open store",
			log.FieldComponent, log.ComponentCLI,
			log.FieldError, err)
		os.Exit(1)
	}
	defer cleanup()

	engine, err := cli.BuildEngine(logger, cfg, repo, nil)
	if err != nil {
		logger.Error("Failed to build engine",
			log.FieldComponent, log.ComponentCLI,
			log.FieldError, err)
		cleanup()
		os.Exit(1)
	}

	a := &app{engine: engine, repo: repo, cfg: cfg, out: os.Stdout}
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		cleanup()
		os.Exit(1)
	}
}
