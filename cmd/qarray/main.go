package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacoelho/qarray/internal/config"
	"github.com/jacoelho/qarray/internal/execute"
	"github.com/jacoelho/qarray/internal/exit"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, result := config.Parse(args)
	if result != nil {
		return finish(result)
	}

	runner, result := execute.New(cfg)
	if result != nil {
		return finish(result)
	}

	return runner.Run(ctx)
}

func finish(result *exit.Result) int {
	result.Print()
	return result.ExitCode
}
