package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/vk/gridbalancer/internal/app"
	"github.com/vk/gridbalancer/internal/balancer"
	"github.com/vk/gridbalancer/internal/cli"
	"github.com/vk/gridbalancer/internal/hcl"
)

// exitInfeasible is returned when some op cannot be placed in any epoch.
const exitInfeasible = 3

// main is the entrypoint for the gridbalancer application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			stop()
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, logW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical config errors, so we recover here to provide
	// a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	// Instantiate the concrete HCL loader to pass to the app.
	loader := hcl.NewLoader()
	balancerApp := app.NewApp(outW, logW, appConfig, loader)

	if err := balancerApp.Run(ctx); err != nil {
		if errors.Is(err, balancer.ErrInfeasibleNode) {
			return &cli.ExitError{Code: exitInfeasible, Message: err.Error()}
		}
		return err
	}
	return nil
}
