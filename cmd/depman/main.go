package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/depman/internal/cli"
	depmanerrors "github.com/matzehuels/depman/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(os.Stderr, cli.LogInfo)
	err := c.RootCommand().ExecuteContext(ctx)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		os.Exit(130) // Standard shell convention for SIGINT
	}

	fmt.Fprintln(os.Stderr, "Error:", depmanerrors.UserMessage(err))
	if hint := depmanerrors.Hint(err); hint != "" {
		fmt.Fprintln(os.Stderr, "Hint: ", hint)
	}
	os.Exit(depmanerrors.ExitCode(err))
}
