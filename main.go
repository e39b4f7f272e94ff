package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ardnew/slang/cli"
	"github.com/ardnew/slang/lang"
	"github.com/ardnew/slang/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err != nil {
		log.Error("run failed", errorAttr(err))
		os.Exit(1)
	}
}

// errorAttr returns err as a log attribute. Interpreter errors are logged
// with their class, position and context attributes.
func errorAttr(err error) slog.Attr {
	var le *lang.Error
	if errors.As(err, &le) {
		return slog.Any("error", le)
	}

	return slog.Any("error", err)
}
