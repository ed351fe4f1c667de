package main

import (
	"log/slog"
	"os"

	"github.com/dasdy/softkeys/cmd/softkeys"
	"github.com/dasdy/softkeys/logging"
)

func main() {
	// The root command replaces this once --verbose is known.
	slog.SetDefault(logging.NewLogger(os.Stderr, false))

	softkeys.Execute()
}
