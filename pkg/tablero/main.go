package tablero

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Main parses args, builds the application, and executes the selected
// command. It is the single entry point the cmd/tablero binary delegates
// to, kept here so tests can drive the full CLI path in-process.
func Main(ctx context.Context, args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cmd, config, err := Parse(args)
	if err != nil {
		return err
	}

	app, err := New(config, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	switch c := cmd.(type) {
	case *RunCommand:
		return app.Run(ctx, c)
	case *InitCommand:
		return app.Init(ctx)
	default:
		return fmt.Errorf("unhandled command: %s", cmd.Name())
	}
}
