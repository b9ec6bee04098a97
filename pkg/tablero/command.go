package tablero

// Command represents a discrete application operation with its specific
// configuration. Parse turns command-line arguments into a Command plus the
// shared Config; Main routes each Command to the matching App method.
type Command interface {
	// Name returns the command identifier used for routing.
	Name() string
}

// RunCommand starts the HTTP server.
type RunCommand struct{}

func (RunCommand) Name() string { return "run" }

// InitCommand initializes the backing store with an empty document if it
// does not exist yet. Run performs the same initialization on startup, so
// init exists for provisioning a data file ahead of time.
type InitCommand struct{}

func (InitCommand) Name() string { return "init" }
