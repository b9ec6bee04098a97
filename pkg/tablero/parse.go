package tablero

import (
	"flag"
	"fmt"
	"os"
)

// Parse parses command line arguments and returns the command to execute,
// the application configuration, and any error that occurred. Flag defaults
// fall back to the deployment environment variables (PORT, N8N_WEBHOOK_URL).
func Parse(args []string) (Command, *Config, error) {
	flagSet := flag.NewFlagSet("tablero", flag.ContinueOnError)

	var (
		port      = flagSet.String("port", getEnv("PORT", "3001"), "Server port")
		storeKind = flagSet.String("store", getEnv("TABLERO_STORE", StoreFile), "Persistence backend: file, sqlite, or memory")
		dataPath  = flagSet.String("data", getEnv("TABLERO_DATA", "data/db.json"), "Path to the board document (file store) or database (sqlite store)")
		webhook   = flagSet.String("webhook", getEnv("N8N_WEBHOOK_URL", ""), "Webhook URL receiving board events (empty disables)")
	)

	if err := flagSet.Parse(args); err != nil {
		return nil, nil, err
	}

	remainingArgs := flagSet.Args()
	if len(remainingArgs) == 0 {
		return nil, nil, fmt.Errorf(`subcommand required

Usage: tablero [flags] <command>

Commands:
  run       Start the board API server
  init      Create the backing document if it does not exist

Examples:
  tablero run                                # file store at data/db.json on :3001
  tablero -port=8080 run
  tablero -store=sqlite -data=data/board.db run
  tablero -webhook=https://n8n.example.com/webhook/board run
  tablero init                               # provision the data file only`)
	}

	var cmd Command
	switch remainingArgs[0] {
	case "run":
		cmd = &RunCommand{}
	case "init":
		cmd = &InitCommand{}
	default:
		return nil, nil, fmt.Errorf("unknown command: %s\n\nValid commands: run, init", remainingArgs[0])
	}

	switch *storeKind {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return nil, nil, fmt.Errorf("invalid store kind: %s (must be file, sqlite, or memory)", *storeKind)
	}

	config := &Config{
		ServerPort: *port,
		StoreKind:  *storeKind,
		DataPath:   *dataPath,
		WebhookURL: *webhook,
	}
	return cmd, config, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
