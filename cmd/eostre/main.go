package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agbs2k8/eostre/internal/app"
	"github.com/agbs2k8/eostre/internal/config"
	"github.com/agbs2k8/eostre/internal/logging"
	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		color.Yellow("Ignoring .env: %v\n", err)
	}

	cmd := os.Args[1]
	args := os.Args[2:]
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cmd, args); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	logging.Setup(cfg.GetLogLevel(), cfg.GetEnv(), os.Stderr)

	client, err := app.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	switch cmd {
	case "login":
		return cmdLogin(ctx, client, args)
	case "logout":
		return cmdLogout(ctx, client)
	case "whoami":
		return cmdWhoami(client)
	case "refresh":
		return cmdRefresh(ctx, client)
	case "request":
		return cmdRequest(ctx, client, args)
	case "profile":
		return cmdProfile(ctx, client)
	case "roles":
		return cmdRoles(ctx, client)
	case "locations":
		return cmdLocations(ctx, client)
	case "watch":
		return cmdWatch(ctx, client, args)
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage() {
	yellow := color.New(color.FgYellow)

	figure.NewFigure("eostre", "cybermedium", true).Print()
	fmt.Println()
	fmt.Println("Usage: eostre <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  login <username>                 Log in (password from EOSTRE_PASSWORD or stdin)")
	fmt.Println("  logout                           Log out and forget the stored token")
	fmt.Println("  whoami                           Show the identity in the stored token")
	fmt.Println("  refresh                          Trade the refresh cookie for a new token")
	fmt.Println("  request <METHOD> <path> [json]   Send an authenticated request")
	fmt.Println("  profile                          Show your user profile")
	fmt.Println("  roles                            List roles")
	fmt.Println("  locations                        List locations")
	fmt.Println("  watch [username]                 Keep the session alive and print transitions")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  EOSTRE_API_BASE_URL              Backend origin (default: http://localhost:8080)")
	fmt.Println("  EOSTRE_TOKEN_STORE               file, redis or memory (default: file)")
	fmt.Println("  EOSTRE_CONFIG                    Optional TOML config file")
	fmt.Println()
}
