package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	bookingservice "ride-share/cmd/booking_service"
	notificationservice "ride-share/cmd/notification_service"
	"ride-share/internal/cli"
)

const defaultConfig = "config/config.yaml"

func main() {
	// quick path for global help
	if len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h") {
		cli.PrintUsage(os.Stdout)
		os.Exit(0)
	}

	// parse mode and collect the remaining args for that mode
	mode, svcArgs, err := cli.ParseMode(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cli.PrintUsage(os.Stderr)
		os.Exit(2)
	}

	// context cancelled on SIGINT/SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch mode {

	case cli.ModeBooking:
		fs := flag.NewFlagSet(cli.ModeBooking, flag.ContinueOnError)
		configPath := fs.String("config", defaultConfig, "Path to the YAML config file")
		store := fs.String("store", bookingservice.StorePostgres, "Storage backend: postgres | memory")
		maxConc := fs.Int("max-concurrent", 100, "Maximum number of concurrent HTTP requests to process")
		devTokens := fs.Bool("dev-tokens", false, "Expose POST /tokens for minting test tokens")
		cli.AttachUsage(fs, cli.ModeBooking)

		parseOrExit(fs, svcArgs)
		if *maxConc < 1 {
			fmt.Fprintln(os.Stderr, "Error: --max-concurrent must be >= 1")
			fs.Usage()
			os.Exit(2)
		}
		if *store != bookingservice.StorePostgres && *store != bookingservice.StoreMemory {
			fmt.Fprintln(os.Stderr, "Error: --store must be postgres or memory")
			fs.Usage()
			os.Exit(2)
		}
		err := bookingservice.Run(ctx, bookingservice.Options{
			ConfigPath:    *configPath,
			Store:         *store,
			MaxConcurrent: *maxConc,
			DevTokens:     *devTokens,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}

	case cli.ModeNotification:
		fs := flag.NewFlagSet(cli.ModeNotification, flag.ContinueOnError)
		configPath := fs.String("config", defaultConfig, "Path to the YAML config file")
		cli.AttachUsage(fs, cli.ModeNotification)

		parseOrExit(fs, svcArgs)
		if err := notificationservice.Run(ctx, *configPath); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}

	default:
		// should not happen because ParseMode validates known modes
		fmt.Fprintln(os.Stderr, "Error: unknown mode")
		os.Exit(2)
	}

	// tiny delay to let deferred logs flush on very fast exits
	select {
	case <-ctx.Done():
	case <-time.After(10 * time.Millisecond):
	}
}

func parseOrExit(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}
