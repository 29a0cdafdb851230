package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/campus/internal/commands"
	"github.com/sidereusnuntius/campus/internal/config"
	"github.com/sidereusnuntius/campus/internal/initialization"
	"github.com/sidereusnuntius/campus/internal/state"
	"github.com/spf13/pflag"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := config.Flags()
	flags.Usage = func() {
		commands.Usage(os.Stderr)
		fmt.Fprintf(os.Stderr, "\nGlobal flags:\n%s", flags.FlagUsages())
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	cmd, ok := commands.Find(flags.Arg(0))
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flags.Arg(0))
		flags.Usage()
		return 2
	}

	cfg, err := config.ReadConfig(flags)
	if err != nil {
		log.Error().Err(err).Msg("failed to read configuration")
		return 1
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := &commands.Env{Out: os.Stdout, Password: commands.ReadPassword}
	if !cmd.Standalone {
		s, closer, err := initialization.OpenStorage(ctx, cfg.Storage)
		if err != nil {
			log.Error().Err(err).Msg("failed to open local state")
			return 1
		}
		defer closer()

		// Failures are reported once, when the command returns.
		notifier := commands.Notifier{Out: os.Stdout, Err: io.Discard}
		if env.State, err = state.New(cfg, s, notifier); err != nil {
			log.Error().Err(err).Msg("failed to initialize")
			return 1
		}
		env.State.Start(ctx)
	}

	if err = cmd.Run(ctx, env, flags.Args()[1:]); err != nil {
		if errors.Is(err, commands.ErrUsage) {
			fmt.Fprintf(os.Stderr, "%s\nusage: campus %s %s\n", err, cmd.Name, cmd.Args)
			return 2
		}
		fmt.Fprintln(os.Stderr, commands.Describe(err))
		log.Debug().Err(err).Str("command", cmd.Name).Msg("command failed")
		return 1
	}
	return 0
}
