package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golangdaddy/turbotrails/pkg/config"
	"github.com/golangdaddy/turbotrails/pkg/game"
	"github.com/golangdaddy/turbotrails/pkg/logging"
	"github.com/golangdaddy/turbotrails/pkg/session"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// options are the flags that are not config keys.
type options struct {
	configDir string
	headless  bool
	seconds   int
}

// timeout is how long a headless ride may last.
func (o options) timeout() time.Duration {
	return time.Duration(o.seconds) * time.Second
}

// newFlagSet declares the command line. Flags that mirror config keys are bound into viper.
func newFlagSet() (*pflag.FlagSet, *options) {
	opts := &options{}
	fs := pflag.NewFlagSet("turbotrails", pflag.ExitOnError)
	fs.StringVar(&opts.configDir, "config", ".", "directory containing "+config.FileName)
	fs.BoolVar(&opts.headless, "headless", false, "run an autopilot ride without a window and print the result as JSON")
	fs.IntVar(&opts.seconds, "seconds", 60, "how many seconds a headless ride may last")
	fs.String("profile", "", "bike profile to start with")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.Int64("seed", 0, "track seed, 0 picks one from the clock")
	return fs, opts
}

// bindFlags lets command line flags override config keys when they are set.
func bindFlags(fs *pflag.FlagSet) error {
	for key, flag := range map[string]string{
		"session.startProfile": "profile",
		"logLevel":             "log-level",
		"track.seed":           "seed",
	} {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}
	return nil
}

func main() {
	fs, opts := newFlagSet()
	_ = fs.Parse(os.Args[1:])
	if err := bindFlags(fs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	configErr := config.Load(opts.configDir)
	if configErr != nil && !errors.Is(configErr, config.ErrNoConfigFile) {
		fmt.Fprintln(os.Stderr, configErr)
		os.Exit(1)
	}

	settings, err := config.Current()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(settings.LogLevel, os.Stderr)
	if configErr != nil {
		logger.Warn().Str("dir", opts.configDir).Msg("no config file found, using defaults")
	}

	if opts.headless {
		ctx, cancel := context.WithTimeout(context.Background(), opts.timeout())
		defer cancel()

		ticker := time.NewTicker(time.Duration(settings.Session.TimeStep * float64(time.Second)))
		defer ticker.Stop()

		result, err := session.Headless(ctx, session.Config{
			Settings: settings,
			Logger:   logger,
		}, ticker.C)
		if err != nil {
			logger.Fatal().Err(err).Msg("headless ride failed")
		}
		if err := result.WriteJSON(os.Stdout); err != nil {
			logger.Fatal().Err(err).Msg("failed to write result")
		}
		return
	}

	ebiten.SetWindowSize(1024, 600)
	ebiten.SetWindowTitle("Turbo Trails")
	if err := ebiten.RunGame(game.NewGame(game.Options{Settings: settings, Logger: logger})); err != nil {
		logger.Fatal().Err(err).Msg("game exited")
	}
}
