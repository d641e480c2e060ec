package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"apptcal/internal/appointment"
	"apptcal/internal/config"
	appLog "apptcal/internal/log"
)

const version = "0.1.0"

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		appLog.Error("apptcal failed", err)
		appLog.Sync()
		os.Exit(1)
	}
	appLog.Sync()
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "apptcal",
		Usage:   "Month calendar with one appointment per day.",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "./apptcal.yaml",
				Usage:   "path to the YAML config; created with defaults when missing",
				EnvVars: []string{"APPTCAL_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error (overrides the config)",
				EnvVars: []string{"APPTCAL_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			tuiCommand(),
			gridCommand(),
			captureCommand(),
			hashPasswordCommand(),
		},
	}
}

// loadConfig reads --config and applies the log level.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	conf, err := config.Load(path)
	if err != nil {
		if conf == nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		appLog.Warn("config not written, running on defaults", "config_path", path, "reason", err.Error())
	}

	levelName := conf.LogLevel
	if c.IsSet("log-level") {
		levelName = c.String("log-level")
	}
	lvl, ok := appLog.ParseLevel(levelName)
	if !ok {
		appLog.Warn("unknown log level, using info", "log_level", levelName)
	}
	appLog.SetLevel(lvl)
	return conf, nil
}

// newStore builds the appointment store on the configured zone.
func newStore(conf *config.Config) *appointment.Store {
	loc, err := conf.Location()
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", conf.Timezone)
	}
	return appointment.NewStore(
		appointment.WithClock(appointment.SystemClock{Location: loc}),
		appointment.WithHistoryLimit(conf.History()),
	)
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
