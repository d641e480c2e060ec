package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/term"

	"apptcal/internal/auth"
	"apptcal/internal/calendar"
	"apptcal/internal/capture"
	"apptcal/internal/config"
	"apptcal/internal/ics"
	appLog "apptcal/internal/log"
	"apptcal/internal/schedule"
	"apptcal/internal/tui"
	"apptcal/internal/web"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the web UI, the API and the scheduled jobs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "listen",
				Usage:   "HTTP listen address (overrides the config)",
				EnvVars: []string{"APPTCAL_LISTEN"},
			},
		},
		Action: func(c *cli.Context) error {
			conf, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.IsSet("listen") {
				conf.Listen = c.String("listen")
			}

			ctx, stop := signalContext(c.Context)
			defer stop()

			store := newStore(conf)
			srv := web.NewServer(conf, store)
			sched := schedule.New(store.Location())

			appLog.Info("effective config",
				"listen", conf.Listen,
				"timezone", conf.Timezone,
				"history_limit", conf.History(),
				"import_horizon_days", conf.ImportHorizonDays,
				"refresh", conf.RefreshCron,
				"ics_count", len(conf.ICS),
				"capture", conf.Capture.Enabled,
			)

			if sources := feedSources(conf); len(sources) > 0 {
				im := &ics.Importer{
					Fetcher:     ics.NewFetcher("", nil),
					Sources:     sources,
					Location:    store.Location(),
					HorizonDays: conf.ImportHorizonDays,
				}
				job := schedule.ImportJob(im, srv)
				if err := sched.Add("feed-import", conf.RefreshCron, job); err != nil {
					return err
				}
				go func() {
					if err := job(ctx); err != nil {
						appLog.Error("initial feed import incomplete", err)
					}
				}()
			}

			if conf.Capture.Enabled {
				if err := sched.Add("capture", conf.Capture.Cron, schedule.CaptureJob(captureOptions(conf, "", ""))); err != nil {
					return err
				}
			}

			schedDone := make(chan struct{})
			go func() {
				sched.Run(ctx)
				close(schedDone)
			}()

			err = srv.Run(ctx)
			stop()
			<-schedDone
			appLog.Info("apptcal exiting")
			return err
		},
	}
}

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "run the terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "write logs here instead of discarding them",
				EnvVars: []string{"APPTCAL_LOG_FILE"},
			},
		},
		Action: func(c *cli.Context) error {
			conf, err := loadConfig(c)
			if err != nil {
				return err
			}
			levelName := conf.LogLevel
			if c.IsSet("log-level") {
				levelName = c.String("log-level")
			}
			// Anything on stderr would tear the alternate screen.
			if err := redirectLogs(c.String("log-file"), levelName); err != nil {
				return err
			}

			ctx, stop := signalContext(c.Context)
			defer stop()

			store := newStore(conf)
			if sources := feedSources(conf); len(sources) > 0 {
				im := &ics.Importer{
					Fetcher:     ics.NewFetcher("", nil),
					Sources:     sources,
					Location:    store.Location(),
					HorizonDays: conf.ImportHorizonDays,
				}
				if _, err := im.Run(ctx, store); err != nil {
					appLog.Error("feed import incomplete", err)
				}
			}
			return tui.Run(ctx, store)
		},
	}
}

func gridCommand() *cli.Command {
	return &cli.Command{
		Name:  "grid",
		Usage: "print a month grid",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "year", Usage: "four-digit year (default: this year)"},
			&cli.IntFlag{Name: "month", Usage: "month 1-12 (default: this month)"},
		},
		Action: func(c *cli.Context) error {
			now := time.Now()
			year, month := now.Year(), int(now.Month())
			if c.IsSet("year") {
				year = c.Int("year")
			}
			if c.IsSet("month") {
				month = c.Int("month")
			}
			g, err := calendar.BuildMonthGrid(year, month-1)
			if err != nil {
				return err
			}
			return printGrid(c.App.Writer, g)
		},
	}
}

func captureCommand() *cli.Command {
	return &cli.Command{
		Name:  "capture",
		Usage: "screenshot the month page of a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "PNG output path (default: capture.output)"},
			&cli.StringFlag{Name: "url", Usage: "page URL (default: the configured listen address)"},
		},
		Action: func(c *cli.Context) error {
			conf, err := loadConfig(c)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(c.Context)
			defer stop()
			return capture.MonthPNG(ctx, captureOptions(conf, c.String("url"), c.String("out")))
		},
	}
}

func hashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:  "hash-password",
		Usage: "print a bcrypt hash for basic_auth.password_hash",
		Action: func(c *cli.Context) error {
			in := bufio.NewReader(os.Stdin)
			password, err := readSecret(in, "Enter password:   ")
			if err != nil {
				return err
			}
			confirm, err := readSecret(in, "Confirm password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return errors.New("passwords do not match")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, hash)
			return nil
		},
	}
}

// readSecret reads without echo from a terminal, or a plain line when
// stdin is piped.
func readSecret(in *bufio.Reader, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func feedSources(conf *config.Config) []ics.Source {
	sources := make([]ics.Source, 0, len(conf.ICS))
	for _, src := range conf.ICS {
		if src.URL == "" {
			continue
		}
		sources = append(sources, ics.Source{ID: src.SourceID(), URL: src.URL})
	}
	return sources
}

// captureOptions targets the local server unless url is given.
func captureOptions(conf *config.Config, url, out string) capture.Options {
	if url == "" {
		host := conf.Listen
		if strings.HasPrefix(host, ":") {
			host = "127.0.0.1" + host
		}
		url = "http://" + host + "/"
	}
	if out == "" {
		out = conf.Capture.Output
	}
	opts := capture.Options{
		URL:        url,
		OutputPath: out,
		Width:      conf.Capture.Width,
		Height:     conf.Capture.Height,
	}
	if ba := conf.BasicAuth; ba != nil {
		if ba.Password != "" {
			opts.Username, opts.Password = ba.Username, ba.Password
		} else {
			appLog.Warn("basic auth has only a password hash; capture will be unauthenticated")
		}
	}
	return opts
}

// redirectLogs sends logs to path, or drops them when path is empty.
func redirectLogs(path, levelName string) error {
	if path == "" {
		appLog.Use(zap.NewNop())
		return nil
	}
	lvl, _ := appLog.ParseLevel(levelName)
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zapLevel(lvl)
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	l, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}
	appLog.Use(l)
	return nil
}

func zapLevel(l appLog.Level) zap.AtomicLevel {
	switch l {
	case appLog.LevelDebug:
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case appLog.LevelWarn:
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case appLog.LevelError:
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}

// printGrid writes g as a plain text month.
func printGrid(w io.Writer, g calendar.Grid) error {
	const width = calendar.DaysPerWeek * 4
	title := g.Date().String()
	pad := max(0, (width-len(title))/2)

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", pad) + title + "\n")
	for _, wd := range calendar.Weekdays {
		fmt.Fprintf(&b, "%4s", wd)
	}
	b.WriteString("\n")
	for _, row := range g.Rows {
		for _, c := range row {
			if c.Blank() {
				b.WriteString("    ")
				continue
			}
			fmt.Fprintf(&b, "%4d", c.Day)
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
