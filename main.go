package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/nostui/app"
	"github.com/deemkeen/nostui/keymap"
	"github.com/deemkeen/nostui/relay"
	"github.com/deemkeen/nostui/ui"
	"github.com/deemkeen/nostui/ui/common"
	"github.com/deemkeen/nostui/util"
	"github.com/muesli/termenv"
	flag "github.com/spf13/pflag"
)

type options struct {
	tickRate   float64
	frameRate  float64
	configPath string
	logFile    string
	logLevel   string
	noColor    bool
}

func main() {
	opts := options{}
	flag.Float64Var(&opts.tickRate, "tick-rate", 4, "app ticks per second")
	flag.Float64Var(&opts.frameRate, "frame-rate", 60, "frames per second")
	flag.StringVar(&opts.configPath, "config", "", "config file (default: search the working and config directory)")
	flag.StringVar(&opts.logFile, "log-file", "", "log file (default: <data dir>/"+util.LogFileName+")")
	flag.StringVar(&opts.logLevel, "log-level", envOr("NOSTUI_LOG_LEVEL", "info"), "debug, info, warn or error")
	flag.BoolVar(&opts.noColor, "no-color", false, "disable colors")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(util.GetNameAndVersion())
		return
	}

	for _, f := range []struct {
		name string
		rate float64
	}{{"tick-rate", opts.tickRate}, {"frame-rate", opts.frameRate}} {
		if _, err := app.Interval(f.rate); err != nil {
			fmt.Fprintf(os.Stderr, "invalid --%s: %v\n", f.name, err)
			os.Exit(2)
		}
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func run(opts options) error {
	level, err := util.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	logger, closeLog, err := util.SetupLogging(opts.logFile, level)
	if err != nil {
		return err
	}
	defer closeLog()

	logger.Info("starting", "version", util.GetVersion())

	conf, err := util.ReadConf(opts.configPath)
	if err != nil {
		logger.Error("config", "error", err)
		return err
	}
	if conf.Path != "" {
		logger.Info("config loaded", "path", conf.Path)
	}

	keys, err := relay.ParseSecretKey(conf.SecretKey())
	if err != nil {
		return &util.ConfigError{Field: "key", Err: err}
	}
	follows, err := relay.ParsePublicKeys(conf.Follows)
	if err != nil {
		return &util.ConfigError{Field: "follows", Err: err}
	}
	table, err := keymap.Load(conf.Keybindings)
	if err != nil {
		return fmt.Errorf("keybindings: %w", err)
	}

	renderer := lipgloss.NewRenderer(os.Stdout)
	if opts.noColor {
		renderer.SetColorProfile(termenv.Ascii)
	}
	lipgloss.SetDefaultRenderer(renderer)
	styles, err := common.ParseStyles(renderer, conf.Styles)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sources, stopSources := context.WithCancel(ctx)
	defer stopSources()
	// Relay connections outlive a signal so in-flight publishes can still
	// get their OK; the runner closes them after the grace period.
	conns, stopPool := context.WithCancel(context.WithoutCancel(ctx))
	defer stopPool()

	clock := util.RealClock()
	ch := app.NewChannel(app.DefaultCapacity)

	pool := relay.NewPool(relay.Options{
		URLs:    conf.Relays,
		Keys:    keys,
		Follows: follows,
		Backoff: relay.Backoff{
			Initial: conf.Reconnect.Initial.Std(),
			Max:     conf.Reconnect.Max.Std(),
		},
		Lookback:       conf.Lookback.Std(),
		Limit:          conf.Limit,
		PublishTimeout: conf.PublishTimeout.Std(),
		Clock:          clock,
		Logger:         logger,
	}, ch)

	program := ui.NewProgram(ui.NewModel(ui.Config{
		Ctx:     sources,
		Channel: ch,
		Keys:    table,
		Styles:  styles,
		NPub:    keys.NPub,
		Logger:  logger,
	}))

	runner := app.NewRunner(
		app.Reducer{Keys: table, Self: keys.Public},
		app.NewState(keys.Public, conf.PendingLimit).WithRelays(pool.Statuses()),
		ch, pool, program,
		app.Options{
			StopSources:   stopSources,
			StopPublisher: stopPool,
			Pager:         pool,
			Grace:         conf.ShutdownGrace.Std(),
			Clock:         clock,
			Logger:        logger,
		},
	)

	pool.Start(conns)
	go func() {
		if err := app.RunTimers(sources, ch, clock, opts.tickRate, opts.frameRate); err != nil {
			logger.Error("timers", "error", err)
		}
	}()

	runErr := make(chan error, 1)
	go func() {
		runErr <- runner.Run(ctx)
	}()

	uiErr := program.Run()
	if uiErr != nil {
		logger.Error("ui stopped", "error", uiErr)
	}
	// The runner has already returned unless the ui exited on its own.
	stop()
	err = <-runErr
	pool.Wait()

	logger.Info("stopped")
	return errors.Join(uiErr, err)
}
