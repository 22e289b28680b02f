package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"

	"rostercal/internal/config"
	appLog "rostercal/internal/log"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	from       string
	to         string
	out        string
	once       bool
	rrule      bool
	debug      bool
	logLevel   string
}

func main() {
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	appLog.SetLevel(appLog.ParseLevel(flags.logLevel))
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	appLog.Info("rostercal starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --out overrides config file output if provided.
	if flags.out != "" {
		conf.Output = flags.out
	}

	appLog.Info("effective config",
		"week_start", conf.WeekStart,
		"refresh", conf.RefreshCron,
		"horizon_days", conf.HorizonDays,
		"output", conf.Output,
		"block_count", len(conf.Blocks),
		"holiday_count", len(conf.Holidays),
		"once", flags.once,
	)

	if flags.rrule {
		logRRules(conf)
	}

	p := &pipeline{conf: conf, from: flags.from, to: flags.to, now: time.Now}
	if err := p.run(); err != nil {
		appLog.Error("generate failed", err)
		if flags.once {
			os.Exit(1)
		}
	}
	if flags.once {
		return
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, func() {
		if err := p.run(); err != nil {
			appLog.Error("scheduled generate failed", err)
		}
	}); err != nil {
		appLog.Error("failed to schedule refresh", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	appLog.Info("refresh scheduled", "refresh", conf.RefreshCron)

	<-ctx.Done()

	// Wait for a running generation to finish before exiting.
	<-c.Stop().Done()
	appLog.Info("rostercal exiting")
}

func parseFlags(args []string) (flagConfig, error) {
	var cfg flagConfig

	fs := pflag.NewFlagSet("rostercal", pflag.ContinueOnError)
	fs.StringVarP(&cfg.configPath, "config", "c", defaultConfigPath(), "Path to config file")
	fs.StringVar(&cfg.from, "from", "", "First day to expand, YYYY-MM-DD (default: today)")
	fs.StringVar(&cfg.to, "to", "", "Last day to expand, YYYY-MM-DD (default: from + horizon_days - 1)")
	fs.StringVarP(&cfg.out, "out", "o", "", "Output .ics path (overrides config if set)")
	fs.BoolVar(&cfg.once, "once", false, "Generate once and exit instead of running the refresh schedule")
	fs.BoolVar(&cfg.rrule, "rrule", false, "Log the RRULE equivalent of every configured rule")
	fs.BoolVar(&cfg.debug, "debug", false, "Enable debug logging (same as --log-level=debug)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug, info or error")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// defaultConfigPath prefers the system location and falls back to the
// working directory for development runs.
func defaultConfigPath() string {
	const system = "/etc/rostercal/config.yaml"
	if _, err := os.Stat(system); err == nil {
		return system
	}
	return "./config.yaml"
}
