// Command loadtest drives simulated shop users against a running inventory API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"inventario/internal/loadtest"
	"inventario/internal/logger"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	flags := pflag.NewFlagSet("loadtest", pflag.ExitOnError)
	flags.String("host", "http://localhost:5000", "base URL of the inventory API")
	flags.Int("users", 10, "number of concurrent simulated users")
	flags.Duration("duration", time.Minute, "how long to run")
	flags.Duration("wait-min", time.Second, "minimum wait between tasks")
	flags.Duration("wait-max", 3*time.Second, "maximum wait between tasks")
	flags.Duration("timeout", 10*time.Second, "per-request timeout")
	flags.String("log-level", "info", "log level")
	_ = flags.Parse(os.Args[1:])

	// LOADTEST_USERS=50 overrides the default but not an explicit --users.
	v := viper.New()
	v.SetEnvPrefix("loadtest")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	log := logger.New(logger.Config{Env: "development", Level: v.GetString("log-level")})

	cfg := loadtest.Config{
		Host:     v.GetString("host"),
		Users:    v.GetInt("users"),
		Duration: v.GetDuration("duration"),
		WaitMin:  v.GetDuration("wait-min"),
		WaitMax:  v.GetDuration("wait-max"),
		Timeout:  v.GetDuration("timeout"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	log.Info().Str("host", cfg.Host).Int("users", cfg.Users).Dur("duration", cfg.Duration).Msg("starting load test")
	stats, err := loadtest.Run(ctx, cfg, loadtest.DefaultTasks())
	if err != nil {
		log.Fatal().Err(err).Msg("load test failed")
	}

	fmt.Printf("%-24s %10s %10s %12s\n", "task", "requests", "failures", "avg")
	for _, ts := range stats.Snapshot() {
		fmt.Printf("%-24s %10d %10d %12s\n", ts.Name, ts.Requests, ts.Failures, ts.Average())
	}
}
