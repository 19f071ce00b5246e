package loadtest

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config controls a load-test run.
type Config struct {
	Host     string
	Users    int
	Duration time.Duration
	WaitMin  time.Duration
	WaitMax  time.Duration
	Timeout  time.Duration
	Seed     int64
}

// Validate rejects settings that cannot produce a run.
func (c Config) Validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("host is required")
	case c.Users < 1:
		return fmt.Errorf("users must be at least 1")
	case c.Duration <= 0:
		return fmt.Errorf("duration must be positive")
	case c.WaitMin < 0 || c.WaitMax < c.WaitMin:
		return fmt.Errorf("wait range [%s, %s] is invalid", c.WaitMin, c.WaitMax)
	}
	return nil
}

// Run simulates cfg.Users concurrent users for cfg.Duration. Each user checks
// the health endpoint once, then runs weighted tasks separated by a random
// wait. Task failures are counted, never fatal.
func Run(ctx context.Context, cfg Config, tasks []Task) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := newPicker(tasks)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	log := zerolog.Ctx(ctx)
	client := NewClient(cfg.Host, cfg.Timeout)
	stats := newStats()

	g, ctx := errgroup.WithContext(ctx)
	for user := 0; user < cfg.Users; user++ {
		user := user
		rnd := rand.New(rand.NewSource(cfg.Seed + int64(user)))
		g.Go(func() error {
			start := time.Now()
			err := client.Health()
			stats.record("on start: health check", time.Since(start), err)
			if err != nil {
				log.Warn().Err(err).Int("user", user).Msg("health check failed")
			}

			for {
				task := p.pick(rnd)
				start := time.Now()
				err := task.Run(client, rnd)
				stats.record(task.Name, time.Since(start), err)
				if err != nil {
					log.Debug().Err(err).Int("user", user).Str("task", task.Name).Msg("task failed")
				}

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(wait(rnd, cfg.WaitMin, cfg.WaitMax)):
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

func wait(rnd *rand.Rand, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rnd.Int63n(int64(hi-lo)+1))
}
