// Package runner is the once-a-day automation: check the gates, wait a
// random while, report PRESENT and tell someone how it went.
package runner

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/fatcatfablab/autodoh/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultMaxJitter = 600 * time.Second

type Result int

const (
	SkippedDisabled Result = iota
	SkippedDate
	CompletedNotified
	CompletedNotNotified
)

func (r Result) String() string {
	switch r {
	case SkippedDisabled:
		return "skipped (disabled)"
	case SkippedDate:
		return "skipped (skip-date)"
	case CompletedNotified:
		return "completed (notified)"
	case CompletedNotNotified:
		return "completed (not notified)"
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

type Gate interface {
	IsEnabled() bool
	IsSkipped(t time.Time) bool
}

type Reporter interface {
	Submit(ctx context.Context, kind types.ReportKind) (types.Outcome, error)
}

type Runner struct {
	gate      Gate
	reporter  Reporter
	senders   []types.Sender
	maxJitter time.Duration
	disabled  bool
	loc       *time.Location

	now    func() time.Time
	jitter func(limit time.Duration) time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
}

type Option func(*Runner)

// WithSenders sets who hears about the outcome. Nil senders are ignored.
func WithSenders(senders ...types.Sender) Option {
	return func(r *Runner) {
		for _, s := range senders {
			if s != nil {
				r.senders = append(r.senders, s)
			}
		}
	}
}

func WithMaxJitter(d time.Duration) Option {
	return func(r *Runner) { r.maxJitter = max(d, 0) }
}

// WithDisabled forces every run to stop at the first gate, whatever the
// store says.
func WithDisabled(disabled bool) Option {
	return func(r *Runner) { r.disabled = disabled }
}

// WithLocation sets the time zone in which "today" is decided.
func WithLocation(loc *time.Location) Option {
	return func(r *Runner) { r.loc = loc }
}

func New(gate Gate, reporter Reporter, opts ...Option) *Runner {
	r := &Runner{
		gate:      gate,
		reporter:  reporter,
		maxJitter: DefaultMaxJitter,
		loc:       time.Local,
		now:       time.Now,
		jitter:    randomJitter,
		sleep:     sleepContext,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run goes through one daily cycle. The only error is a failed submission
// (or a cancelled wait); skips and notification failures are not errors.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	log := zap.S().With("run", uuid.NewString())

	if r.disabled || !r.gate.IsEnabled() {
		log.Info("Reporting is disabled, skipping")
		return SkippedDisabled, nil
	}

	today := r.now().In(r.loc)
	if r.gate.IsSkipped(today) {
		log.Infof("Skipping today (%s)", today.Format(time.DateOnly))
		return SkippedDate, nil
	}

	d := r.jitter(r.maxJitter)
	if err := r.sleep(ctx, d); err != nil {
		return CompletedNotNotified, fmt.Errorf("interrupted while sleeping: %w", err)
	}
	log.Infof("Woke up from a %d seconds sleep", int(d.Seconds()))

	o, err := r.reporter.Submit(ctx, types.Present)
	if err != nil {
		log.Errorf("Report failed: %s", err)
		return CompletedNotNotified, err
	}

	if r.notify(ctx, log, o) {
		return CompletedNotified, nil
	}
	return CompletedNotNotified, nil
}

func (r *Runner) notify(ctx context.Context, log *zap.SugaredLogger, o types.Outcome) bool {
	if len(r.senders) == 0 {
		log.Info("No notification target configured")
		return false
	}

	notified := false
	for _, s := range r.senders {
		if err := s.Post(ctx, o); err != nil {
			log.Errorf("Failed to notify: %s", err)
			continue
		}
		notified = true
	}
	return notified
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(limit/time.Second)+1)) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
