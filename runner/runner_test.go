package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatcatfablab/autodoh/config"
	"github.com/fatcatfablab/autodoh/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var today = time.Date(2026, time.October, 18, 5, 30, 0, 0, time.UTC)

type mockReporter struct {
	calls []types.ReportKind
	err   error
}

func (m *mockReporter) Submit(_ context.Context, kind types.ReportKind) (types.Outcome, error) {
	m.calls = append(m.calls, kind)
	if m.err != nil {
		return types.Outcome{}, m.err
	}
	return types.Outcome{Kind: kind, StatusCode: 200}, nil
}

type mockSender struct {
	posted []types.Outcome
	err    error
}

func (s *mockSender) Post(_ context.Context, o types.Outcome) error {
	s.posted = append(s.posted, o)
	return s.err
}

func newStore(t *testing.T, content string) *config.Store {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	s, err := config.Load(p)
	require.NoError(t, err)
	return s
}

func newTestRunner(gate Gate, rep Reporter, slept *[]time.Duration, opts ...Option) *Runner {
	r := New(gate, rep, opts...)
	r.now = func() time.Time { return today }
	r.jitter = func(limit time.Duration) time.Duration { return limit / 2 }
	r.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return r
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))
	return logs
}

func TestRun(t *testing.T) {
	for _, tt := range []struct {
		name       string
		config     string
		disabled   bool
		senders    []*mockSender
		want       Result
		wantReport bool
	}{
		{
			name:   "Disabled in store",
			config: `{"ENABLED": false, "SKIP_DATES": []}`,
			want:   SkippedDisabled,
		},
		{
			name:   "Disabled in store and today skipped",
			config: `{"ENABLED": false, "SKIP_DATES": ["18/10/2026"]}`,
			want:   SkippedDisabled,
		},
		{
			name:     "Disabled by toggle",
			config:   `{"ENABLED": true}`,
			disabled: true,
			want:     SkippedDisabled,
		},
		{
			name:   "Today skipped",
			config: `{"ENABLED": true, "SKIP_DATES": ["17/10/2026", "18/10/2026"]}`,
			want:   SkippedDate,
		},
		{
			name:       "No sender",
			config:     `{"ENABLED": true, "SKIP_DATES": ["17/10/2026"]}`,
			want:       CompletedNotNotified,
			wantReport: true,
		},
		{
			name:       "Notified",
			config:     `{"ENABLED": true}`,
			senders:    []*mockSender{{}},
			want:       CompletedNotified,
			wantReport: true,
		},
		{
			name:       "One of two senders fails",
			config:     `{"ENABLED": true}`,
			senders:    []*mockSender{{err: errors.New("nope")}, {}},
			want:       CompletedNotified,
			wantReport: true,
		},
		{
			name:       "Every sender fails",
			config:     `{"ENABLED": true}`,
			senders:    []*mockSender{{err: errors.New("nope")}},
			want:       CompletedNotNotified,
			wantReport: true,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			observeLogs(t)
			rep := &mockReporter{}
			var senders []types.Sender
			for _, s := range tt.senders {
				senders = append(senders, s)
			}
			var slept []time.Duration

			r := newTestRunner(
				newStore(t, tt.config),
				rep,
				&slept,
				WithDisabled(tt.disabled),
				WithSenders(senders...),
			)
			got, err := r.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "got %s", got)

			if !tt.wantReport {
				assert.Empty(t, rep.calls)
				assert.Empty(t, slept)
				for _, s := range tt.senders {
					assert.Empty(t, s.posted)
				}
				return
			}
			assert.Equal(t, []types.ReportKind{types.Present}, rep.calls)
			assert.Equal(t, []time.Duration{DefaultMaxJitter / 2}, slept)
			for _, s := range tt.senders {
				assert.Equal(t, []types.Outcome{{Kind: types.Present, StatusCode: 200}}, s.posted)
			}
		})
	}
}

func TestRunSubmitError(t *testing.T) {
	logs := observeLogs(t)
	boom := errors.New("connection refused")
	rep := &mockReporter{err: boom}
	sender := &mockSender{}
	var slept []time.Duration

	r := newTestRunner(newStore(t, `{"ENABLED": true}`), rep, &slept, WithSenders(sender))
	_, err := r.Run(context.Background())
	assert.True(t, errors.Is(err, boom))
	assert.Empty(t, sender.posted)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestRunUsesLocation(t *testing.T) {
	observeLogs(t)
	// 22:30 UTC on the 17th is already the 18th three hours east.
	east := time.FixedZone("east", 3*60*60)
	rep := &mockReporter{}
	var slept []time.Duration

	r := newTestRunner(
		newStore(t, `{"ENABLED": true, "SKIP_DATES": ["18/10/2026"]}`),
		rep,
		&slept,
		WithLocation(east),
	)
	r.now = func() time.Time { return time.Date(2026, time.October, 17, 22, 30, 0, 0, time.UTC) }

	got, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SkippedDate, got)
	assert.Empty(t, rep.calls)
}

func TestRunCancelledDuringJitter(t *testing.T) {
	observeLogs(t)
	rep := &mockReporter{}
	r := New(newStore(t, `{"ENABLED": true}`), rep, WithMaxJitter(time.Hour))
	r.now = func() time.Time { return today }
	r.jitter = func(time.Duration) time.Duration { return time.Hour }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, rep.calls)
}

func TestRandomJitterBounds(t *testing.T) {
	assert.Equal(t, time.Duration(0), randomJitter(0))
	assert.Equal(t, time.Duration(0), randomJitter(-time.Second))
	for range 200 {
		d := randomJitter(5 * time.Second)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 5*time.Second)
		assert.Equal(t, time.Duration(0), d%time.Second)
	}
}

func TestWithMaxJitter(t *testing.T) {
	assert.Equal(t, 30*time.Second, New(nil, nil, WithMaxJitter(30*time.Second)).maxJitter)
	assert.Equal(t, time.Duration(0), New(nil, nil, WithMaxJitter(-time.Second)).maxJitter)
	assert.Equal(t, DefaultMaxJitter, New(nil, nil).maxJitter)
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "skipped (disabled)", SkippedDisabled.String())
	assert.Equal(t, "skipped (skip-date)", SkippedDate.String())
	assert.Equal(t, "completed (notified)", CompletedNotified.String())
	assert.Equal(t, "completed (not notified)", CompletedNotNotified.String())
}
