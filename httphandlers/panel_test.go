package httphandlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatcatfablab/autodoh/config"
	"github.com/fatcatfablab/autodoh/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var today = time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)

type mockReporter struct {
	kinds []types.ReportKind
	err   error
}

func (m *mockReporter) Submit(_ context.Context, kind types.ReportKind) (types.Outcome, error) {
	m.kinds = append(m.kinds, kind)
	return types.Outcome{Kind: kind, StatusCode: 201}, m.err
}

func newTestStore(t *testing.T, content string) *config.Store {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	s, err := config.Load(p)
	require.NoError(t, err)
	return s
}

func newTestMux(store *config.Store, rep Reporter, logPath string) http.Handler {
	h := handlers{
		store:    store,
		reporter: rep,
		logPath:  logPath,
		now:      func() time.Time { return today },
	}
	return h.mux()
}

func serve(t *testing.T, mux http.Handler, method, target string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	resp := httptest.NewRecorder()
	mux.ServeHTTP(resp, req)
	b, err := io.ReadAll(resp.Result().Body)
	require.NoError(t, err)
	return resp.Result().StatusCode, string(b)
}

func TestPanel(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zap.NewNop()))
	store := newTestStore(t, `{"ENABLED": true, "SKIP_DATES": []}`)
	mux := newTestMux(store, nil, "")

	for _, tt := range []struct {
		name        string
		target      string
		wantCode    int
		wantBody    string
		wantEnabled bool
		wantSkips   []string
	}{
		{
			name:        "Status",
			target:      "/status",
			wantCode:    http.StatusOK,
			wantBody:    "Enabled",
			wantEnabled: true,
			wantSkips:   []string{},
		},
		{
			name:        "Disable",
			target:      "/disable",
			wantCode:    http.StatusOK,
			wantBody:    "Disabled",
			wantEnabled: false,
			wantSkips:   []string{},
		},
		{
			name:        "Status after disable",
			target:      "/status",
			wantCode:    http.StatusOK,
			wantBody:    "Disabled",
			wantEnabled: false,
			wantSkips:   []string{},
		},
		{
			name:        "Enable",
			target:      "/enable",
			wantCode:    http.StatusOK,
			wantBody:    "Enabled",
			wantEnabled: true,
			wantSkips:   []string{},
		},
		{
			name:        "Skip",
			target:      "/skip/20261025",
			wantCode:    http.StatusOK,
			wantBody:    "Will skip on 20261025",
			wantEnabled: true,
			wantSkips:   []string{"25/10/2026"},
		},
		{
			name:        "Skip today",
			target:      "/skip/20261018",
			wantCode:    http.StatusOK,
			wantBody:    "Will skip on 20261018",
			wantEnabled: true,
			wantSkips:   []string{"18/10/2026", "25/10/2026"},
		},
		{
			name:        "Skip again",
			target:      "/skip/20261025",
			wantCode:    http.StatusOK,
			wantBody:    "Will skip on 20261025",
			wantEnabled: true,
			wantSkips:   []string{"18/10/2026", "25/10/2026"},
		},
		{
			name:        "Skip bad date",
			target:      "/skip/2026-10-30",
			wantCode:    http.StatusBadRequest,
			wantBody:    "Failed to parse date",
			wantEnabled: true,
			wantSkips:   []string{"18/10/2026", "25/10/2026"},
		},
		{
			name:        "Skip impossible date",
			target:      "/skip/20260231",
			wantCode:    http.StatusBadRequest,
			wantBody:    "Failed to parse date",
			wantEnabled: true,
			wantSkips:   []string{"18/10/2026", "25/10/2026"},
		},
		{
			name:        "Skip past date",
			target:      "/skip/20261017",
			wantCode:    http.StatusBadRequest,
			wantBody:    "Date has already passed",
			wantEnabled: true,
			wantSkips:   []string{"18/10/2026", "25/10/2026"},
		},
		{
			name:        "No manual report without reporter",
			target:      "/report/present",
			wantCode:    http.StatusNotFound,
			wantEnabled: true,
			wantSkips:   []string{"18/10/2026", "25/10/2026"},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodGet
			if tt.name == "No manual report without reporter" {
				method = http.MethodPost
			}
			code, body := serve(t, mux, method, tt.target)
			assert.Equal(t, tt.wantCode, code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, body)
			}

			reloaded, err := config.Load(store.Path())
			require.NoError(t, err)
			assert.Equal(t, tt.wantEnabled, reloaded.IsEnabled())
			assert.Equal(t, tt.wantSkips, reloaded.SkipDates())
		})
	}
}

func TestPanelPastDateDoesNotTouchFile(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zap.NewNop()))
	content := `{"ENABLED":true,"SKIP_DATES":["01/01/2026"]}`
	store := newTestStore(t, content)
	mux := newTestMux(store, nil, "")

	code, _ := serve(t, mux, http.MethodGet, "/skip/20200101")
	assert.Equal(t, http.StatusBadRequest, code)

	b, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, content, string(b))
}

func TestLogs(t *testing.T) {
	store := newTestStore(t, `{"ENABLED": true}`)
	dir := t.TempDir()
	logPath := filepath.Join(dir, "autodoh.log")

	code, body := serve(t, newTestMux(store, nil, logPath), http.MethodGet, "/logs")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Log file not found", body)

	code, _ = serve(t, newTestMux(store, nil, ""), http.MethodGet, "/logs")
	assert.Equal(t, http.StatusNotFound, code)

	lines := "2026-10-18 05:30:01 [INFO    ] - Reporting PRESENT\n" +
		"2026-10-18 05:30:02 [INFO    ] - Request succeeded [200] - /report\n"
	require.NoError(t, os.WriteFile(logPath, []byte(lines), 0644))

	code, body = serve(t, newTestMux(store, nil, logPath), http.MethodGet, "/logs")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, lines, body)
}

func TestManualReport(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zap.NewNop()))
	store := newTestStore(t, `{"ENABLED": false}`)

	rep := &mockReporter{}
	mux := newTestMux(store, rep, "")

	code, body := serve(t, mux, http.MethodPost, "/report/day-off")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Report DAY_OFF returned 201", body)
	assert.Equal(t, []types.ReportKind{types.DayOff}, rep.kinds)

	code, _ = serve(t, mux, http.MethodPost, "/report/holiday")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = serve(t, mux, http.MethodGet, "/report/present")
	assert.Equal(t, http.StatusMethodNotAllowed, code)

	rep.err = errors.New("dial tcp: connection refused")
	code, body = serve(t, mux, http.MethodPost, "/report/present")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "Report failed", body)
}
