package reporter

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/fatcatfablab/autodoh/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const cookie = "abc123"

type captured struct {
	method string
	path   string
	header http.Header
	body   string
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))
	return logs
}

func newServer(t *testing.T, status int, respBody string, got *captured) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("error reading req body: %s", err)
		}
		*got = captured{method: r.Method, path: r.URL.Path, header: r.Header.Clone(), body: string(b)}
		w.WriteHeader(status)
		io.WriteString(w, respBody)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSubmit(t *testing.T) {
	for _, kind := range types.Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			observeLogs(t)
			var got captured
			server := newServer(t, http.StatusOK, "ok", &got)

			c, err := New(server.URL+"/report", cookie, nil)
			require.NoError(t, err)

			o, err := c.Submit(context.Background(), kind)
			require.NoError(t, err)
			assert.Equal(t, types.Outcome{Kind: kind, StatusCode: http.StatusOK, Body: "ok"}, o)

			assert.Equal(t, http.MethodPost, got.method)
			assert.Equal(t, "/report", got.path)
			assert.Equal(t, cookie, got.header.Get("cookie"))
			assert.Contains(t, got.header.Get("User-Agent"), "Mozilla/5.0")
			assert.Equal(t, "application/x-www-form-urlencoded", got.header.Get("Content-Type"))

			form, err := url.ParseQuery(got.body)
			require.NoError(t, err)
			want := url.Values{}
			for field, v := range kind.Payload() {
				if v != nil {
					want.Set(field, *v)
				}
			}
			assert.Equal(t, want, form)
		})
	}
}

func TestSubmitPresentBody(t *testing.T) {
	observeLogs(t)
	var got captured
	server := newServer(t, http.StatusOK, "", &got)

	c, err := New(server.URL+"/report", cookie, nil)
	require.NoError(t, err)
	_, err = c.Submit(context.Background(), types.Present)
	require.NoError(t, err)

	assert.Equal(t, "MainCode=01&SecondaryCode=01", got.body)
	assert.Equal(t, []string{cookie}, got.header.Values("cookie"))
}

func TestSubmitLogsOutcome(t *testing.T) {
	for _, tt := range []struct {
		name      string
		status    int
		body      string
		wantLevel zapcore.Level
		wantMsg   string
	}{
		{
			name:      "Success",
			status:    http.StatusOK,
			body:      "fine",
			wantLevel: zapcore.InfoLevel,
			wantMsg:   "Request succeeded [200] - /api/report",
		},
		{
			name:      "Client error",
			status:    http.StatusUnauthorized,
			body:      "session expired",
			wantLevel: zapcore.ErrorLevel,
			wantMsg:   "Request failed [401] - /api/report : session expired",
		},
		{
			name:      "Server error",
			status:    http.StatusInternalServerError,
			body:      "boom",
			wantLevel: zapcore.ErrorLevel,
			wantMsg:   "Request failed [500] - /api/report : boom",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			logs := observeLogs(t)
			var got captured
			server := newServer(t, tt.status, tt.body, &got)

			c, err := New(server.URL+"/api/report?x=1", cookie, nil)
			require.NoError(t, err)

			o, err := c.Submit(context.Background(), types.Present)
			require.NoError(t, err)
			assert.Equal(t, tt.status, o.StatusCode)
			assert.Equal(t, tt.body, o.Body)

			entries := logs.All()
			require.Len(t, entries, 2)
			assert.Equal(t, "Reporting PRESENT", entries[0].Message)
			assert.Equal(t, tt.wantLevel, entries[1].Level)
			assert.Equal(t, tt.wantMsg, entries[1].Message)

			for _, e := range entries {
				assert.NotContains(t, e.Message, cookie)
			}
		})
	}
}

func TestSubmitTransportError(t *testing.T) {
	observeLogs(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	c, err := New("http://"+addr+"/report", cookie, nil)
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), types.Present)
	require.Error(t, err)
	var opErr *net.OpError
	assert.True(t, errors.As(err, &opErr), err)
	assert.NotContains(t, err.Error(), cookie)
}

func TestNewRejectsRelativeURL(t *testing.T) {
	for _, endpoint := range []string{"", "/report", "example.org/report", "://bad"} {
		t.Run(endpoint, func(t *testing.T) {
			_, err := New(endpoint, cookie, nil)
			assert.Error(t, err)
			if err != nil {
				assert.False(t, strings.Contains(err.Error(), cookie))
			}
		})
	}
}
