package httphandlers

import (
	"context"
	"net/http"
	"time"

	"github.com/fatcatfablab/autodoh/config"
	"github.com/fatcatfablab/autodoh/types"
)

type Reporter interface {
	Submit(ctx context.Context, kind types.ReportKind) (types.Outcome, error)
}

type handlers struct {
	store    *config.Store
	reporter Reporter
	logPath  string
	now      func() time.Time
}

// NewMux serves the control panel. reporter may be nil, in which case the
// manual report route isn't registered. loc decides what "today" is when
// rejecting past skip dates.
func NewMux(store *config.Store, reporter Reporter, logPath string, loc *time.Location) *http.ServeMux {
	if loc == nil {
		loc = time.Local
	}
	h := handlers{
		store:    store,
		reporter: reporter,
		logPath:  logPath,
		now:      func() time.Time { return time.Now().In(loc) },
	}
	return h.mux()
}

func (h handlers) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", h.status)
	mux.HandleFunc("GET /enable", h.enable)
	mux.HandleFunc("GET /disable", h.disable)
	mux.HandleFunc("GET /skip/{date}", h.skip)
	mux.HandleFunc("GET /logs", h.logs)
	if h.reporter != nil {
		mux.HandleFunc("POST /report/{kind}", h.report)
	}
	return mux
}
