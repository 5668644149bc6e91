package httphandlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatcatfablab/autodoh/config"
	"github.com/fatcatfablab/autodoh/types"
	"go.uber.org/zap"
)

const skipLayout = "20060102"

func reply(w http.ResponseWriter, code int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	io.WriteString(w, text)
}

func statusText(enabled bool) string {
	if enabled {
		return "Enabled"
	}
	return "Disabled"
}

func (h handlers) status(w http.ResponseWriter, _ *http.Request) {
	reply(w, http.StatusOK, statusText(h.store.IsEnabled()))
}

func (h handlers) enable(w http.ResponseWriter, _ *http.Request) {
	h.setEnabled(w, true)
}

func (h handlers) disable(w http.ResponseWriter, _ *http.Request) {
	h.setEnabled(w, false)
}

func (h handlers) setEnabled(w http.ResponseWriter, enabled bool) {
	if err := h.store.SetEnabled(enabled); err != nil {
		zap.S().Errorf("error updating config: %s", err)
		reply(w, http.StatusInternalServerError, "Failed to update config")
		return
	}
	zap.S().Infof("%s from the web panel", statusText(enabled))
	reply(w, http.StatusOK, statusText(enabled))
}

func (h handlers) skip(w http.ResponseWriter, req *http.Request) {
	raw := req.PathValue("date")
	day, err := time.Parse(skipLayout, raw)
	if err != nil {
		reply(w, http.StatusBadRequest, "Failed to parse date")
		return
	}
	if config.IsPast(day, h.now()) {
		reply(w, http.StatusBadRequest, "Date has already passed")
		return
	}

	if err := h.store.AddSkipDate(day); err != nil {
		zap.S().Errorf("error adding skip date %s: %s", raw, err)
		reply(w, http.StatusInternalServerError, "Failed to update config")
		return
	}
	zap.S().Infof("Added skip date %s from the web panel", day.Format(config.DateLayout))
	reply(w, http.StatusOK, "Will skip on "+raw)
}

func (h handlers) logs(w http.ResponseWriter, _ *http.Request) {
	if h.logPath == "" {
		reply(w, http.StatusNotFound, "Log file not configured")
		return
	}
	f, err := os.Open(h.logPath)
	if errors.Is(err, os.ErrNotExist) {
		reply(w, http.StatusNotFound, "Log file not found")
		return
	}
	if err != nil {
		zap.S().Errorf("error opening log file: %s", err)
		reply(w, http.StatusInternalServerError, "Failed to read log file")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.Copy(w, f); err != nil {
		zap.S().Errorf("error sending log file: %s", err)
	}
}

func (h handlers) report(w http.ResponseWriter, req *http.Request) {
	kind, err := types.ParseReportKind(req.PathValue("kind"))
	if err != nil {
		reply(w, http.StatusBadRequest, "Unknown report kind")
		return
	}

	o, err := h.reporter.Submit(req.Context(), kind)
	if err != nil {
		zap.S().Errorf("manual report failed: %s", err)
		reply(w, http.StatusBadGateway, "Report failed")
		return
	}
	reply(w, http.StatusOK, fmt.Sprintf("Report %s returned %d", kind, o.StatusCode))
}
