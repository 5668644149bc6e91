package types

import (
	"context"
	"net/http"
)

// Sender delivers the outcome of a submission somewhere a human will see it.
type Sender interface {
	Post(ctx context.Context, o Outcome) error
}

type Outcome struct {
	Kind       ReportKind `json:"kind"`
	StatusCode int        `json:"status_code"`
	Body       string     `json:"body"`
}

// Ok reports whether the remote endpoint accepted the submission. Only the
// status class is considered.
func (o Outcome) Ok() bool {
	return o.StatusCode > 0 && o.StatusCode < http.StatusBadRequest
}
