package sender

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fatcatfablab/autodoh/types"
	"go.uber.org/zap"
)

const (
	iftttBase         = "https://maker.ifttt.com"
	DefaultIFTTTEvent = "Notify"
)

// IFTTTSender fires a maker webhook whose value1 is a one line summary of
// the outcome.
type IFTTTSender struct {
	client *http.Client
	base   *url.URL
	event  string
	key    string
}

func NewIFTTT(event, key string) *IFTTTSender {
	base, _ := url.Parse(iftttBase)
	return newIFTTT(base, event, key)
}

func newIFTTT(base *url.URL, event, key string) *IFTTTSender {
	if event == "" {
		event = DefaultIFTTTEvent
	}
	return &IFTTTSender{
		client: &http.Client{Timeout: 10 * time.Second},
		base:   base,
		event:  event,
		key:    key,
	}
}

func (s *IFTTTSender) Post(ctx context.Context, o types.Outcome) error {
	u := s.base.JoinPath("trigger", s.event, "with", "key", s.key)
	u.RawQuery = url.Values{"value1": {Message(o)}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("error building ifttt request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		// The url carries the key; keep only the underlying cause.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return fmt.Errorf("error sending ifttt request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("ifttt request returned: %s - %s", resp.Status, body)
	}

	zap.S().Info("Successfully alerted using IFTTT")
	return nil
}

// Message is the notification text for o.
func Message(o types.Outcome) string {
	return fmt.Sprintf("Report returned %d", o.StatusCode)
}
