// Package webhook delivers board events to an external HTTP receiver.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/perch-labs/noticeboard/internal/domain"
)

// Notifier POSTs each event as JSON to the configured receiver. It satisfies
// the board's EventSink contract; delivery failures surface as errors and the
// board decides what to do with them.
type Notifier struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  *log.Logger
}

// NewNotifier constructs an HTTP-backed notifier.
func NewNotifier(baseURL, apiKey string, timeout time.Duration, logger *log.Logger) (*Notifier, error) {
	if logger == nil {
		logger = log.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse webhook url: %w", err)
	}
	return &Notifier{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

type envelope struct {
	Kind       string       `json:"kind"`
	OccurredAt time.Time    `json:"occurredAt"`
	Event      domain.Event `json:"event"`
}

// Publish delivers one event to the receiver's /events endpoint.
func (n *Notifier) Publish(ctx context.Context, ev domain.Event) error {
	payload, err := json.Marshal(envelope{
		Kind:       ev.EventKind(),
		OccurredAt: time.Now().UTC(),
		Event:      ev,
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.EventKind(), err)
	}

	endpoint := n.baseURL.ResolveReference(&url.URL{Path: "/events"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.apiKey != "" {
		req.Header.Set("X-API-Key", n.apiKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		n.logger.Printf("webhook: receiver returned %d for %s event", resp.StatusCode, ev.EventKind())
		return fmt.Errorf("webhook: receiver returned %d", resp.StatusCode)
	}
	return nil
}
