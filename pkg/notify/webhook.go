package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// webhookTimeout bounds each delivery attempt. The sink is fire-and-forget,
// so a slow receiver costs one goroutine for at most this long.
const webhookTimeout = 3 * time.Second

// Webhook posts each event as JSON to an external URL, typically an n8n
// automation endpoint.
//
// Every delivery runs in its own goroutine with a bounded timeout. Failures
// are logged at warn level and dropped; the mutation that produced the event
// has usually already been acknowledged to its caller by the time delivery
// is attempted.
type Webhook struct {
	url    string
	client *http.Client
	logger zerolog.Logger
}

// NewWebhook returns a webhook sink posting to url. An empty url yields a
// sink that silently discards everything, so callers can wire it
// unconditionally.
func NewWebhook(url string, logger zerolog.Logger) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: webhookTimeout},
		logger: logger,
	}
}

func (w *Webhook) Notify(event Event) {
	if w.url == "" {
		return
	}
	go w.deliver(event)
}

func (w *Webhook) deliver(event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		w.logger.Warn().Err(err).Str("type", event.Type).Msg("webhook: encode event")
		return
	}
	resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(body))
	if err != nil {
		w.logger.Warn().Err(err).Str("type", event.Type).Msg("webhook: delivery failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		w.logger.Warn().Int("status", resp.StatusCode).Str("type", event.Type).Msg("webhook: receiver rejected event")
	}
}
