package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"backoffice/internal/config"
	"backoffice/pkg/logger"

	"github.com/gorilla/websocket"
)

// Listener keeps a websocket connection to the upstream push channel and
// publishes every frame it receives.
type Listener struct {
	url        string
	token      string
	minBackoff time.Duration
	maxBackoff time.Duration
	dialer     *websocket.Dialer
	publisher  Publisher
	log        *logger.Logger
}

func NewListener(cfg config.PushConfig, publisher Publisher, log *logger.Logger) *Listener {
	if log == nil {
		log = logger.Nop()
	}
	minBackoff, maxBackoff := cfg.MinBackoff, cfg.MaxBackoff
	if minBackoff <= 0 {
		minBackoff = time.Second
	}
	if maxBackoff < minBackoff {
		maxBackoff = minBackoff
	}
	return &Listener{
		url:        cfg.URL,
		token:      cfg.Token,
		minBackoff: minBackoff,
		maxBackoff: maxBackoff,
		dialer:     &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		publisher:  publisher,
		log:        log,
	}
}

// Run blocks until ctx is cancelled, reconnecting with capped exponential backoff.
func (l *Listener) Run(ctx context.Context) error {
	if l.url == "" {
		l.log.Warn(ctx, "push url not configured, listener disabled")
		<-ctx.Done()
		return nil
	}

	backoff := l.minBackoff
	for {
		connected, err := l.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			backoff = l.minBackoff
		}
		l.log.Warn(l.log.WithField(ctx, "retry_in", backoff.String()), "push channel disconnected: "+errString(err))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > l.maxBackoff {
			backoff = l.maxBackoff
		}
	}
}

// session dials once and reads until the connection fails. It reports whether
// the handshake succeeded.
func (l *Listener) session(ctx context.Context) (bool, error) {
	header := http.Header{}
	if l.token != "" {
		header.Set("Authorization", "Bearer "+l.token)
	}
	conn, resp, err := l.dialer.DialContext(ctx, l.url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return false, err
	}
	defer conn.Close()
	l.log.Info(ctx, "push channel connected")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		event, err := decodeEvent(data)
		if err != nil {
			l.log.Warn(ctx, "ignoring push frame: "+err.Error())
			continue
		}
		l.publisher.Publish(event)
	}
}

func decodeEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	if e.Name == "" {
		return Event{}, errors.New("frame without event name")
	}
	e.Payload = append(json.RawMessage(nil), data...)
	return e, nil
}

func errString(err error) string {
	if err == nil {
		return "closed"
	}
	return err.Error()
}
