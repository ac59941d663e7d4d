package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"SignalDesk/internal/domain/models"
	drepo "SignalDesk/internal/domain/repository"
	"SignalDesk/pkg/logger"

	"github.com/gorilla/websocket"
)

// Feed implements a SettlementSource backed by a WebSocket stream of outcome frames.
type Feed struct {
	websocketURL   string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	logger         *logger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// New creates a new WebSocket settlement feed.
func New(websocketURL string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) drepo.SettlementSource {
	if log == nil {
		log = logger.Nop()
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	return &Feed{
		websocketURL:   websocketURL,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		logger:         log,
	}
}

// Connect establishes the WebSocket connection.
func (f *Feed) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("settlement connect: %w", err)
	}
	f.mu.Lock()
	f.conn = conn
	f.connected = true
	f.mu.Unlock()
	f.logger.Info("settlement feed connected", logger.String("url", f.websocketURL))
	return nil
}

type frame struct {
	Type     string `json:"type"`
	SignalID int64  `json:"signal_id"`
	Outcome  string `json:"outcome"`
}

// Read streams settlements and errors. Both channels close when the connection fails or ctx ends.
func (f *Feed) Read(ctx context.Context) (<-chan models.Settlement, <-chan error) {
	out := make(chan models.Settlement, 64)
	errs := make(chan error, 1)

	f.mu.Lock()
	conn := f.conn
	f.mu.Unlock()

	if conn == nil {
		errs <- fmt.Errorf("settlement feed not connected")
		close(out)
		close(errs)
		return out, errs
	}

	done := make(chan struct{})

	// ping loop
	go func() {
		ticker := time.NewTicker(f.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				// unblock ReadMessage
				_ = conn.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				f.mu.Lock()
				_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
				f.mu.Unlock()
			}
		}
	}()

	// read loop
	go func() {
		defer close(out)
		defer close(errs)
		defer close(done)
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					errs <- fmt.Errorf("settlement read: %w", err)
				}
				return
			}
			s, ok := decodeFrame(b)
			if !ok {
				continue
			}
			select {
			case out <- s:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errs
}

// decodeFrame parses a settlement frame. Other frame types and malformed payloads are skipped.
func decodeFrame(b []byte) (models.Settlement, bool) {
	var m frame
	if err := json.Unmarshal(b, &m); err != nil {
		return models.Settlement{}, false
	}
	if m.Type != "settlement" || m.SignalID <= 0 {
		return models.Settlement{}, false
	}
	dir := models.Direction(m.Outcome)
	if !dir.Valid() {
		return models.Settlement{}, false
	}
	return models.Settlement{SignalID: m.SignalID, Outcome: dir}, true
}

// Reconnect closes the connection, waits reconnectDelay and dials again.
func (f *Feed) Reconnect(ctx context.Context) error {
	_ = f.Close()
	select {
	case <-time.After(f.reconnectDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return f.Connect(ctx)
}

// Close closes the WS connection.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	if f.conn != nil {
		err := f.conn.Close()
		f.conn = nil
		return err
	}
	return nil
}

// IsConnected indicates status.
func (f *Feed) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}
