package audiotap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fernglow/mascotcore/internal/log"
	"github.com/fernglow/mascotcore/pkg/rhythm"
)

// pcmMessage is the wire shape of one PCM frame pushed by the audio source.
type pcmMessage struct {
	Samples    []float64 `json:"samples"`
	SampleRate float64   `json:"sample_rate"`
}

// windowSeconds is how much PCM history feeds each tempo estimate — long
// enough to span two beats at the slowest supported tempo (30 BPM).
const windowSeconds = 4.0

// WebSocketTap connects to a PCM-streaming endpoint and estimates tempo
// from the received audio, pushing estimates into a Queue the engine
// drains each tick. The dial/read-loop/disconnect shape mirrors the
// gorilla/websocket client pattern shared by the pack's audio-analysis
// tooling; the rolling-window-then-estimate structure follows the
// pattern analyzer's energy-history approach of accumulating samples
// before running detection on the window.
type WebSocketTap struct {
	wsURL string
	queue *Queue

	dialer websocket.Dialer

	mu      sync.Mutex
	conn    *websocket.Conn
	cancel  context.CancelFunc
	window  []float64
	rate    float64
	running bool
}

// NewWebSocketTap constructs a tap that will dial wsURL once Start is called.
func NewWebSocketTap(wsURL string) *WebSocketTap {
	return &WebSocketTap{
		wsURL:  wsURL,
		queue:  NewQueue(defaultQueueCapacity),
		dialer: websocket.Dialer{HandshakeTimeout: 5 * time.Second},
	}
}

// Start dials the PCM endpoint and begins the background read loop.
func (t *WebSocketTap) Start() error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return fmt.Errorf("audiotap: already running")
	}
	t.mu.Unlock()

	u, err := url.Parse(t.wsURL)
	if err != nil {
		return fmt.Errorf("audiotap: invalid url: %w", err)
	}

	conn, _, err := t.dialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("audiotap: connect failed: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.mu.Lock()
	t.conn = conn
	t.cancel = cancel
	t.running = true
	t.mu.Unlock()

	go t.readLoop(ctx)
	return nil
}

// Close stops the read loop and closes the underlying connection.
func (t *WebSocketTap) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return nil
	}
	t.running = false
	if t.cancel != nil {
		t.cancel()
	}
	if t.conn != nil {
		err := t.conn.Close()
		t.conn = nil
		return err
	}
	return nil
}

// Drain returns every tempo estimate produced since the last Drain call.
func (t *WebSocketTap) Drain() []rhythm.TempoEstimate {
	return t.queue.Drain()
}

func (t *WebSocketTap) readLoop(ctx context.Context) {
	defer t.handleDisconnect(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		t.mu.Lock()
		conn := t.conn
		t.mu.Unlock()
		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ctx.Done():
			default:
				log.Warn("audiotap: read failed", "err", err)
			}
			return
		}

		var msg pcmMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		t.ingest(msg)
	}
}

// ingest appends a PCM frame to the rolling window and, once enough audio
// has accumulated, runs tempo estimation and pushes the result.
func (t *WebSocketTap) ingest(msg pcmMessage) {
	t.mu.Lock()
	t.rate = msg.SampleRate
	t.window = append(t.window, msg.Samples...)
	maxLen := int(windowSeconds * msg.SampleRate)
	if len(t.window) > maxLen {
		t.window = t.window[len(t.window)-maxLen:]
	}
	window := append([]float64(nil), t.window...)
	rate := t.rate
	t.mu.Unlock()

	bpm, confidence, ok := estimateTempo(window, rate)
	if !ok {
		return
	}
	t.queue.Push(rhythm.TempoEstimate{BPM: bpm, Confidence: confidence})
}

// handleDisconnect marks the tap stopped after the read loop exits.
// Deliberately no auto-reconnect: tempo estimation degrading to silence
// on disconnect is preferable to a reconnect storm against an audio
// source that may be gone for good.
func (t *WebSocketTap) handleDisconnect(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	default:
	}
	t.mu.Lock()
	t.running = false
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
	}
	t.mu.Unlock()
}
