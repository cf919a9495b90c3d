// Package notify publishes pipeline state transitions to a socket.io
// endpoint, typically a small dashboard watching builds.
//
// Notifications are best effort: a notifier never fails or delays a run
// beyond its connect timeout.
package notify

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/vk/lfdeploy/internal/config"
	"github.com/vk/lfdeploy/internal/ctxlog"
	"github.com/vk/lfdeploy/internal/pipeline"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
	"go.uber.org/zap"
)

// DefaultConnectTimeout bounds the initial connection when none is configured.
const DefaultConnectTimeout = 5 * time.Second

// emitter is the part of a socket.io client the notifier needs.
type emitter interface {
	Emit(ev string, args ...any) error
}

// SocketIO is a pipeline.Observer emitting one event per transition.
type SocketIO struct {
	event string
	mu    sync.Mutex
	out   emitter
	close func()
}

var _ pipeline.Observer = (*SocketIO)(nil)

// Dial connects to the configured endpoint and waits for the connection to be
// acknowledged, the connect timeout, or ctx, whichever comes first.
func Dial(ctx context.Context, cfg config.Notify) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With(zap.String("url", cfg.URL))

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("URL %q needs a scheme and a host", cfg.URL)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "/"
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))
	opts.SetReconnection(false)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	logger.Debug("Connecting notifier.")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}

	logger.Info("Notifier connected.", zap.String("sid", io.Id()))
	return newSocketIO(io, cfg.Event, func() { io.Disconnect() }), nil
}

func newSocketIO(out emitter, event string, closeFn func()) *SocketIO {
	if event == "" {
		event = config.DefaultNotifyEvent
	}
	return &SocketIO{event: event, out: out, close: closeFn}
}

// OnTransition emits ev. Emit failures are logged and otherwise ignored.
func (n *SocketIO) OnTransition(ctx context.Context, ev pipeline.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.out == nil {
		return
	}
	if err := n.out.Emit(n.event, Payload(ev)); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to emit notification.", zap.Error(err), zap.Stringer("to", ev.To))
	}
}

// Close disconnects the client. Later transitions are dropped.
func (n *SocketIO) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.close != nil {
		n.close()
	}
	n.out = nil
	n.close = nil
}

// Payload is the JSON-friendly form of ev sent to the endpoint.
func Payload(ev pipeline.Event) map[string]any {
	p := map[string]any{
		"run_id":  ev.RunID,
		"program": ev.Program,
		"mode":    ev.Mode.String(),
		"from":    ev.From.String(),
		"to":      ev.To.String(),
		"at":      ev.At.UTC().Format(time.RFC3339Nano),
		"error":   nil,
		"fields":  ev.Fields,
	}
	if ev.Err != nil {
		p["error"] = ev.Err.Error()
	}
	return p
}
