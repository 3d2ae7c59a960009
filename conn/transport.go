package conn

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/go-kit/log"
)

// ErrUnavailable is returned by Net.Send when no connection could be
// established.
var ErrUnavailable = errors.New("connection unavailable")

// Transport delivers one rendered payload to a backend. Implementations
// report delivery failure through the returned error and must respect the
// context's deadline and cancellation.
type Transport interface {
	Send(ctx context.Context, payload []byte) error
}

// Net is a Transport over a managed net.Conn. Each Send writes the whole
// payload under a write deadline; a failed write invalidates the connection
// and the Manager redials in the background.
type Net struct {
	mgr     *Manager
	timeout time.Duration
}

// NewNet returns a net-backed Transport for the given network and address.
// A zero timeout means writes block until the context deadline, if any.
func NewNet(network, address string, timeout time.Duration, logger log.Logger) *Net {
	return NewNetDial(net.Dial, network, address, timeout, logger)
}

// NewNetDial is the same as NewNet, but allows you to specify your own
// Dialer. This is primarily useful for tests.
func NewNetDial(d Dialer, network, address string, timeout time.Duration, logger log.Logger) *Net {
	return &Net{
		mgr:     NewManager(d, network, address, time.After, logger),
		timeout: timeout,
	}
}

// Send implements Transport.
func (t *Net) Send(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := t.mgr.Take()
	if c == nil {
		return ErrUnavailable
	}

	deadline := time.Time{}
	if t.timeout > 0 {
		deadline = time.Now().Add(t.timeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if !deadline.IsZero() {
		if err := c.SetWriteDeadline(deadline); err != nil {
			t.mgr.Put(err)
			return err
		}
	}

	_, err := c.Write(payload)
	t.mgr.Put(err)
	return err
}
