// Package listener owns the inbound UDP socket and its receive loop.
package listener

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/leandrodaf/reabridge/internal/osc"
	"github.com/leandrodaf/reabridge/sdk/contracts"
)

// maxDatagram is the largest UDP payload the loop accepts.
const maxDatagram = 65535

// Default timings for the receive loop.
const (
	DefaultReadTimeout  = 100 * time.Millisecond
	DefaultErrorBackoff = 10 * time.Millisecond
)

// ErrListen is returned when the receive socket cannot be bound.
var ErrListen = errors.New("error binding receive socket")

// Handler is called once per decoded message, on the listener goroutine.
type Handler func(msg osc.Message, sender net.Addr)

// Listener runs a single goroutine that reads datagrams, decodes them and
// hands each message to the handler. Malformed packets and transient socket
// errors never stop the loop. It ends on Stop, or when the socket is closed
// by someone else, which is logged as "listener terminated".
type Listener struct {
	conn         net.PacketConn   // Receive socket, also used for replies.
	handler      Handler          // Called for every decoded message.
	logger       contracts.Logger // Logger for loop events.
	readTimeout  time.Duration    // Upper bound on one blocking read.
	errorBackoff time.Duration    // Pause after a socket error that is not a timeout.
	stop         chan struct{}    // Closed by Stop.
	done         chan struct{}    // Closed when the loop returns.
	startOnce    sync.Once        // Ensures Start spawns one goroutine.
	stopOnce     sync.Once        // Ensures Stop runs once.
}

// Option configures a Listener.
type Option func(*Listener)

// WithReadTimeout bounds each blocking read.
func WithReadTimeout(d time.Duration) Option {
	return func(l *Listener) {
		if d > 0 {
			l.readTimeout = d
		}
	}
}

// WithErrorBackoff sets the pause after a non-timeout socket error.
func WithErrorBackoff(d time.Duration) Option {
	return func(l *Listener) {
		if d >= 0 {
			l.errorBackoff = d
		}
	}
}

// Listen binds a UDP socket on addr and wraps it in a Listener.
func Listen(addr string, handler Handler, logger contracts.Logger, opts ...Option) (*Listener, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrListen, addr, err)
	}
	return New(conn, handler, logger, opts...), nil
}

// New wraps an already bound socket. The Listener takes ownership of conn.
func New(conn net.PacketConn, handler Handler, logger contracts.Logger, opts ...Option) *Listener {
	l := &Listener{
		conn:         conn,
		handler:      handler,
		logger:       logger,
		readTimeout:  DefaultReadTimeout,
		errorBackoff: DefaultErrorBackoff,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Addr returns the bound local address.
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Conn returns the socket so replies leave from the receive port.
func (l *Listener) Conn() net.PacketConn {
	return l.conn
}

// Start launches the receive loop. Later calls do nothing.
func (l *Listener) Start() {
	l.startOnce.Do(func() {
		l.logger.Info("listening", l.logger.Field().String("addr", l.Addr().String()))
		go l.loop()
	})
}

// Stop ends the loop, closes the socket and waits for the goroutine to exit.
// No handler runs after Stop returns, and Start does nothing afterwards.
func (l *Listener) Stop() error {
	var err error
	l.stopOnce.Do(func() {
		close(l.stop)
		err = l.conn.Close()
		// If Start was never called, consume it so done still closes.
		l.startOnce.Do(func() { close(l.done) })
		<-l.done
		l.logger.Info("listener stopped")
	})
	return err
}

func (l *Listener) stopping() bool {
	select {
	case <-l.stop:
		return true
	default:
		return false
	}
}

func (l *Listener) loop() {
	defer close(l.done)
	buf := make([]byte, maxDatagram)

	for !l.stopping() {
		if err := l.conn.SetReadDeadline(time.Now().Add(l.readTimeout)); err != nil && !errors.Is(err, net.ErrClosed) {
			l.logger.Warn("could not set read deadline", l.logger.Field().Error("error", err))
		}

		n, sender, err := l.conn.ReadFrom(buf)
		if err != nil {
			if l.stopping() {
				return
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				l.logger.Error("listener terminated: socket closed outside Stop",
					l.logger.Field().String("addr", addrString(l.conn.LocalAddr())),
					l.logger.Field().Error("error", err))
				return
			}
			l.logger.Error("receive failed", l.logger.Field().Error("error", err))
			l.pause()
			continue
		}

		msgs, err := osc.Decode(buf[:n])
		if err != nil {
			l.logger.Warn("dropping malformed packet",
				l.logger.Field().String("from", addrString(sender)),
				l.logger.Field().Int("bytes", n),
				l.logger.Field().Error("error", err))
			continue
		}
		for _, msg := range msgs {
			l.dispatch(msg, sender)
		}
	}
}

// dispatch calls the handler and contains any panic it raises.
func (l *Listener) dispatch(msg osc.Message, sender net.Addr) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("handler panicked",
				l.logger.Field().String("address", msg.Address),
				l.logger.Field().Any("panic", r))
		}
	}()
	l.handler(msg, sender)
}

func (l *Listener) pause() {
	if l.errorBackoff <= 0 {
		return
	}
	t := time.NewTimer(l.errorBackoff)
	defer t.Stop()
	select {
	case <-t.C:
	case <-l.stop:
	}
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}
