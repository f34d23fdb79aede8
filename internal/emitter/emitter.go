// Package emitter sends replies back to the client that issued a command.
package emitter

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/leandrodaf/reabridge/internal/osc"
	"github.com/leandrodaf/reabridge/sdk/contracts"
)

// ErrNoTarget is returned when no reply address can be derived from the sender.
var ErrNoTarget = errors.New("no reply target")

// Emitter writes encoded replies to sender-IP:replyPort. Delivery is best
// effort: failures are logged and never retried.
type Emitter struct {
	conn      net.PacketConn
	replyPort int
	logger    contracts.Logger
}

// New creates an emitter writing through conn. A replyPort of 0 replies to the
// sender's own source port.
func New(conn net.PacketConn, replyPort int, logger contracts.Logger) *Emitter {
	return &Emitter{conn: conn, replyPort: replyPort, logger: logger}
}

// Target returns the address a reply to sender is delivered to.
func (e *Emitter) Target(sender net.Addr) (*net.UDPAddr, error) {
	var ip net.IP
	var port int
	switch a := sender.(type) {
	case *net.UDPAddr:
		ip, port = a.IP, a.Port
	case nil:
		return nil, ErrNoTarget
	default:
		host, p, err := net.SplitHostPort(a.String())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoTarget, err)
		}
		ip = net.ParseIP(host)
		port, _ = strconv.Atoi(p)
	}
	if ip == nil {
		return nil, fmt.Errorf("%w: sender %v has no IP", ErrNoTarget, sender)
	}
	if e.replyPort != 0 {
		port = e.replyPort
	}
	return &net.UDPAddr{IP: ip, Port: port}, nil
}

// Send encodes msg and writes it to the reply target for sender.
func (e *Emitter) Send(sender net.Addr, msg osc.Message) error {
	to, err := e.Target(sender)
	if err != nil {
		return err
	}
	b, err := osc.Encode(msg)
	if err != nil {
		return err
	}
	_, err = e.conn.WriteTo(b, to)
	return err
}

// Reply is Send with the error logged instead of returned.
func (e *Emitter) Reply(sender net.Addr, msg osc.Message) {
	if err := e.Send(sender, msg); err != nil {
		e.logger.Warn("reply not sent",
			e.logger.Field().String("address", msg.Address),
			e.logger.Field().Error("error", err))
		return
	}
	e.logger.Debug("reply sent", e.logger.Field().String("address", msg.Address))
}
