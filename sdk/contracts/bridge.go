package contracts

import "net"

// Bridge is a loaded bridge instance. Stop is the unload hook: once it returns,
// no goroutine started by the bridge touches host state.
type Bridge interface {
	Stop() error                   // Stops the listener, silences sounding notes and releases the socket.
	Addr() net.Addr                // Address the listener is bound to.
	MissingCapabilities() []string // Capability names the host did not provide.
}
