package contracts

import "time"

const (
	// DefaultListenAddr is the fixed, documented receive address of the bridge.
	DefaultListenAddr = "127.0.0.1:9877"
	// DefaultReplyPort is the port replies are sent to, on the sender's IP.
	DefaultReplyPort = 9878
	// DefaultReadTimeout bounds each blocking receive of the listener.
	DefaultReadTimeout = 100 * time.Millisecond
	// DefaultFXParamLimit caps the parameters reported per effect by a track scan.
	DefaultFXParamLimit = 20
)

// BridgeOptions defines the configuration options for the bridge.
type BridgeOptions struct {
	Logger        Logger        // Logger for logging events and errors.
	LogLevel      LogLevel      // Level of logging to use.
	LogFilePath   string        // File path for logging if file logging is enabled.
	ListenAddr    string        // UDP address the listener binds.
	ReplyPort     int           // Port replies are sent to; 0 replies to the sender's own port.
	ReadTimeout   time.Duration // Bound on each socket receive.
	QuietRoutes   []string      // Addresses not logged at receipt.
	FXParamLimit  int           // Max parameters per effect in a scan reply; 0 lists none.
	NoHostConsole bool          // Do not mirror log lines to the host console.

	logLevelSet     bool
	replyPortSet    bool
	fxParamLimitSet bool
}

// LogLevelSet reports whether WithLogLevel was applied.
func (o *BridgeOptions) LogLevelSet() bool { return o.logLevelSet }

// ReplyPortSet reports whether WithReplyPort was applied.
func (o *BridgeOptions) ReplyPortSet() bool { return o.replyPortSet }

// FXParamLimitSet reports whether WithFXParamLimit was applied.
func (o *BridgeOptions) FXParamLimitSet() bool { return o.fxParamLimitSet }

// Option is a function that modifies BridgeOptions.
type Option func(*BridgeOptions)

// WithLogger sets the logger for the bridge.
func WithLogger(l Logger) Option {
	return func(opts *BridgeOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the bridge.
func WithLogLevel(level LogLevel) Option {
	return func(opts *BridgeOptions) {
		opts.LogLevel = level
		opts.logLevelSet = true
	}
}

// WithLogFile sends log output to the given file instead of stderr.
func WithLogFile(path string) Option {
	return func(opts *BridgeOptions) {
		opts.LogFilePath = path
	}
}

// WithListenAddr overrides the receive address.
func WithListenAddr(addr string) Option {
	return func(opts *BridgeOptions) {
		opts.ListenAddr = addr
	}
}

// WithReplyPort overrides the reply port. Zero replies to the sender's source port.
func WithReplyPort(port int) Option {
	return func(opts *BridgeOptions) {
		opts.ReplyPort = port
		opts.replyPortSet = true
	}
}

// WithReadTimeout overrides the per-receive timeout of the listener.
func WithReadTimeout(d time.Duration) Option {
	return func(opts *BridgeOptions) {
		opts.ReadTimeout = d
	}
}

// WithQuietRoutes replaces the set of addresses that are not logged at receipt.
func WithQuietRoutes(addrs ...string) Option {
	return func(opts *BridgeOptions) {
		opts.QuietRoutes = addrs
	}
}

// WithFXParamLimit overrides the per-effect parameter cap of track scans.
// Zero reports effects without their parameters; negative values are ignored.
func WithFXParamLimit(n int) Option {
	return func(opts *BridgeOptions) {
		opts.FXParamLimit = n
		opts.fxParamLimitSet = true
	}
}

// WithHostConsole toggles mirroring of log lines to the host console. It is on by default.
func WithHostConsole(enabled bool) Option {
	return func(opts *BridgeOptions) {
		opts.NoHostConsole = !enabled
	}
}
