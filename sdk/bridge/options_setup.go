package bridge

import (
	"github.com/leandrodaf/reabridge/internal/logger"
	"github.com/leandrodaf/reabridge/internal/router"
	"github.com/leandrodaf/reabridge/sdk/contracts"
)

// applyDefaultOptions sets default values for BridgeOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify BridgeOptions.
//
// Returns:
//   - contracts.BridgeOptions: A structure containing the finalized bridge options with defaults applied.
func applyDefaultOptions(opts ...contracts.Option) contracts.BridgeOptions {
	options := &contracts.BridgeOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Set defaults if options are not provided
	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if !options.LogLevelSet() {
		options.LogLevel = contracts.InfoLevel
	}
	if options.ListenAddr == "" {
		options.ListenAddr = contracts.DefaultListenAddr
	}
	if !options.ReplyPortSet() {
		options.ReplyPort = contracts.DefaultReplyPort
	}
	if options.ReadTimeout <= 0 {
		options.ReadTimeout = contracts.DefaultReadTimeout
	}
	if options.QuietRoutes == nil {
		options.QuietRoutes = router.DefaultQuietRoutes
	}
	if !options.FXParamLimitSet() || options.FXParamLimit < 0 {
		options.FXParamLimit = contracts.DefaultFXParamLimit
	}

	if options.LogFilePath != "" {
		options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
	}
	options.Logger.SetLevel(options.LogLevel)
	return *options
}

// applyDefaultOutputOptions fills in the MIDI output defaults.
func applyDefaultOutputOptions(opts ...contracts.MIDIOutputOption) contracts.MIDIOutputOptions {
	options := &contracts.MIDIOutputOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.ClientName == "" {
		options.ClientName = "reabridge"
	}
	return *options
}
