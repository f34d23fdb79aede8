//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/reabridge/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for MIDI output issues.
var (
	ErrNoMIDIDevices     = errors.New("no MIDI output devices found")
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
	ErrNoDeviceSelected  = errors.New("no MIDI device selected")
	ErrCreateOutputPort  = errors.New("error creating output port")
	ErrEmptyMIDIMessage  = errors.New("empty MIDI message")
	ErrMIDIOutputStopped = errors.New("MIDI output stopped")
	ErrMIDISendFailed    = errors.New("error sending MIDI message")
)

// Output sends MIDI messages to a CoreMIDI destination on Darwin (macOS).
type Output struct {
	logger     contracts.Logger
	client     coremidi.Client       // CoreMIDI client instance.
	outputPort coremidi.OutputPort   // Port the messages leave through.
	dest       *coremidi.Destination // Selected destination, nil until SelectDevice.
	mu         sync.Mutex            // Guards dest, outputPort and stopped.
	stopped    bool                  // Set by Stop; Send fails afterwards.
	stopOnce   sync.Once             // Ensures Stop() is executed only once.
}

// NewMIDIOutput registers a CoreMIDI client and an output port.
func NewMIDIOutput(options *contracts.MIDIOutputOptions) (contracts.MIDIOutput, error) {
	client, err := coremidi.NewClient(options.ClientName)
	if err != nil {
		return nil, err
	}
	port, err := coremidi.NewOutputPort(client, "Output Port")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateOutputPort, err)
	}
	options.Logger.Info("MIDI output created", options.Logger.Field().String("client", options.ClientName))

	return &Output{
		logger:     options.Logger,
		client:     client,
		outputPort: port,
	}, nil
}

// ListDevices returns the available CoreMIDI destinations.
func (m *Output) ListDevices() ([]contracts.DeviceInfo, error) {
	dests, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI destinations: %w", err)
	}
	if len(dests) == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(dests))
	for i, dest := range dests {
		devices[i] = contracts.DeviceInfo{
			Name:         dest.Name(),
			EntityName:   dest.Name(),
			Manufacturer: dest.Manufacturer(),
		}
	}
	return devices, nil
}

// SelectDevice picks the destination at deviceID in ListDevices order.
func (m *Output) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dests, err := coremidi.AllDestinations()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI destinations: %w", err)
	}
	if deviceID < 0 || deviceID >= len(dests) {
		m.logger.Error(ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return ErrInvalidMIDIDevice
	}

	dest := dests[deviceID]
	m.dest = &dest
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", dest.Name()))
	return nil
}

// Send delivers one MIDI message to the selected destination.
func (m *Output) Send(msg []byte) error {
	if len(msg) == 0 {
		return ErrEmptyMIDIMessage
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrMIDIOutputStopped
	}
	if m.dest == nil {
		return ErrNoDeviceSelected
	}
	packet := coremidi.NewPacket(msg, 0)
	if err := packet.Send(&m.outputPort, m.dest); err != nil {
		return fmt.Errorf("%w: %v", ErrMIDISendFailed, err)
	}
	return nil
}

// Stop releases the destination. Safe to call more than once.
func (m *Output) Stop() error {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.stopped = true
		m.dest = nil
		m.logger.Info("MIDI output stopped")
	})
	return nil
}
