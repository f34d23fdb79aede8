//go:build !darwin
// +build !darwin

package mididarwin

import (
	"errors"

	"github.com/leandrodaf/reabridge/sdk/contracts"
)

// ErrUnavailable is returned by every device call on a non-macOS system.
var ErrUnavailable = errors.New("CoreMIDI output is not available on this platform")

// DummyMIDIOutput stands in for the CoreMIDI output on other systems.
type DummyMIDIOutput struct {
	logger contracts.Logger
}

func NewMIDIOutput(options *contracts.MIDIOutputOptions) (contracts.MIDIOutput, error) {
	options.Logger.Info("Using dummy MIDI output for non-macOS system")
	return &DummyMIDIOutput{
		logger: options.Logger,
	}, nil
}

func (m *DummyMIDIOutput) ListDevices() ([]contracts.DeviceInfo, error) {
	m.logger.Warn("ListDevices called on dummy MIDI output")
	return nil, ErrUnavailable
}

func (m *DummyMIDIOutput) SelectDevice(deviceID int) error {
	m.logger.Warn("SelectDevice called on dummy MIDI output", m.logger.Field().Int("deviceID", deviceID))
	return ErrUnavailable
}

func (m *DummyMIDIOutput) Send(msg []byte) error {
	return ErrUnavailable
}

func (m *DummyMIDIOutput) Stop() error {
	m.logger.Warn("Stop called on dummy MIDI output")
	return nil
}
