//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/leandrodaf/reabridge/sdk/contracts"
	"golang.org/x/sys/windows"
)

// Type definitions for MIDI handles
type HMIDIOUT windows.Handle

// Constants for midiOutOpen
const (
	CALLBACK_NULL = 0x00000000 // No callback; the output is write-only
)

// Error definitions for MIDI output issues.
var (
	ErrNoMIDIDevices     = errors.New("no MIDI output devices found")
	ErrNoDeviceSelected  = errors.New("no MIDI device selected")
	ErrMessageLength     = errors.New("MIDI short messages are 1 to 3 bytes")
	ErrMIDIOutputStopped = errors.New("MIDI output stopped")
)

// Struct representing MIDI output device capabilities (MIDIOUTCAPSW)
type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

// Output sends MIDI messages through winmm on Windows
type Output struct {
	logger   contracts.Logger
	handle   HMIDIOUT   // Open device, 0 when none is selected.
	mu       sync.Mutex // Guards handle and stopped.
	stopped  bool       // Set by Stop; Send fails afterwards.
	stopOnce sync.Once  // Ensures Stop() is executed only once.
}

// Load the winmm.dll library and required functions
var (
	winmm                 = windows.NewLazySystemDLL("winmm.dll")
	procMidiOutGetNumDevs = winmm.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps = winmm.NewProc("midiOutGetDevCapsW")
	procMidiOutOpen       = winmm.NewProc("midiOutOpen")
	procMidiOutShortMsg   = winmm.NewProc("midiOutShortMsg")
	procMidiOutReset      = winmm.NewProc("midiOutReset")
	procMidiOutClose      = winmm.NewProc("midiOutClose")
)

// NewMIDIOutput creates a MIDI output for Windows
func NewMIDIOutput(options *contracts.MIDIOutputOptions) (contracts.MIDIOutput, error) {
	if err := winmm.Load(); err != nil {
		return nil, fmt.Errorf("loading winmm.dll: %w", err)
	}
	options.Logger.Info("MIDI output created for Windows")
	return &Output{logger: options.Logger}, nil
}

// ListDevices lists the available MIDI output devices
func (m *Output) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiOutGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiOutCaps
		r1, _, _ := procMidiOutGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			m.logger.Warn("Failed to get information for MIDI device", m.logger.Field().Int("deviceID", int(i)))
			continue
		}
		deviceName := windows.UTF16ToString(caps.szPname[:])
		devices[i] = contracts.DeviceInfo{
			Name:         deviceName,
			EntityName:   deviceName,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		}
	}
	return devices, nil
}

// SelectDevice opens a MIDI output device, closing the previous one
func (m *Output) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrMIDIOutputStopped
	}
	if m.handle != 0 {
		if err := m.closeDevice(); err != nil {
			return fmt.Errorf("failed to close previous MIDI device: %w", err)
		}
	}

	var handle HMIDIOUT
	r1, _, err := procMidiOutOpen.Call(
		uintptr(unsafe.Pointer(&handle)),
		uintptr(deviceID),
		0,
		0,
		uintptr(CALLBACK_NULL),
	)
	if r1 != 0 {
		m.logger.Error("Failed to open MIDI device",
			m.logger.Field().Int("deviceID", deviceID),
			m.logger.Field().Error("error", err))
		return fmt.Errorf("failed to open MIDI device %d: mmresult %d", deviceID, r1)
	}

	m.handle = handle
	m.logger.Info("MIDI device connected", m.logger.Field().Int("deviceID", deviceID))
	return nil
}

// Send packs a short message into a DWORD and writes it to the device
func (m *Output) Send(msg []byte) error {
	if len(msg) == 0 || len(msg) > 3 {
		return ErrMessageLength
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrMIDIOutputStopped
	}
	if m.handle == 0 {
		return ErrNoDeviceSelected
	}

	var packed uint32
	for i, b := range msg {
		packed |= uint32(b) << (8 * i)
	}
	if r1, _, _ := procMidiOutShortMsg.Call(uintptr(m.handle), uintptr(packed)); r1 != 0 {
		return fmt.Errorf("midiOutShortMsg failed: mmresult %d", r1)
	}
	return nil
}

// Stop silences and closes the device
func (m *Output) Stop() error {
	var err error
	m.stopOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.stopped = true
		if m.handle == 0 {
			return
		}
		if err = m.closeDevice(); err != nil {
			err = fmt.Errorf("failed to close MIDI device: %w", err)
			return
		}
		m.logger.Info("MIDI output stopped and device closed")
	})
	return err
}

// closeDevice resets and closes the open device; m.mu must be held
func (m *Output) closeDevice() error {
	if r1, _, _ := procMidiOutReset.Call(uintptr(m.handle)); r1 != 0 {
		m.logger.Warn("Failed to reset MIDI device", m.logger.Field().Int("mmresult", int(r1)))
	}
	if r1, _, _ := procMidiOutClose.Call(uintptr(m.handle)); r1 != 0 {
		m.logger.Error("Failed to close MIDI device", m.logger.Field().Int("mmresult", int(r1)))
		return fmt.Errorf("midiOutClose failed: mmresult %d", r1)
	}
	m.handle = 0
	return nil
}
