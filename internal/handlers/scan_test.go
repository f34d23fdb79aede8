package handlers

import (
	"fmt"
	"testing"

	"github.com/leandrodaf/reabridge/internal/host"
	"github.com/leandrodaf/reabridge/internal/host/simhost"
	"github.com/leandrodaf/reabridge/internal/osc"
)

func decodeBlob(t *testing.T, arg interface{}, address string) []interface{} {
	t.Helper()
	b, ok := arg.([]byte)
	if !ok {
		t.Fatalf("%s: argument is %T, want blob", address, arg)
	}
	msgs, err := osc.Decode(b)
	if err != nil {
		t.Fatalf("%s: %v", address, err)
	}
	if len(msgs) != 1 || msgs[0].Address != address {
		t.Fatalf("blob decoded to %v", msgs)
	}
	return msgs[0].Arguments
}

func scanProject() *simhost.Host {
	sim := simhost.New()
	sim.AddTrack(simhost.Track{Name: "master"})
	reverb := sim.AddTrack(simhost.Track{Name: "reverb bus"})
	sim.AddTrack(simhost.Track{
		Name:       "synth",
		Volume:     0.8,
		Pan:        -0.5,
		Mute:       true,
		Solo:       2,
		RecArm:     1,
		RecInput:   4096 + 32,
		RecMode:    2,
		RecMonitor: 1,
		Color:      0x1ff0000,
		FX: []simhost.FX{
			{Name: "VST: ReaEQ", Enabled: true, Preset: "bright", Params: []simhost.FXParam{
				{Name: "Gain", Value: 0.5, Min: 0, Max: 1, Formatted: "0.0 dB"},
				{Name: "Freq", Value: 0.25, Min: 0, Max: 1, Formatted: "440 Hz"},
			}},
			{Name: "JS: Delay", Enabled: false},
		},
		Sends: []simhost.Send{
			{Dest: reverb, Volume: 0.3, Pan: 0.1},
			{Dest: 0, Volume: 1, Mute: true},
		},
	})
	return sim
}

func TestScanTrack(t *testing.T) {
	f := newFixture(t, scanProject())

	f.send("/track/scan", int32(2))

	got := f.only(t)
	if got.Address != "/track/scan/response" || len(got.Arguments) != 14 {
		t.Fatalf("reply = %s", got)
	}
	head := osc.NewMessage(got.Address, got.Arguments[:12]...)
	expect(t, head, "/track/scan/response",
		"success", int32(2), "synth", float32(0.8), float32(-0.5),
		true, true, true, int32(4128), int32(2), int32(1), int32(0x1ff0000))

	fx := decodeBlob(t, got.Arguments[12], ScanFXAddress)
	wantFX := osc.NewMessage(ScanFXAddress,
		int32(2),
		"VST: ReaEQ", false, "bright", int32(2),
		"Gain", float32(0.5), float32(0), float32(1), "0.0 dB",
		"Freq", float32(0.25), float32(0), float32(1), "440 Hz",
		"JS: Delay", true, "", int32(0),
	)
	expect(t, osc.NewMessage(ScanFXAddress, fx...), wantFX.Address, wantFX.Arguments...)

	sends := decodeBlob(t, got.Arguments[13], ScanSendsAddress)
	wantSends := osc.NewMessage(ScanSendsAddress,
		int32(2),
		"reverb bus", int32(1), float32(0.3), float32(0.1), false,
		"None", int32(-1), float32(1), float32(0), true,
	)
	expect(t, osc.NewMessage(ScanSendsAddress, sends...), wantSends.Address, wantSends.Arguments...)
}

func TestScanCapsParamsPerFX(t *testing.T) {
	params := make([]simhost.FXParam, 25)
	for i := range params {
		params[i] = simhost.FXParam{Name: fmt.Sprintf("p%d", i)}
	}
	sim := simhost.New()
	sim.AddTrack(simhost.Track{FX: []simhost.FX{{Name: "big", Enabled: true, Params: params}}})

	for _, limit := range []int{20, 3, 0} {
		f := newFixture(t, sim, WithFXParamLimit(limit))
		f.send("/track/scan", int32(0))

		fx := decodeBlob(t, f.only(t).Arguments[12], ScanFXAddress)
		// count, 4 header fields, 5 fields per listed param
		if want := 1 + 4 + 5*limit; len(fx) != want {
			t.Errorf("limit %d: %d fields, want %d", limit, len(fx), want)
		}
		if fx[4] != int32(25) {
			t.Errorf("limit %d: param_count = %v, want the full 25", limit, fx[4])
		}
	}
}

func TestScanDegradedHost(t *testing.T) {
	sim := scanProject()
	sim2 := simhost.New(simhost.Without(
		host.GetTrackName, host.GetSetMediaTrackInfoString, host.GetMediaTrackInfoValue,
		host.GetTrackColor, host.TrackFXGetCount, host.GetTrackNumSends,
	))
	for i := 0; i < sim.Len(); i++ {
		tr, _ := sim.Snapshot(i)
		sim2.AddTrack(tr)
	}
	f := newFixture(t, sim2)

	f.send("/track/scan", int32(2))

	got := f.only(t)
	if len(got.Arguments) != 14 {
		t.Fatalf("reply = %s", got)
	}
	head := osc.NewMessage(got.Address, got.Arguments[:12]...)
	expect(t, head, "/track/scan/response",
		"success", int32(2), "", float32(0), float32(0),
		false, false, false, int32(0), int32(0), int32(0), int32(0))
	if fx := decodeBlob(t, got.Arguments[12], ScanFXAddress); len(fx) != 1 || fx[0] != int32(0) {
		t.Errorf("fx = %v", fx)
	}
	if sends := decodeBlob(t, got.Arguments[13], ScanSendsAddress); len(sends) != 1 || sends[0] != int32(0) {
		t.Errorf("sends = %v", sends)
	}
}

func TestScanFXWithoutDetailCapabilities(t *testing.T) {
	sim := simhost.New(simhost.Without(host.TrackFXGetEnabled, host.TrackFXGetParam))
	sim.AddTrack(simhost.Track{FX: []simhost.FX{{
		Name: "comp", Enabled: false,
		Params: []simhost.FXParam{{Name: "Ratio", Value: 0.7, Max: 1, Formatted: "4:1"}},
	}}})
	f := newFixture(t, sim)

	f.send("/track/scan", int32(0))

	fx := decodeBlob(t, f.only(t).Arguments[12], ScanFXAddress)
	expect(t, osc.NewMessage(ScanFXAddress, fx...), ScanFXAddress,
		int32(1), "comp", false, "", int32(1),
		"Ratio", float32(0), float32(0), float32(0), "4:1")
}

func TestScanErrors(t *testing.T) {
	sim := simhost.New()
	sim.AddTrack(simhost.Track{})
	f := newFixture(t, sim)

	f.send("/track/scan")
	f.send("/track/scan", int32(-3))
	f.send("/track/scan", int32(5))

	msgs := f.replies.all()
	if len(msgs) != 3 {
		t.Fatalf("replies = %v", msgs)
	}
	expect(t, msgs[0], "/track/scan/response", "error", "Invalid track index")
	expect(t, msgs[1], "/track/scan/response", "error", "Invalid track index")
	expect(t, msgs[2], "/track/scan/response", "error", "Track not found")
}
