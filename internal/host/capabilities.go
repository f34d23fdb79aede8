// Package host resolves the host functions the bridge calls and exposes them
// as optional, typed capabilities.
package host

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/leandrodaf/reabridge/sdk/contracts"
)

// Capability names, as exported by the host. The Go signature each name must
// resolve to is the type of the matching field in Capabilities.
const (
	ShowConsoleMsg                = "ShowConsoleMsg"
	EnumProjects                  = "EnumProjects"
	GetProjectName                = "GetProjectName"
	MainOnCommand                 = "Main_OnCommand"
	CountTracks                   = "CountTracks"
	GetTrack                      = "GetTrack"
	InsertTrackAtIndex            = "InsertTrackAtIndex"
	GetTrackName                  = "GetTrackName"
	GetSetMediaTrackInfoString    = "GetSetMediaTrackInfo_String"
	GetMediaTrackInfoValue        = "GetMediaTrackInfo_Value"
	SetMediaTrackInfoValue        = "SetMediaTrackInfo_Value"
	GetTrackColor                 = "GetTrackColor"
	TrackFXGetCount               = "TrackFX_GetCount"
	TrackFXGetFXName              = "TrackFX_GetFXName"
	TrackFXGetEnabled             = "TrackFX_GetEnabled"
	TrackFXGetPreset              = "TrackFX_GetPreset"
	TrackFXGetNumParams           = "TrackFX_GetNumParams"
	TrackFXGetParamName           = "TrackFX_GetParamName"
	TrackFXGetParam               = "TrackFX_GetParam"
	TrackFXGetFormattedParamValue = "TrackFX_GetFormattedParamValue"
	GetTrackNumSends              = "GetTrackNumSends"
	GetTrackSendInfoValue         = "GetTrackSendInfo_Value"
	StuffMIDIMessage              = "StuffMIDIMessage"
)

// Names lists every capability resolved at load, in lookup order.
var Names = []string{
	ShowConsoleMsg, EnumProjects, GetProjectName, MainOnCommand, CountTracks, GetTrack,
	InsertTrackAtIndex, GetTrackName, GetSetMediaTrackInfoString, GetMediaTrackInfoValue,
	SetMediaTrackInfoValue, GetTrackColor, TrackFXGetCount, TrackFXGetFXName, TrackFXGetEnabled,
	TrackFXGetPreset, TrackFXGetNumParams, TrackFXGetParamName, TrackFXGetParam,
	TrackFXGetFormattedParamValue, GetTrackNumSends, GetTrackSendInfoValue, StuffMIDIMessage,
}

// Track and send parameter names passed through to the host untouched.
const (
	ParamName        = "P_NAME"
	ParamVolume      = "D_VOL"
	ParamPan         = "D_PAN"
	ParamMute        = "B_MUTE"
	ParamSolo        = "I_SOLO"
	ParamRecArm      = "I_RECARM"
	ParamRecInput    = "I_RECINPUT"
	ParamRecMode     = "I_RECMODE"
	ParamRecMonitor  = "I_RECMON"
	ParamDestTrack   = "P_DESTTRACK"
	SendCategorySend = 0
)

// Capabilities holds one func per host capability. A nil field means the host
// did not provide it; callers check before calling. The struct is filled once
// by Resolve and never written afterwards.
type Capabilities struct {
	ShowConsoleMsg                func(msg string)
	EnumProjects                  func(idx int) contracts.Project
	GetProjectName                func(proj contracts.Project) string
	MainOnCommand                 func(command, flag int)
	CountTracks                   func(proj contracts.Project) int
	GetTrack                      func(proj contracts.Project, idx int) contracts.Track
	InsertTrackAtIndex            func(idx int, wantDefaults bool)
	GetTrackName                  func(tr contracts.Track) (string, bool)
	GetSetMediaTrackInfoString    func(tr contracts.Track, param, value string, set bool) (string, bool)
	GetMediaTrackInfoValue        func(tr contracts.Track, param string) float64
	SetMediaTrackInfoValue        func(tr contracts.Track, param string, value float64) bool
	GetTrackColor                 func(tr contracts.Track) int
	TrackFXGetCount               func(tr contracts.Track) int
	TrackFXGetFXName              func(tr contracts.Track, fx int) (string, bool)
	TrackFXGetEnabled             func(tr contracts.Track, fx int) bool
	TrackFXGetPreset              func(tr contracts.Track, fx int) (string, bool)
	TrackFXGetNumParams           func(tr contracts.Track, fx int) int
	TrackFXGetParamName           func(tr contracts.Track, fx, param int) (string, bool)
	TrackFXGetParam               func(tr contracts.Track, fx, param int) (value, min, max float64)
	TrackFXGetFormattedParamValue func(tr contracts.Track, fx, param int) (string, bool)
	GetTrackNumSends              func(tr contracts.Track, category int) int
	GetTrackSendInfoValue         func(tr contracts.Track, category, idx int, param string) float64
	StuffMIDIMessage              func(mode int, msg []byte)

	missing []string
}

// Resolve looks up every capability once. Names the resolver does not know, or
// that resolve to a func of the wrong type, are recorded as missing.
func Resolve(r contracts.Resolver, logger contracts.Logger) *Capabilities {
	c := &Capabilities{}
	if r == nil {
		r = contracts.ResolverFunc(func(string) interface{} { return nil })
	}

	lookup(r, logger, c, ShowConsoleMsg, &c.ShowConsoleMsg)
	lookup(r, logger, c, EnumProjects, &c.EnumProjects)
	lookup(r, logger, c, GetProjectName, &c.GetProjectName)
	lookup(r, logger, c, MainOnCommand, &c.MainOnCommand)
	lookup(r, logger, c, CountTracks, &c.CountTracks)
	lookup(r, logger, c, GetTrack, &c.GetTrack)
	lookup(r, logger, c, InsertTrackAtIndex, &c.InsertTrackAtIndex)
	lookup(r, logger, c, GetTrackName, &c.GetTrackName)
	lookup(r, logger, c, GetSetMediaTrackInfoString, &c.GetSetMediaTrackInfoString)
	lookup(r, logger, c, GetMediaTrackInfoValue, &c.GetMediaTrackInfoValue)
	lookup(r, logger, c, SetMediaTrackInfoValue, &c.SetMediaTrackInfoValue)
	lookup(r, logger, c, GetTrackColor, &c.GetTrackColor)
	lookup(r, logger, c, TrackFXGetCount, &c.TrackFXGetCount)
	lookup(r, logger, c, TrackFXGetFXName, &c.TrackFXGetFXName)
	lookup(r, logger, c, TrackFXGetEnabled, &c.TrackFXGetEnabled)
	lookup(r, logger, c, TrackFXGetPreset, &c.TrackFXGetPreset)
	lookup(r, logger, c, TrackFXGetNumParams, &c.TrackFXGetNumParams)
	lookup(r, logger, c, TrackFXGetParamName, &c.TrackFXGetParamName)
	lookup(r, logger, c, TrackFXGetParam, &c.TrackFXGetParam)
	lookup(r, logger, c, TrackFXGetFormattedParamValue, &c.TrackFXGetFormattedParamValue)
	lookup(r, logger, c, GetTrackNumSends, &c.GetTrackNumSends)
	lookup(r, logger, c, GetTrackSendInfoValue, &c.GetTrackSendInfoValue)
	lookup(r, logger, c, StuffMIDIMessage, &c.StuffMIDIMessage)

	sort.Strings(c.missing)
	return c
}

func lookup[F any](r contracts.Resolver, logger contracts.Logger, c *Capabilities, name string, dst *F) {
	v := r.GetFunc(name)
	if v == nil {
		c.missing = append(c.missing, name)
		return
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Func && rv.IsNil() {
		c.missing = append(c.missing, name)
		return
	}
	fn, ok := v.(F)
	if !ok {
		logger.Warn("host capability has an unexpected signature",
			logger.Field().String("capability", name),
			logger.Field().String("type", typeName(v)))
		c.missing = append(c.missing, name)
		return
	}
	*dst = fn
}

// Missing returns the capability names that were not resolved, sorted.
func (c *Capabilities) Missing() []string {
	return append([]string(nil), c.missing...)
}

// Has reports whether name is a known capability that was resolved.
func (c *Capabilities) Has(name string) bool {
	known := false
	for _, n := range Names {
		if n == name {
			known = true
			break
		}
	}
	if !known {
		return false
	}
	for _, m := range c.missing {
		if m == name {
			return false
		}
	}
	return true
}

func typeName(v interface{}) string {
	return fmt.Sprintf("%T", v)
}
