package host

import "github.com/leandrodaf/reabridge/sdk/contracts"

// currentProject is the handle the host interprets as "the active project".
const currentProject contracts.Project = 0

// ProjectName returns the name of the active project.
func (c *Capabilities) ProjectName() (string, bool) {
	if c.EnumProjects == nil || c.GetProjectName == nil {
		return "", false
	}
	proj := c.EnumProjects(-1)
	if proj == 0 {
		return "", false
	}
	return c.GetProjectName(proj), true
}

// TrackCount returns the number of tracks in the active project.
func (c *Capabilities) TrackCount() (int, bool) {
	if c.CountTracks == nil {
		return 0, false
	}
	return c.CountTracks(currentProject), true
}

// Track returns the track at idx, or false if it does not exist or GetTrack is missing.
func (c *Capabilities) Track(idx int) (contracts.Track, bool) {
	if c.GetTrack == nil || idx < 0 {
		return 0, false
	}
	tr := c.GetTrack(currentProject, idx)
	return tr, tr != 0
}

// TrackIndex finds tr in the track list by handle identity. It returns -1 when
// the track is not found or the list cannot be walked.
func (c *Capabilities) TrackIndex(tr contracts.Track) int {
	if tr == 0 || c.CountTracks == nil || c.GetTrack == nil {
		return -1
	}
	n := c.CountTracks(currentProject)
	for i := 0; i < n; i++ {
		if c.GetTrack(currentProject, i) == tr {
			return i
		}
	}
	return -1
}

// TrackName returns a track's name, falling back to the P_NAME string attribute.
func (c *Capabilities) TrackName(tr contracts.Track) (string, bool) {
	if c.GetTrackName != nil {
		return c.GetTrackName(tr)
	}
	if c.GetSetMediaTrackInfoString != nil {
		return c.GetSetMediaTrackInfoString(tr, ParamName, "", false)
	}
	return "", false
}

// SetTrackName renames a track.
func (c *Capabilities) SetTrackName(tr contracts.Track, name string) bool {
	if c.GetSetMediaTrackInfoString == nil {
		return false
	}
	_, ok := c.GetSetMediaTrackInfoString(tr, ParamName, name, true)
	return ok
}

// TrackValue reads a numeric track attribute such as D_VOL.
func (c *Capabilities) TrackValue(tr contracts.Track, param string) (float64, bool) {
	if c.GetMediaTrackInfoValue == nil {
		return 0, false
	}
	return c.GetMediaTrackInfoValue(tr, param), true
}

// SetTrackValue writes a numeric track attribute.
func (c *Capabilities) SetTrackValue(tr contracts.Track, param string, v float64) bool {
	if c.SetMediaTrackInfoValue == nil {
		return false
	}
	return c.SetMediaTrackInfoValue(tr, param, v)
}

// SendMIDI queues a short MIDI message into the host's virtual keyboard input.
func (c *Capabilities) SendMIDI(msg []byte) bool {
	if c.StuffMIDIMessage == nil {
		return false
	}
	c.StuffMIDIMessage(0, msg)
	return true
}
