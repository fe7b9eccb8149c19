// Package technical normalizes raw probe output into one canonical
// metadata schema, absorbing the two probe tools' differing field names
// and unit encodings. Optional fields are pointers: nil means the probe
// did not report the field, which is distinct from a zero value.
package technical

import "github.com/clembu/nfogen/pkg/core/probe"

// General holds container-level information.
type General struct {
	Filename       string
	Format         *string
	SizeBytes      *int64
	DurationSec    *float64
	OverallBitrate *int64
	EncodedDate    *string
	WritingApp     *string
	WritingLibrary *string
}

// VideoTrack holds one video stream, in probe-reported order.
type VideoTrack struct {
	Codec          *string
	Profile        *string
	Width          *int64
	Height         *int64
	FrameRate      *float64
	AspectRatio    *string
	BitrateBps     *int64
	BitDepth       *int64
	ScanType       *string
	ColorPrimaries *string
	HDRFormat      *string
}

// AudioTrack holds one audio stream, in probe-reported order.
type AudioTrack struct {
	Codec         *string
	Title         *string
	Language      *string
	Channels      *int64
	ChannelLayout *string
	BitrateBps    *int64
	SampleRateHz  *int64
	Default       *bool
	Forced        *bool
}

// SubtitleTrack holds one subtitle stream, in probe-reported order.
type SubtitleTrack struct {
	Format   *string
	Title    *string
	Language *string
	Default  *bool
	Forced   *bool
}

// Metadata is the canonical technical schema consumed by the merger.
// Track slices preserve the probe's stream order.
type Metadata struct {
	Tool     probe.Tool
	General  General
	Video    []VideoTrack
	Audio    []AudioTrack
	Subtitle []SubtitleTrack
}
