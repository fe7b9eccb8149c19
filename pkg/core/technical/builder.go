package technical

import (
	"path/filepath"
	"strings"

	apierrors "github.com/clembu/nfogen/pkg/core/errors"
	"github.com/clembu/nfogen/pkg/core/probe"
)

// Build normalizes a tagged probe source into the canonical Metadata.
// Exactly one tool is authoritative per invocation; there is no
// field-level merging between tools. Malformed individual fields stay
// nil rather than failing the build, but a tree without a recognizable
// track structure returns ErrUnsupportedFormat.
func Build(src *probe.Source, filename string) (*Metadata, error) {
	if src == nil {
		return nil, apierrors.ErrUnsupportedFormat
	}
	switch src.Tool {
	case probe.ToolMediaInfo:
		if src.MediaInfo == nil || len(src.MediaInfo.Media.Track) == 0 {
			return nil, apierrors.ErrUnsupportedFormat
		}
		return buildFromMediaInfo(src.MediaInfo, filename), nil
	case probe.ToolFFProbe:
		if src.FFProbe == nil || (len(src.FFProbe.Streams) == 0 && len(src.FFProbe.Format) == 0) {
			return nil, apierrors.ErrUnsupportedFormat
		}
		return buildFromFFProbe(src.FFProbe, filename), nil
	default:
		return nil, apierrors.ErrUnsupportedFormat
	}
}

func buildFromMediaInfo(tree *probe.MediaInfoTree, filename string) *Metadata {
	meta := &Metadata{Tool: probe.ToolMediaInfo, General: General{Filename: filename}}

	for _, track := range tree.Media.Track {
		switch firstValue(track, "@type") {
		case "General":
			meta.General.Format = strPtr(firstValue(track, "Format"))
			meta.General.SizeBytes = parseBytes(firstValue(track, "FileSize", "FileSize_String3", "FileSize_String"))
			meta.General.DurationSec = parseDuration(firstValue(track, "Duration", "Duration_String3", "Duration_String2", "Duration_String1"))
			meta.General.OverallBitrate = parseBitrate(firstValue(track, "OverallBitRate", "OverallBitRate_String"))
			meta.General.EncodedDate = strPtr(firstValue(track, "Encoded_Date", "EncodedDate"))
			meta.General.WritingApp = strPtr(firstValue(track, "Encoded_Application", "WritingApplication"))
			meta.General.WritingLibrary = strPtr(firstValue(track, "Encoded_Library", "WritingLibrary"))
		case "Video":
			meta.Video = append(meta.Video, VideoTrack{
				Codec:          strPtr(firstValue(track, "Format", "Format_Commercial")),
				Profile:        strPtr(firstValue(track, "Format_Profile")),
				Width:          parseInt(firstValue(track, "Width")),
				Height:         parseInt(firstValue(track, "Height")),
				FrameRate:      parseFloat(firstValue(track, "FrameRate")),
				AspectRatio:    strPtr(firstValue(track, "DisplayAspectRatio_String", "DisplayAspectRatio")),
				BitrateBps:     parseBitrate(firstValue(track, "BitRate", "BitRate_String")),
				BitDepth:       parseInt(firstValue(track, "BitDepth")),
				ScanType:       strPtr(firstValue(track, "ScanType")),
				ColorPrimaries: strPtr(firstValue(track, "colour_primaries", "ColorPrimaries")),
				HDRFormat:      strPtr(firstValue(track, "HDR_Format_Commercial", "HDR_Format", "HDR_Format_String", "HDR_Format_Compatibility")),
			})
		case "Audio":
			meta.Audio = append(meta.Audio, AudioTrack{
				Codec:         strPtr(firstValue(track, "Format", "Format_Commercial")),
				Title:         strPtr(firstValue(track, "Title")),
				Language:      strPtr(firstValue(track, "Language")),
				Channels:      parseInt(firstValue(track, "Channels")),
				ChannelLayout: strPtr(firstValue(track, "ChannelLayout", "ChannelPositions")),
				BitrateBps:    parseBitrate(firstValue(track, "BitRate", "BitRate_String")),
				SampleRateHz:  parseSampleRate(firstValue(track, "SamplingRate", "SamplingRate_String")),
				Default:       parseBool(firstValue(track, "Default")),
				Forced:        parseBool(firstValue(track, "Forced")),
			})
		case "Text", "Subtitle":
			meta.Subtitle = append(meta.Subtitle, SubtitleTrack{
				Format:   strPtr(firstValue(track, "Format", "CodecID")),
				Title:    strPtr(firstValue(track, "Title")),
				Language: strPtr(firstValue(track, "Language")),
				Default:  parseBool(firstValue(track, "Default")),
				Forced:   parseBool(firstValue(track, "Forced")),
			})
		}
	}

	return meta
}

func buildFromFFProbe(tree *probe.FFProbeTree, filename string) *Metadata {
	meta := &Metadata{Tool: probe.ToolFFProbe, General: General{Filename: filename}}

	if fmtInfo := tree.Format; fmtInfo != nil {
		meta.General.Format = strPtr(firstValue(fmtInfo, "format_long_name", "format_name"))
		meta.General.SizeBytes = parseInt(firstValue(fmtInfo, "size"))
		meta.General.DurationSec = parseFloat(firstValue(fmtInfo, "duration"))
		meta.General.OverallBitrate = parseBitrate(firstValue(fmtInfo, "bit_rate"))
		if tags := subTree(fmtInfo, "tags"); tags != nil {
			meta.General.EncodedDate = strPtr(firstValue(tags, "ENCODED_DATE", "encoded_date", "creation_time", "DATE"))
			meta.General.WritingApp = strPtr(firstValue(tags, "WRITING_APPLICATION", "writing_application", "encoder"))
			meta.General.WritingLibrary = strPtr(firstValue(tags, "WRITING_LIBRARY", "writing_library"))
		}
	}

	for _, stream := range tree.Streams {
		tags := subTree(stream, "tags")
		disposition := subTree(stream, "disposition")
		switch firstValue(stream, "codec_type") {
		case "video":
			meta.Video = append(meta.Video, VideoTrack{
				Codec:          strPtr(firstValue(stream, "codec_name")),
				Profile:        strPtr(firstValue(stream, "profile")),
				Width:          parseInt(firstValue(stream, "width")),
				Height:         parseInt(firstValue(stream, "height")),
				FrameRate:      parseRational(firstValue(stream, "avg_frame_rate", "r_frame_rate")),
				AspectRatio:    strPtr(firstValue(stream, "display_aspect_ratio")),
				BitrateBps:     parseBitrate(firstValue(stream, "bit_rate")),
				BitDepth:       parseInt(firstValue(stream, "bits_per_raw_sample")),
				ScanType:       strPtr(firstValue(stream, "field_order")),
				ColorPrimaries: strPtr(firstValue(stream, "color_primaries")),
				HDRFormat:      strPtr(ffprobeHDR(stream)),
			})
		case "audio":
			meta.Audio = append(meta.Audio, AudioTrack{
				Codec:         strPtr(firstValue(stream, "codec_name")),
				Title:         strPtr(firstValue(tags, "title")),
				Language:      strPtr(firstValue(tags, "language")),
				Channels:      parseInt(firstValue(stream, "channels")),
				ChannelLayout: strPtr(firstValue(stream, "channel_layout")),
				BitrateBps:    parseBitrate(firstValue(stream, "bit_rate")),
				SampleRateHz:  parseInt(firstValue(stream, "sample_rate")),
				Default:       dispositionFlag(disposition, "default"),
				Forced:        dispositionFlag(disposition, "forced"),
			})
		case "subtitle":
			meta.Subtitle = append(meta.Subtitle, SubtitleTrack{
				Format:   strPtr(firstValue(stream, "codec_name")),
				Title:    strPtr(firstValue(tags, "title")),
				Language: strPtr(firstValue(tags, "language")),
				Default:  dispositionFlag(disposition, "default"),
				Forced:   dispositionFlag(disposition, "forced"),
			})
		}
	}

	if meta.General.Format == nil {
		ext := strings.TrimPrefix(filepath.Ext(filename), ".")
		meta.General.Format = strPtr(strings.ToUpper(ext))
	}

	return meta
}

// subTree returns a nested object of the raw tree, or nil.
func subTree(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	if sub, ok := m[key].(map[string]interface{}); ok {
		return sub
	}
	return nil
}

// dispositionFlag reads an ffprobe disposition bit. Missing dispositions
// stay nil so they render as unknown rather than "No".
func dispositionFlag(disposition map[string]interface{}, key string) *bool {
	if disposition == nil {
		return nil
	}
	raw, ok := disposition[key]
	if !ok {
		return nil
	}
	return parseBool(asString(raw))
}

// parseSampleRate accepts raw Hz counts and "48.0 kHz" strings.
func parseSampleRate(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.Contains(strings.ToLower(s), "khz") {
		f := parseFloat(strings.TrimSpace(strings.TrimSuffix(strings.ToLower(s), "khz")))
		if f == nil {
			return nil
		}
		return intPtr(int64(*f * 1000))
	}
	return parseInt(s)
}

// ffprobeHDR derives an HDR label from transfer characteristics and
// side data, mirroring what mediainfo reports directly.
func ffprobeHDR(stream map[string]interface{}) string {
	hdr := ""
	switch firstValue(stream, "color_transfer", "color_trc") {
	case "smpte2084":
		hdr = "HDR10"
	case "arib-std-b67":
		hdr = "HLG"
	}
	if sideData, ok := stream["side_data_list"].([]interface{}); ok {
		for _, entry := range sideData {
			if m, ok := entry.(map[string]interface{}); ok {
				if strings.Contains(firstValue(m, "side_data_type"), "Dolby Vision") {
					hdr = "Dolby Vision"
				}
			}
		}
	}
	return hdr
}
