package technical_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/clembu/nfogen/pkg/core/errors"
	"github.com/clembu/nfogen/pkg/core/probe"
	"github.com/clembu/nfogen/pkg/core/technical"
)

const mediaInfoFixture = `{
  "media": {
    "track": [
      {
        "@type": "General",
        "Format": "Matroska",
        "FileSize": "3296387399",
        "Duration": "6963.008",
        "OverallBitRate": "3787000",
        "Encoded_Date": "2023-11-02 20:14:11 UTC",
        "Encoded_Application": "mkvmerge v80.0"
      },
      {
        "@type": "Video",
        "Format": "AVC",
        "Format_Profile": "High@L4.1",
        "Width": "1920",
        "Height": "1080",
        "FrameRate": "23.976",
        "DisplayAspectRatio_String": "16:9",
        "BitRate_String": "3 118 kb/s",
        "BitDepth": "8",
        "ScanType": "Progressive",
        "colour_primaries": "BT.709"
      },
      {
        "@type": "Audio",
        "Format": "AC-3",
        "Language": "fr",
        "Channels": "6",
        "ChannelLayout": "L R C LFE Ls Rs",
        "BitRate": "640000",
        "SamplingRate": "48000",
        "Default": "Yes",
        "Forced": "No"
      },
      {
        "@type": "Text",
        "Format": "UTF-8",
        "Language": "en",
        "Forced": "No"
      }
    ]
  }
}`

const ffprobeFixture = `{
  "format": {
    "format_long_name": "Matroska / WebM",
    "size": "3296387399",
    "duration": "6963.008000",
    "bit_rate": "3787000",
    "tags": {"encoder": "libebml v1.4.4"}
  },
  "streams": [
    {
      "codec_type": "video",
      "codec_name": "hevc",
      "profile": "Main 10",
      "width": 3840,
      "height": 2160,
      "avg_frame_rate": "24000/1001",
      "display_aspect_ratio": "16:9",
      "bit_rate": "15200000",
      "bits_per_raw_sample": "10",
      "color_primaries": "bt2020",
      "color_transfer": "smpte2084"
    },
    {
      "codec_type": "audio",
      "codec_name": "eac3",
      "channels": 6,
      "channel_layout": "5.1(side)",
      "sample_rate": "48000",
      "bit_rate": "640000",
      "tags": {"language": "fre", "title": "VFF"},
      "disposition": {"default": 1, "forced": 0}
    },
    {
      "codec_type": "subtitle",
      "codec_name": "subrip",
      "tags": {"language": "eng"},
      "disposition": {"default": 0, "forced": 0}
    }
  ]
}`

func TestBuildFromMediaInfo(t *testing.T) {
	src, err := probe.Decode(probe.ToolMediaInfo, []byte(mediaInfoFixture))
	require.NoError(t, err)

	meta, err := technical.Build(src, "movie.mkv")
	require.NoError(t, err)

	assert.Equal(t, probe.ToolMediaInfo, meta.Tool)
	assert.Equal(t, "movie.mkv", meta.General.Filename)

	require.NotNil(t, meta.General.Format)
	assert.Equal(t, "Matroska", *meta.General.Format)
	require.NotNil(t, meta.General.SizeBytes)
	assert.Equal(t, int64(3296387399), *meta.General.SizeBytes)
	require.NotNil(t, meta.General.DurationSec)
	assert.InDelta(t, 6963.008, *meta.General.DurationSec, 0.001)
	require.NotNil(t, meta.General.OverallBitrate)
	assert.Equal(t, int64(3787000), *meta.General.OverallBitrate)
	require.NotNil(t, meta.General.WritingApp)
	assert.Equal(t, "mkvmerge v80.0", *meta.General.WritingApp)

	require.Len(t, meta.Video, 1)
	video := meta.Video[0]
	assert.Equal(t, "AVC", *video.Codec)
	assert.Equal(t, "High@L4.1", *video.Profile)
	assert.Equal(t, int64(1920), *video.Width)
	assert.Equal(t, int64(1080), *video.Height)
	assert.InDelta(t, 23.976, *video.FrameRate, 0.001)
	assert.Equal(t, "16:9", *video.AspectRatio)
	assert.Equal(t, int64(3118000), *video.BitrateBps)
	assert.Equal(t, int64(8), *video.BitDepth)
	assert.Equal(t, "BT.709", *video.ColorPrimaries)
	assert.Nil(t, video.HDRFormat)

	require.Len(t, meta.Audio, 1)
	audio := meta.Audio[0]
	assert.Equal(t, "AC-3", *audio.Codec)
	assert.Equal(t, "fr", *audio.Language)
	assert.Equal(t, int64(6), *audio.Channels)
	assert.Equal(t, int64(640000), *audio.BitrateBps)
	assert.Equal(t, int64(48000), *audio.SampleRateHz)
	require.NotNil(t, audio.Default)
	assert.True(t, *audio.Default)
	require.NotNil(t, audio.Forced)
	assert.False(t, *audio.Forced)

	require.Len(t, meta.Subtitle, 1)
	assert.Equal(t, "UTF-8", *meta.Subtitle[0].Format)
	assert.Equal(t, "en", *meta.Subtitle[0].Language)
}

func TestBuildFromFFProbe(t *testing.T) {
	src, err := probe.Decode(probe.ToolFFProbe, []byte(ffprobeFixture))
	require.NoError(t, err)

	meta, err := technical.Build(src, "movie.mkv")
	require.NoError(t, err)

	assert.Equal(t, probe.ToolFFProbe, meta.Tool)

	require.NotNil(t, meta.General.Format)
	assert.Equal(t, "Matroska / WebM", *meta.General.Format)
	require.NotNil(t, meta.General.SizeBytes)
	assert.Equal(t, int64(3296387399), *meta.General.SizeBytes)
	require.NotNil(t, meta.General.DurationSec)
	assert.InDelta(t, 6963.008, *meta.General.DurationSec, 0.001)
	require.NotNil(t, meta.General.WritingApp)
	assert.Equal(t, "libebml v1.4.4", *meta.General.WritingApp)

	require.Len(t, meta.Video, 1)
	video := meta.Video[0]
	assert.Equal(t, "hevc", *video.Codec)
	assert.Equal(t, int64(3840), *video.Width)
	assert.Equal(t, int64(2160), *video.Height)
	assert.InDelta(t, 23.976, *video.FrameRate, 0.001)
	assert.Equal(t, int64(15200000), *video.BitrateBps)
	assert.Equal(t, int64(10), *video.BitDepth)
	require.NotNil(t, video.HDRFormat)
	assert.Equal(t, "HDR10", *video.HDRFormat)

	require.Len(t, meta.Audio, 1)
	audio := meta.Audio[0]
	assert.Equal(t, "eac3", *audio.Codec)
	assert.Equal(t, "fre", *audio.Language)
	assert.Equal(t, "VFF", *audio.Title)
	assert.Equal(t, int64(6), *audio.Channels)
	require.NotNil(t, audio.Default)
	assert.True(t, *audio.Default)
	require.NotNil(t, audio.Forced)
	assert.False(t, *audio.Forced)

	require.Len(t, meta.Subtitle, 1)
	assert.Equal(t, "subrip", *meta.Subtitle[0].Format)
	assert.Equal(t, "eng", *meta.Subtitle[0].Language)
}

// Both tools encode bitrates differently (formatted string vs raw count);
// the canonical schema must not care which tool produced the value.
func TestBuildBitrateConsistentAcrossTools(t *testing.T) {
	miSrc, err := probe.Decode(probe.ToolMediaInfo, []byte(`{
	  "media": {"track": [
	    {"@type": "General"},
	    {"@type": "Video", "Format": "AVC", "BitRate_String": "3 118 kb/s"}
	  ]}
	}`))
	require.NoError(t, err)
	miMeta, err := technical.Build(miSrc, "a.mkv")
	require.NoError(t, err)

	ffSrc, err := probe.Decode(probe.ToolFFProbe, []byte(`{
	  "format": {},
	  "streams": [{"codec_type": "video", "codec_name": "h264", "bit_rate": "3118000"}]
	}`))
	require.NoError(t, err)
	ffMeta, err := technical.Build(ffSrc, "a.mkv")
	require.NoError(t, err)

	require.NotNil(t, miMeta.Video[0].BitrateBps)
	require.NotNil(t, ffMeta.Video[0].BitrateBps)
	assert.Equal(t, *miMeta.Video[0].BitrateBps, *ffMeta.Video[0].BitrateBps)
}

func TestBuildUnsupportedFormat(t *testing.T) {
	_, err := technical.Build(nil, "a.mkv")
	assert.ErrorIs(t, err, apierrors.ErrUnsupportedFormat)

	src, err := probe.Decode(probe.ToolMediaInfo, []byte(`{"media": {"track": []}}`))
	require.NoError(t, err)
	_, err = technical.Build(src, "a.mkv")
	assert.ErrorIs(t, err, apierrors.ErrUnsupportedFormat)
}

// Missing disposition objects must stay unknown, not default to No.
func TestBuildMissingDispositionStaysNil(t *testing.T) {
	src, err := probe.Decode(probe.ToolFFProbe, []byte(`{
	  "format": {},
	  "streams": [{"codec_type": "audio", "codec_name": "aac", "channels": 2}]
	}`))
	require.NoError(t, err)

	meta, err := technical.Build(src, "a.mp4")
	require.NoError(t, err)
	require.Len(t, meta.Audio, 1)
	assert.Nil(t, meta.Audio[0].Default)
	assert.Nil(t, meta.Audio[0].Forced)
}
