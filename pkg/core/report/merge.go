package report

import (
	"strconv"
	"strings"

	"github.com/clembu/nfogen/pkg/core/catalog"
	"github.com/clembu/nfogen/pkg/core/fileops"
	"github.com/clembu/nfogen/pkg/core/naming"
	"github.com/clembu/nfogen/pkg/core/technical"
)

// videoCodecLabels maps probe codec names to the display labels the
// community conventions use.
var videoCodecLabels = map[string]string{
	"avc":  "H.264 (AVC)",
	"h264": "H.264 (AVC)",
	"hevc": "H.265 (HEVC)",
	"h265": "H.265 (HEVC)",
	"av1":  "AV1",
}

var audioCodecLabels = map[string]string{
	"ac-3":   "AC3",
	"ac3":    "AC3",
	"e-ac-3": "E-AC3",
	"eac3":   "E-AC3",
	"dts":    "DTS",
	"aac":    "AAC",
	"truehd": "TrueHD",
}

// Overrides carries explicit user intent from the command line. Any
// override present always wins over catalog and technical data.
type Overrides struct {
	Title     string
	Year      int
	Source    string
	Language  string
	CatalogID int64
}

// Input bundles the read-only sources the merger combines. Catalog,
// Guess and File may be nil.
type Input struct {
	Tech      *technical.Metadata
	Catalog   *catalog.Record
	Guess     *naming.Guess
	Overrides Overrides
	File      *fileops.Info
	MatchNote string
}

// Merge builds a fresh report model from the sources, applying the
// precedence overrides > catalog > technical/filename > NA per field.
// It never mutates its inputs and performs no I/O.
func Merge(in Input) *Model {
	m := &Model{}

	title, year := resolveTitleYear(in)
	m.Title = title
	if year > 0 {
		m.Title = title + " (" + strconv.Itoa(year) + ")"
	}
	m.Summary = buildSummary(in)

	if in.Catalog != nil {
		m.Sections = append(m.Sections, movieSection(in, year))
	}
	m.Sections = append(m.Sections, generalSection(in))
	m.Sections = append(m.Sections, videoSections(in.Tech)...)
	m.Sections = append(m.Sections, audioSections(in.Tech)...)
	m.Sections = append(m.Sections, subtitleSections(in.Tech)...)
	if in.File != nil {
		m.Sections = append(m.Sections, fileSection(in))
	}

	return m
}

// buildSummary composes the compact release line shown under the title:
// source, quality label, video codec and one "LANG CODEC CH" part per
// audio track.
func buildSummary(in Input) string {
	source := in.Overrides.Source
	if source == "" && in.Guess != nil {
		source = in.Guess.Source
	}
	if source == "" {
		source = NA
	}

	resolution := NA
	video := NA
	if in.Tech != nil && len(in.Tech.Video) > 0 {
		track := in.Tech.Video[0]
		if q := naming.QualityLabel(track.Width, track.Height); q != "" {
			resolution = q
		}
		video = codecLabel(track.Codec, videoCodecLabels)
	}

	audio := NA
	if in.Tech != nil && len(in.Tech.Audio) > 0 {
		parts := make([]string, 0, len(in.Tech.Audio))
		for _, track := range in.Tech.Audio {
			part := languageLabel(track.Language) + " " + codecLabel(track.Codec, audioCodecLabels)
			if track.Channels != nil {
				part += " " + FormatValue(KindChannels, *track.Channels)
			}
			parts = append(parts, part)
		}
		audio = strings.Join(parts, " + ")
	}

	return "Source: " + source + "  |  Resolution: " + resolution +
		"  |  Video: " + video + "  |  Audio: " + audio
}

// resolveTitleYear applies the title/year precedence chain.
func resolveTitleYear(in Input) (string, int) {
	title := in.Overrides.Title
	if title == "" && in.Catalog != nil {
		title = in.Catalog.Title
	}
	if title == "" && in.Guess != nil {
		title = in.Guess.Title
	}
	if title == "" && in.Tech != nil {
		title = in.Tech.General.Filename
	}
	if title == "" {
		title = NA
	}

	year := in.Overrides.Year
	if year == 0 && in.Catalog != nil {
		year = in.Catalog.Year
	}
	if year == 0 && in.Guess != nil {
		year = in.Guess.Year
	}
	return title, year
}

func movieSection(in Input, year int) Section {
	rec := in.Catalog
	sec := Section{Name: "MOVIE"}
	add := func(label, value string) {
		sec.Lines = append(sec.Lines, newLine(label, value))
	}

	add("Title", rec.Title)
	add("Original Title", rec.OriginalTitle)
	add("Year", FormatValue(KindNumber, nonZero(year)))
	add("Runtime", FormatValue(KindMinutes, nonZero(rec.RuntimeMin)))
	add("Genres", strings.Join(rec.Genres, ", "))
	appendOptional(&sec, "Countries", strings.Join(rec.Countries, ", "))
	add("Language", firstNonEmpty(in.Overrides.Language, rec.Language))
	add("Overview", rec.Overview)
	appendOptional(&sec, "Catalog URL", rec.CatalogURL)
	appendOptional(&sec, "IMDb URL", rec.IMDbURL)
	appendOptional(&sec, "Match", in.MatchNote)
	return sec
}

func generalSection(in Input) Section {
	sec := Section{Name: "GENERAL"}
	if in.Tech == nil {
		return sec
	}
	gen := in.Tech.General

	sec.Lines = append(sec.Lines,
		newLine("Filename", gen.Filename),
		newLine("Format", FormatValue(KindText, deref(gen.Format))),
		newLine("File Size", FormatValue(KindSize, deref(gen.SizeBytes))),
		newLine("Duration", FormatValue(KindDuration, deref(gen.DurationSec))),
		newLine("Overall Bitrate", FormatValue(KindBitrate, deref(gen.OverallBitrate))),
	)

	source := in.Overrides.Source
	if source == "" && in.Guess != nil {
		source = in.Guess.Source
	}
	sec.Lines = append(sec.Lines, newLine("Source", source))

	appendOptional(&sec, "Encoded Date", strDeref(gen.EncodedDate))
	appendOptional(&sec, "Writing Application", strDeref(gen.WritingApp))
	appendOptional(&sec, "Writing Library", strDeref(gen.WritingLibrary))
	return sec
}

func videoSections(tech *technical.Metadata) []Section {
	if tech == nil {
		return nil
	}
	sections := make([]Section, 0, len(tech.Video))
	for i, track := range tech.Video {
		name := "VIDEO"
		if len(tech.Video) > 1 {
			name = "VIDEO #" + strconv.Itoa(i+1)
		}
		sec := Section{Name: name}
		sec.Lines = append(sec.Lines,
			newLine("Format", codecLabel(track.Codec, videoCodecLabels)),
			newLine("Profile", FormatValue(KindText, deref(track.Profile))),
			newLine("Width", FormatValue(KindPixels, deref(track.Width))),
			newLine("Height", FormatValue(KindPixels, deref(track.Height))),
			newLine("Frame Rate", FormatValue(KindFrameRate, deref(track.FrameRate))),
			newLine("Aspect Ratio", FormatValue(KindText, deref(track.AspectRatio))),
			newLine("Bitrate", FormatValue(KindBitrate, deref(track.BitrateBps))),
			newLine("Bit Depth", FormatValue(KindBits, deref(track.BitDepth))),
			newLine("Color Primaries", FormatValue(KindText, deref(track.ColorPrimaries))),
			newLine("HDR Format", FormatValue(KindText, deref(track.HDRFormat))),
		)
		appendOptional(&sec, "Scan Type", strDeref(track.ScanType))
		sections = append(sections, sec)
	}
	return sections
}

func audioSections(tech *technical.Metadata) []Section {
	if tech == nil {
		return nil
	}
	sections := make([]Section, 0, len(tech.Audio))
	for i, track := range tech.Audio {
		sec := Section{Name: "AUDIO #" + strconv.Itoa(i+1)}
		sec.Lines = append(sec.Lines,
			newLine("Format", codecLabel(track.Codec, audioCodecLabels)),
			newLine("Title", FormatValue(KindText, deref(track.Title))),
			newLine("Language", languageLabel(track.Language)),
			newLine("Channels", FormatValue(KindChannels, deref(track.Channels))),
			newLine("Bitrate", FormatValue(KindBitrate, deref(track.BitrateBps))),
			newLine("Sample Rate", FormatValue(KindSampleRate, deref(track.SampleRateHz))),
		)
		appendOptional(&sec, "Channel Layout", strDeref(track.ChannelLayout))
		if track.Default != nil {
			sec.Lines = append(sec.Lines, newLine("Default", FormatValue(KindBool, *track.Default)))
		}
		if track.Forced != nil {
			sec.Lines = append(sec.Lines, newLine("Forced", FormatValue(KindBool, *track.Forced)))
		}
		sections = append(sections, sec)
	}
	return sections
}

func subtitleSections(tech *technical.Metadata) []Section {
	if tech == nil {
		return nil
	}
	sections := make([]Section, 0, len(tech.Subtitle))
	for i, track := range tech.Subtitle {
		sec := Section{Name: "SUBTITLE #" + strconv.Itoa(i+1)}
		sec.Lines = append(sec.Lines,
			newLine("Format", FormatValue(KindText, deref(track.Format))),
			newLine("Title", FormatValue(KindText, deref(track.Title))),
			newLine("Language", languageLabel(track.Language)),
			newLine("Forced", FormatValue(KindBool, deref(track.Forced))),
		)
		if track.Default != nil {
			sec.Lines = append(sec.Lines, newLine("Default", FormatValue(KindBool, *track.Default)))
		}
		sections = append(sections, sec)
	}
	return sections
}

func fileSection(in Input) Section {
	sec := Section{Name: "FILE"}
	sec.Lines = append(sec.Lines, newLine("Size", FormatValue(KindSize, in.File.SizeBytes)))
	if in.Tech != nil && in.Tech.General.DurationSec != nil {
		sec.Lines = append(sec.Lines, newLine("Duration", FormatValue(KindDuration, *in.Tech.General.DurationSec)))
	}
	sec.Lines = append(sec.Lines, newLine("Hash", in.File.HashAlgo+" "+in.File.Hash))
	return sec
}

// newLine builds a present line, defaulting an empty value to NA.
func newLine(label, value string) Line {
	value = strings.TrimSpace(value)
	if value == "" {
		value = NA
	}
	return Line{Label: label, Value: value, Present: true}
}

// appendOptional adds a line only when the value exists; supplemental
// fields are omitted rather than shown as NA.
func appendOptional(sec *Section, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	sec.Lines = append(sec.Lines, newLine(label, value))
}

func codecLabel(codec *string, labels map[string]string) string {
	if codec == nil || *codec == "" {
		return NA
	}
	if label, ok := labels[strings.ToLower(strings.TrimSpace(*codec))]; ok {
		return label
	}
	return *codec
}

func languageLabel(lang *string) string {
	if lang == nil || *lang == "" {
		return NA
	}
	return naming.LanguageTag(*lang)
}

// deref unwraps an optional pointer into an interface value for the
// formatter, keeping nil as nil.
func deref[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func strDeref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func nonZero(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
