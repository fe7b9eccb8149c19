package naming

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/clembu/nfogen/pkg/core/technical"
)

// BuildReleaseName proposes a conventional release filename:
// Title.Year.LANG.RESOLUTION.SOURCE.CODEC-GROUP.ext
// Missing pieces fall back to uppercase placeholders so the user can
// spot them before confirming a rename.
func BuildReleaseName(videoPath, title string, year int, tech *technical.Metadata, source, group string) string {
	base := title
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	}
	titleSlug := slugifyReleaseTitle(base)

	yearTag := "YEAR"
	if year > 0 {
		yearTag = strconv.Itoa(year)
	}

	lang := "LANG"
	resolution := "RESOLUTION"
	codec := "VIDEO"
	if tech != nil {
		if tag := audioLanguageTag(tech.Audio); tag != "" {
			lang = tag
		}
		if len(tech.Video) > 0 {
			if q := QualityLabel(tech.Video[0].Width, tech.Video[0].Height); q != "" {
				resolution = q
			}
			codec = videoCodecTag(tech.Video[0].Codec)
		}
	}

	sourceTag := "SOURCE"
	if source != "" {
		sourceTag = strings.ToUpper(source)
	}
	if group == "" {
		group = "NOGRP"
	}

	ext := filepath.Ext(videoPath)
	return titleSlug + "." + yearTag + "." + lang + "." + resolution + "." + sourceTag + "." + codec + "-" + group + ext
}

// audioLanguageTag summarizes the audio languages: one tag for a single
// language, MULTi when several distinct languages are present.
func audioLanguageTag(audios []technical.AudioTrack) string {
	var langs []string
	for _, audio := range audios {
		if audio.Language == nil {
			continue
		}
		tag := LanguageTag(*audio.Language)
		if tag == "" {
			continue
		}
		seen := false
		for _, l := range langs {
			if l == tag {
				seen = true
				break
			}
		}
		if !seen {
			langs = append(langs, tag)
		}
	}
	switch {
	case len(langs) == 0:
		return ""
	case len(langs) > 1:
		return "MULTi"
	default:
		return langs[0]
	}
}

// videoCodecTag maps a probe codec name to the short release tag.
func videoCodecTag(codec *string) string {
	if codec == nil {
		return "VIDEO"
	}
	switch strings.ToLower(*codec) {
	case "hevc", "h265", "h.265":
		return "H265"
	case "avc", "h264", "h.264":
		return "H264"
	case "av1":
		return "AV1"
	default:
		tag := strings.ToUpper(strings.ReplaceAll(*codec, " ", ""))
		if tag == "" {
			return "VIDEO"
		}
		return tag
	}
}

// slugifyReleaseTitle keeps ASCII alphanumerics and joins everything
// else with single dots, scene style.
func slugifyReleaseTitle(value string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('.')
		}
	}
	slug := b.String()
	for strings.Contains(slug, "..") {
		slug = strings.ReplaceAll(slug, "..", ".")
	}
	return strings.Trim(slug, ".")
}
