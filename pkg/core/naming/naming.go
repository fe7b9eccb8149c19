// Package naming derives a title/year guess and release attributes from
// a video filename, and builds conventional release names for the
// interactive rename offer.
package naming

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	ptn "github.com/razsteinmetz/go-ptn"
	log "github.com/sirupsen/logrus"
)

// Guess is the filename-derived seed for the catalog lookup. It ranks
// below both CLI overrides and catalog data during the merge.
type Guess struct {
	Title      string
	Year       int
	Resolution string
	Source     string
	Group      string
	Raw        string
}

// sourceTokens maps release-name tokens to the canonical source tags the
// scene conventions use.
var sourceTokens = map[string]string{
	"bdrip":  "BDRIP",
	"brrip":  "BRRIP",
	"bluray": "BLURAY",
	"blu":    "BLURAY",
	"remux":  "REMUX",
	"dvdrip": "DVDRIP",
	"webrip": "WEBRIP",
	"webdl":  "WEBDL",
	"web":    "WEBDL",
	"hdrip":  "HDRIP",
	"hdtv":   "HDTV",
}

// langTokens normalizes common language codes to short display tags.
var langTokens = map[string]string{
	"fr": "FR", "fre": "FR", "fra": "FR", "french": "FR",
	"en": "EN", "eng": "EN", "english": "EN",
	"de": "DE", "ger": "DE", "deu": "DE", "german": "DE",
	"es": "ES", "spa": "ES", "spanish": "ES",
	"it": "IT", "ita": "IT", "italian": "IT",
	"ja": "JA", "jpn": "JA", "japanese": "JA",
	"zh": "ZH", "chi": "ZH", "zho": "ZH",
	"multi": "MULTI",
}

var tokenSplitRe = regexp.MustCompile(`[^a-z0-9]+`)

// ParseFilename extracts a best-effort guess from a release-style
// filename. go-ptn does the heavy lifting; a plain dot-to-space cleanup
// covers names it cannot parse.
func ParseFilename(filename string) Guess {
	base := filepath.Base(filename)
	guess := Guess{Raw: base, Source: DetectSource(base)}

	parsed, err := ptn.Parse(base)
	if err == nil && parsed.Title != "" {
		guess.Title = strings.TrimSpace(parsed.Title)
		guess.Year = parsed.Year
		guess.Resolution = parsed.Resolution
		guess.Group = parsed.Group
		return guess
	}

	if err != nil {
		log.Debugf("go-ptn could not parse %q: %v", base, err)
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.NewReplacer(".", " ", "_", " ").Replace(stem)
	guess.Title = strings.TrimSpace(stem)
	return guess
}

// DetectSource scans filename tokens for a known source tag.
func DetectSource(filename string) string {
	for _, token := range tokenSplitRe.Split(strings.ToLower(filename), -1) {
		if tag, ok := sourceTokens[token]; ok {
			return tag
		}
	}
	return ""
}

// LanguageTag normalizes a language code or name to a short display tag
// (FR, EN, ...). Unknown values are uppercased as-is.
func LanguageTag(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return ""
	}
	if tag, ok := langTokens[v]; ok {
		return tag
	}
	return strings.ToUpper(v)
}

// QualityLabel derives a 2160p/1080p/720p style label from frame
// dimensions. Either dimension may be nil.
func QualityLabel(width, height *int64) string {
	w := int64(0)
	h := int64(0)
	if width != nil {
		w = *width
	}
	if height != nil {
		h = *height
	}
	switch {
	case w == 0 && h == 0:
		return ""
	case h >= 2160 || w >= 3840:
		return "2160p"
	case h >= 1440 || w >= 2560:
		return "1440p"
	case h >= 1080 || w >= 1920:
		return "1080p"
	case h >= 720 || w >= 1280:
		return "720p"
	case h >= 576:
		return "576p"
	case h > 0:
		return strconv.FormatInt(h, 10) + "p"
	default:
		return strconv.FormatInt(w, 10) + "p"
	}
}
