package technical

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	digitsRe   = regexp.MustCompile(`\d+`)
	sizeRe     = regexp.MustCompile(`(?i)([0-9.]+)\s*([KMGTP]?i?B)\b`)
	rateRe     = regexp.MustCompile(`(?i)([0-9][0-9 ,.]*)\s*([kmg]?)b/s`)
	clockRe    = regexp.MustCompile(`^(\d+):(\d{1,2})(?::(\d{1,2}))?(?:\.\d+)?$`)
	hmsPartsRe = map[string]*regexp.Regexp{
		"h":   regexp.MustCompile(`(?i)(\d+)\s*h`),
		"min": regexp.MustCompile(`(?i)(\d+)\s*min`),
		"s":   regexp.MustCompile(`(?i)(\d+)\s*s`),
	}
)

// asString renders a raw JSON tree value as a string. mediainfo reports
// everything as strings while ffprobe mixes strings and numbers.
func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", t)
	}
}

// firstValue returns the first non-empty value for the given keys.
func firstValue(track map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if raw, ok := track[key]; ok {
			if s := strings.TrimSpace(asString(raw)); s != "" {
				return s
			}
		}
	}
	return ""
}

// strPtr returns a pointer to s, or nil when s is empty.
func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(n int64) *int64       { return &n }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

// parseInt extracts an integer from a raw value, joining digit runs so
// thousands separators ("3 500", "3,500") collapse into one number.
func parseInt(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return intPtr(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return intPtr(int64(f))
	}
	digits := digitsRe.FindAllString(s, -1)
	if len(digits) == 0 {
		return nil
	}
	n, err := strconv.ParseInt(strings.Join(digits, ""), 10, 64)
	if err != nil {
		return nil
	}
	return intPtr(n)
}

// parseFloat extracts a float, tolerating a decimal comma.
func parseFloat(s string) *float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return floatPtr(f)
}

// parseRational converts "24000/1001" style rationals (or plain numbers)
// to a float.
func parseRational(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if num, den, found := strings.Cut(s, "/"); found {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || d == 0 {
			return nil
		}
		return floatPtr(n / d)
	}
	return parseFloat(s)
}

// parseBytes converts a size to bytes from either a raw count or a
// formatted string such as "3.07 GiB".
func parseBytes(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return intPtr(n)
	}
	m := sizeRe.FindStringSubmatch(s)
	if m == nil {
		return parseInt(s)
	}
	number, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	factor := float64(1)
	switch strings.ToLower(m[2]) {
	case "kb", "kib":
		factor = 1 << 10
	case "mb", "mib":
		factor = 1 << 20
	case "gb", "gib":
		factor = 1 << 30
	case "tb", "tib":
		factor = 1 << 40
	case "pb", "pib":
		factor = 1 << 50
	}
	return intPtr(int64(number * factor))
}

// parseBitrate normalizes a bitrate to integer bits per second. Raw
// integers are already b/s; formatted strings carry thousands separators
// and a unit suffix ("3 118 kb/s", "15.2 Mb/s").
func parseBitrate(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return intPtr(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return intPtr(int64(f))
	}
	m := rateRe.FindStringSubmatch(s)
	if m == nil {
		return parseInt(s)
	}
	numText := strings.Map(func(r rune) rune {
		if r == ' ' || r == ',' {
			return -1
		}
		return r
	}, m[1])
	number, err := strconv.ParseFloat(numText, 64)
	if err != nil {
		return nil
	}
	switch strings.ToLower(m[2]) {
	case "k":
		number *= 1e3
	case "m":
		number *= 1e6
	case "g":
		number *= 1e9
	}
	return intPtr(int64(number))
}

// parseDuration normalizes a duration to seconds. Accepted shapes:
// float seconds ("5084.352"), integer milliseconds ("7440000"),
// "HH:MM:SS(.mmm)" clocks and "1 h 56 min" phrases. Bare integral
// numbers above 30000 are assumed to be milliseconds; fractional
// values are always seconds.
func parseDuration(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if m := clockRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.ParseFloat(m[1], 64)
		mi, _ := strconv.ParseFloat(m[2], 64)
		if m[3] != "" {
			sec, _ := strconv.ParseFloat(m[3], 64)
			return floatPtr(h*3600 + mi*60 + sec)
		}
		// MM:SS without hours
		return floatPtr(h*60 + mi)
	}

	var total float64
	matched := false
	for unit, re := range hmsPartsRe {
		if m := re.FindStringSubmatch(s); m != nil {
			n, _ := strconv.ParseFloat(m[1], 64)
			switch unit {
			case "h":
				total += n * 3600
			case "min":
				total += n * 60
			case "s":
				total += n
			}
			matched = true
		}
	}
	if matched {
		return floatPtr(total)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if f > 30000 && f == float64(int64(f)) {
		return floatPtr(f / 1000.0)
	}
	return floatPtr(f)
}

// parseBool interprets the yes/no flavored flags both tools emit.
func parseBool(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return boolPtr(true)
	case "no", "false", "0":
		return boolPtr(false)
	default:
		return nil
	}
}
