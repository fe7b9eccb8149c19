package report

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FieldKind selects the unit formatting for a logical field. Keeping the
// dispatch in one table keeps the alignment and suffix rules in one
// place instead of scattered per-field conditionals.
type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
	KindSize
	KindDuration
	KindMinutes
	KindBitrate
	KindSampleRate
	KindPixels
	KindBits
	KindFrameRate
	KindChannels
	KindBool
)

// printer groups digits for large numeric values. Fixed at construction
// so rendering stays byte-deterministic.
var printer = message.NewPrinter(language.English)

var formatters = map[FieldKind]func(v interface{}) string{
	KindText: func(v interface{}) string {
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	},
	KindNumber: func(v interface{}) string {
		return strconv.FormatInt(toInt64(v), 10)
	},
	KindSize: func(v interface{}) string {
		bytes := toInt64(v)
		if bytes >= 1<<30 {
			return fmt.Sprintf("%.2f GiB", float64(bytes)/float64(1<<30))
		}
		return fmt.Sprintf("%.2f MiB", float64(bytes)/float64(1<<20))
	},
	KindDuration: func(v interface{}) string {
		total := int64(toFloat64(v) + 0.5)
		hours := total / 3600
		minutes := (total % 3600) / 60
		seconds := total % 60
		switch {
		case hours > 0:
			return fmt.Sprintf("%d h %d min", hours, minutes)
		case minutes > 0:
			return fmt.Sprintf("%d min", minutes)
		default:
			return fmt.Sprintf("%d s", seconds)
		}
	},
	KindMinutes: func(v interface{}) string {
		return strconv.FormatInt(toInt64(v), 10) + " min"
	},
	KindBitrate: func(v interface{}) string {
		kbps := int64(float64(toInt64(v))/1000.0 + 0.5)
		return printer.Sprintf("%d kb/s", kbps)
	},
	KindSampleRate: func(v interface{}) string {
		return fmt.Sprintf("%.1f kHz", float64(toInt64(v))/1000.0)
	},
	KindPixels: func(v interface{}) string {
		return printer.Sprintf("%d pixels", toInt64(v))
	},
	KindBits: func(v interface{}) string {
		return strconv.FormatInt(toInt64(v), 10) + " bits"
	},
	KindFrameRate: func(v interface{}) string {
		return fmt.Sprintf("%.3f FPS", toFloat64(v))
	},
	KindChannels: func(v interface{}) string {
		switch toInt64(v) {
		case 1:
			return "1.0"
		case 2:
			return "2.0"
		case 6:
			return "5.1"
		case 8:
			return "7.1"
		default:
			return strconv.FormatInt(toInt64(v), 10)
		}
	},
	KindBool: func(v interface{}) string {
		if b, ok := v.(bool); ok && b {
			return "Yes"
		}
		return "No"
	},
}

// FormatValue formats a raw value per the field kind. A nil value (or an
// empty text value) yields the NA placeholder.
func FormatValue(kind FieldKind, v interface{}) string {
	if v == nil {
		return NA
	}
	fn, ok := formatters[kind]
	if !ok {
		fn = formatters[KindText]
	}
	out := fn(v)
	if out == "" {
		return NA
	}
	return out
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	default:
		return 0
	}
}

func toFloat64(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	default:
		return 0
	}
}
