package locale

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Direction is the text direction of a locale.
type Direction int

const (
	LeftToRight Direction = iota
	RightToLeft
)

// String returns the conventional short form ("ltr" or "rtl").
func (d Direction) String() string {
	if d == RightToLeft {
		return "rtl"
	}
	return "ltr"
}

// rtlLanguages are language codes that default to right-to-left unless
// the locale data explicitly declares a text_direction.
var rtlLanguages = map[string]bool{
	"ar": true,
	"he": true,
	"fa": true,
	"ur": true,
}

// Data holds the translation table and formatting metadata for a single
// locale. It is immutable once loaded and safe for concurrent use.
type Data struct {
	locale    string
	strings   map[string]any
	direction Direction
}

// Locale returns the locale identifier this data was loaded for.
func (d *Data) Locale() string {
	return d.locale
}

// Direction returns the text direction for this locale.
func (d *Data) Direction() Direction {
	return d.direction
}

// GetString looks up a translation by key. Dotted keys traverse nested
// mappings segment by segment ("system.title").
func (d *Data) GetString(key string) (string, bool) {
	v, ok := d.lookup(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Interpolate looks up a translation and substitutes each supplied
// parameter into {name}-style placeholders, applying parameters in
// sorted name order. Placeholders without a matching parameter are
// left as-is.
func (d *Data) Interpolate(key string, params map[string]any) (string, error) {
	tmpl, ok := d.GetString(key)
	if !ok {
		return "", &KeyNotFoundError{Key: key, Locale: d.locale}
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	result := tmpl
	for _, name := range names {
		placeholder := "{" + name + "}"
		result = strings.ReplaceAll(result, placeholder, paramString(params[name]))
	}
	return result, nil
}

// FormatNumber formats a number with this locale's grouping and decimal
// separators at two fractional digits.
func (d *Data) FormatNumber(f float64) string {
	p := message.NewPrinter(d.tag())
	return p.Sprint(number.Decimal(f,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2)))
}

// FormatPercentage formats a ratio (0.75 -> "75%") using this locale's
// number conventions, dropping trailing zero decimals.
func (d *Data) FormatPercentage(f float64) string {
	s := d.FormatNumber(f * 100)
	// FormatNumber emits exactly two fraction digits, so trailing zeros
	// can only be trimmed within that suffix.
	if len(s) >= 3 && (s[len(s)-3] == '.' || s[len(s)-3] == ',') {
		switch {
		case strings.HasSuffix(s, "00"):
			s = s[:len(s)-3]
		case strings.HasSuffix(s, "0"):
			s = s[:len(s)-1]
		}
	}
	return s + "%"
}

func (d *Data) tag() language.Tag {
	tag, err := language.Parse(d.locale)
	if err != nil {
		return language.English
	}
	return tag
}

func (d *Data) lookup(key string) (any, bool) {
	segments := strings.Split(key, ".")
	var current any = d.strings
	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func paramString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

func directionFor(locale string, table map[string]any) Direction {
	if v, ok := table["text_direction"]; ok {
		switch v {
		case "rtl":
			return RightToLeft
		case "ltr":
			return LeftToRight
		}
	}
	lang, _, _ := strings.Cut(locale, "-")
	if rtlLanguages[lang] {
		return RightToLeft
	}
	return LeftToRight
}
