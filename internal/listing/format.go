package listing

import (
	"regexp"
	"strings"
	"time"
)

const (
	dayLayout     = "2006-01-02"
	displayLayout = "2006.01.02"
)

var periodLayouts = []string{
	"2006.01.02",
	"2006-01-02",
	"2006/01/02",
	"06.01.02",
	"2006.1.2",
	"2006. 1. 2",
	"2006. 01. 02",
}

// weekday suffixes such as "(월)" or "(Mon)", plus trailing time of day.
var periodNoise = regexp.MustCompile(`\s*\([^)]*\)|\s+\d{1,2}:\d{2}.*$`)

// SplitPeriod turns a recruiting period like "2024.03.01(금) ~ 2024.03.15(금)" into
// ["2024-03-01", "2024-03-15"]. Parts that do not parse as dates are kept as written.
func SplitPeriod(period string) []string {
	parts := strings.Split(period, "~")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(periodNoise.ReplaceAllString(strings.TrimSpace(p), ""))
		p = strings.TrimSuffix(p, ".")
		if p == "" {
			continue
		}
		out = append(out, normalizeDay(p))
	}
	return out
}

func normalizeDay(s string) string {
	for _, layout := range periodLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dayLayout)
		}
	}
	return s
}

// DateToString renders a stored date as "2006.01.02". Zero and unparseable values
// render as the empty string and the raw string respectively.
func DateToString(v any) string {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return ""
		}
		return d.Format(displayLayout)
	case *time.Time:
		if d == nil {
			return ""
		}
		return DateToString(*d)
	case string:
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			return t.Format(displayLayout)
		}
		if t, err := time.Parse(dayLayout, d); err == nil {
			return t.Format(displayLayout)
		}
		return d
	default:
		return ""
	}
}

// languageTitles is keyed by normalized exam code.
var languageTitles = map[string]string{
	"toeic":         "TOEIC",
	"toeicspeaking": "TOEIC Speaking",
	"toeicwriting":  "TOEIC Writing",
	"teps":          "TEPS",
	"tepsspeaking":  "TEPS Speaking",
	"opic":          "OPIc",
	"toefl":         "TOEFL",
	"ielts":         "IELTS",
	"gtelp":         "G-TELP",
	"flex":          "FLEX",
	"jpt":           "JPT",
	"jlpt":          "JLPT",
	"hsk":           "HSK",
}

// NormalizeTestCode is the stored form of a language exam code. Ingest and
// filtering both go through it.
func NormalizeTestCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// LanguageTitle maps an exam code to its display name. Unknown codes are returned unchanged.
func LanguageTitle(test string) string {
	if title, ok := languageTitles[NormalizeTestCode(test)]; ok {
		return title
	}
	return test
}
