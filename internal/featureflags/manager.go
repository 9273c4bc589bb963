// Package featureflags evaluates FEATURE_FLAGS: switches for the ingest
// worker, the keyword feed, random picks and individual listing categories.
package featureflags

import (
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

const (
	// IngestConsumer runs the NATS ingest consumer inside the API process.
	IngestConsumer = "ingest_consumer"
	// KeywordFeed serves GET /api/crawling/:path/mine.
	KeywordFeed = "keyword_feed"
	// RandomPick serves GET /api/crawling/random.
	RandomPick = "random_pick"

	categoryPrefix = "category."
)

// defaults apply to switches missing from the configuration. Category switches
// are on unless configured.
var defaults = map[string]bool{
	IngestConsumer: true,
	KeywordFeed:    true,
	RandomPick:     true,
}

// Category names the switch of one listing category, e.g. "category.qnet".
func Category(category string) string {
	return categoryPrefix + normalize(category)
}

type mode uint8

const (
	modeOff mode = iota
	modeOn
	modeRollout
)

// rule is a parsed flag value. percent is only meaningful for modeRollout.
type rule struct {
	mode    mode
	percent uint32
}

// Manager holds the parsed flag rules. A nil Manager answers with defaults.
type Manager struct {
	rules map[string]rule
}

// NewManager parses "name=value" pairs separated by commas. Values are on/off
// (true/false, 1/0) or a rollout percentage such as "25%". Malformed pairs are
// dropped.
//
//	ingest_consumer=off,keyword_feed=25%,category.qnet=off
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name = normalize(name)
		if name == "" {
			continue
		}
		if r, ok := parseRule(normalize(value)); ok {
			rules[name] = r
		}
	}
	return &Manager{rules: rules}
}

func parseRule(v string) (rule, bool) {
	switch v {
	case "on", "true", "1":
		return rule{mode: modeOn}, true
	case "off", "false", "0":
		return rule{mode: modeOff}, true
	}
	pct, ok := strings.CutSuffix(v, "%")
	if !ok {
		return rule{}, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(pct))
	switch {
	case err != nil:
		return rule{}, false
	case n <= 0:
		return rule{mode: modeOff}, true
	case n >= 100:
		return rule{mode: modeOn}, true
	}
	return rule{mode: modeRollout, percent: uint32(n)}, true
}

// Enabled evaluates a flag for a user. Rollouts never include the anonymous
// user (ID 0).
func (m *Manager) Enabled(name string, userID uint) bool {
	name = normalize(name)
	var r rule
	var ok bool
	if m != nil {
		r, ok = m.rules[name]
	}
	if !ok {
		return defaultFor(name)
	}

	switch r.mode {
	case modeOn:
		return true
	case modeRollout:
		return userID != 0 && bucket(name, userID) < r.percent
	}
	return false
}

// CategoryEnabled reports whether listings of category are served to the user.
func (m *Manager) CategoryEnabled(category string, userID uint) bool {
	return m.Enabled(Category(category), userID)
}

// Snapshot evaluates the built-in switches and every configured flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	if m != nil {
		for name := range m.rules {
			if _, builtin := defaults[name]; !builtin {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)

	out := make(map[string]bool, len(names))
	for _, name := range names {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func defaultFor(name string) bool {
	if strings.HasPrefix(name, categoryPrefix) {
		return true
	}
	return defaults[name]
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// bucket places a user in [0,100) for a flag; the same pair always lands in
// the same bucket.
func bucket(name string, userID uint) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write(strconv.AppendUint(nil, uint64(userID), 10))
	return h.Sum32() % 100
}
