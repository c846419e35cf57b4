package risk

import (
	"strings"
)

// KeywordSet selects which keyword tables the classifier and scorer use.
type KeywordSet int

const (
	// Basic uses the original minimal tables: error and latency only.
	Basic KeywordSet = iota
	// Enhanced widens the keyword lists and adds memory and cpu
	// categories plus finer-grained score tiers.
	Enhanced
)

func (ks KeywordSet) String() string {
	if ks == Basic {
		return "basic"
	}
	return "enhanced"
}

// ParseKeywordSet maps a config value to a keyword set, defaulting to
// Enhanced for anything unrecognized.
func ParseKeywordSet(s string) KeywordSet {
	if strings.EqualFold(strings.TrimSpace(s), "basic") {
		return Basic
	}
	return Enhanced
}

type Category string

const (
	CategoryError   Category = "error"
	CategoryLatency Category = "latency"
	CategoryMemory  Category = "memory"
	CategoryCPU     Category = "cpu"
)

var basicKeywords = map[Category][]string{
	CategoryError:   {"error", "exception", "failed", "failure", "crash", "timeout", "fatal"},
	CategoryLatency: {"slow", "timeout", "latency", "delay"},
}

var enhancedKeywords = map[Category][]string{
	CategoryError:   {"error", "exception", "failed", "failure", "crash", "timeout", "fatal", "critical", "panic", "out of memory"},
	CategoryLatency: {"slow", "timeout", "latency", "delay", "waiting", "stuck"},
	CategoryMemory:  {"out of memory", "oom", "memory pressure", "heap", "gc"},
	CategoryCPU:     {"cpu overload", "high cpu", "cpu spike", "throttling"},
}

func (ks KeywordSet) tables() map[Category][]string {
	if ks == Basic {
		return basicKeywords
	}
	return enhancedKeywords
}

// Classify reports which categories a log line belongs to. Matching is
// case-insensitive substring containment, not word-boundary matching,
// so "failed" also matches "failedover". A line can hit several
// categories at once ("timeout" is both an error and a latency hit).
func Classify(line string, set KeywordSet) map[Category]bool {
	lower := strings.ToLower(line)
	hits := make(map[Category]bool)
	for category, keywords := range set.tables() {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				hits[category] = true
				break
			}
		}
	}
	return hits
}
