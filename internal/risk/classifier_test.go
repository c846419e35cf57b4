package risk

import (
	"testing"
)

func TestParseKeywordSet(t *testing.T) {
	tests := []struct {
		input    string
		expected KeywordSet
	}{
		{"basic", Basic},
		{"BASIC", Basic},
		{"  basic  ", Basic},
		{"enhanced", Enhanced},
		{"", Enhanced},
		{"garbage", Enhanced},
	}

	for _, tt := range tests {
		if got := ParseKeywordSet(tt.input); got != tt.expected {
			t.Errorf("ParseKeywordSet(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	hits := Classify("ERROR: Database Connection Refused", Basic)
	if !hits[CategoryError] {
		t.Error("Expected uppercase ERROR to match the error category")
	}
}

func TestClassifyMultipleCategories(t *testing.T) {
	// "timeout" sits in both the error and latency keyword lists
	hits := Classify("request timeout after 30s", Basic)
	if !hits[CategoryError] {
		t.Error("Expected timeout line to match the error category")
	}
	if !hits[CategoryLatency] {
		t.Error("Expected timeout line to match the latency category")
	}
}

func TestClassifySubstringMatching(t *testing.T) {
	// Matching is substring containment, not word boundaries
	hits := Classify("node failedover to replica", Basic)
	if !hits[CategoryError] {
		t.Error("Expected 'failedover' to match via the 'failed' substring")
	}
}

func TestClassifyBasicHasNoMemoryOrCPU(t *testing.T) {
	line := "oom killer triggered, high cpu on worker-3"

	basicHits := Classify(line, Basic)
	if basicHits[CategoryMemory] || basicHits[CategoryCPU] {
		t.Error("Basic set should not classify memory or cpu categories")
	}

	enhancedHits := Classify(line, Enhanced)
	if !enhancedHits[CategoryMemory] {
		t.Error("Enhanced set should classify 'oom' as memory")
	}
	if !enhancedHits[CategoryCPU] {
		t.Error("Enhanced set should classify 'high cpu' as cpu")
	}
}

func TestClassifyCleanLine(t *testing.T) {
	hits := Classify("user logged in successfully", Enhanced)
	if len(hits) != 0 {
		t.Errorf("Expected no categories for a clean line, got %v", hits)
	}
}
