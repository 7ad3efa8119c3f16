package textutil

import (
	"math"
	"testing"
)

func TestSequenceRatioIdentical(t *testing.T) {
	if got := SequenceRatio("sidhu moosewala", "sidhu moosewala"); got != 1.0 {
		t.Errorf("SequenceRatio(identical) = %v, want 1.0", got)
	}
}

func TestSequenceRatioDisjoint(t *testing.T) {
	if got := SequenceRatio("abc", "xyz"); got != 0 {
		t.Errorf("SequenceRatio(disjoint) = %v, want 0", got)
	}
}

func TestSequenceRatioEmpty(t *testing.T) {
	if got := SequenceRatio("", "anything"); got != 0 {
		t.Errorf("SequenceRatio(empty, non-empty) = %v, want 0", got)
	}
	if got := SequenceRatio("", ""); got != 1.0 {
		t.Errorf("SequenceRatio(empty, empty) = %v, want 1.0", got)
	}
}

func TestSequenceRatioExactBoundary(t *testing.T) {
	// Nine matching characters over a combined length of twenty is exactly 0.9.
	got := SequenceRatio("abcdefghij", "abcdefghix")
	if got != 0.9 {
		t.Errorf("SequenceRatio(boundary) = %v, want 0.9", got)
	}
}

func TestSequenceRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"bollywood romantic", "romantic bollywood"},
		{"sidhu moosewala 295", "moosewala 295"},
		{"abcdefghij", "abcdefghix"},
	}
	for _, pair := range pairs {
		forward := SequenceRatio(pair[0], pair[1])
		backward := SequenceRatio(pair[1], pair[0])
		if math.Abs(forward-backward) > 1e-12 {
			t.Errorf("SequenceRatio(%q, %q) = %v, reversed %v", pair[0], pair[1], forward, backward)
		}
	}
}

func TestSequenceRatioCountsAllMatchingBlocks(t *testing.T) {
	// "abxcd" vs "abcd": blocks "ab" and "cd" both count, so 2*4/9.
	got := SequenceRatio("abxcd", "abcd")
	want := 2.0 * 4.0 / 9.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("SequenceRatio(multi-block) = %v, want %v", got, want)
	}
}

func TestExtractExternalID(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
		ok    bool
	}{
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch url with extra params", "https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"free text", "sidhu moosewala 295", "", false},
		{"too short", "abc123", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractExternalID(tt.query)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ExtractExternalID(%q) = (%q, %v), want (%q, %v)", tt.query, got, ok, tt.want, tt.ok)
			}
		})
	}
}
