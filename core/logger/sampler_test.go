package logger

import (
	"testing"
	"time"
)

func TestRatioSamplerAllowsConfiguredShare(t *testing.T) {
	s := newRatioSampler(2, 5)
	allowed := 0
	for i := 0; i < 50; i++ {
		if s.Allow() {
			allowed++
		}
	}
	if allowed != 20 {
		t.Fatalf("allowed = %d, want 20", allowed)
	}
}

func TestRatioSamplerDisabled(t *testing.T) {
	s := newRatioSampler(0, 0)
	for i := 0; i < 10; i++ {
		if !s.Allow() {
			t.Fatalf("call %d rejected by disabled sampler", i)
		}
	}
}

func TestParseRatioSpec(t *testing.T) {
	cases := map[string][2]int{
		"1/10": {1, 10},
		" 3 ":  {1, 3},
		"0":    {0, 0},
		"x/y":  {0, 0},
		"":     {0, 0},
	}
	for spec, want := range cases {
		num, den := parseRatioSpec(spec)
		if num != want[0] || den != want[1] {
			t.Errorf("parseRatioSpec(%q) = %d/%d, want %d/%d", spec, num, den, want[0], want[1])
		}
	}
}

func TestSummarizeStrings(t *testing.T) {
	preview, truncated := SummarizeStrings([]string{"a", "b", "c"}, 2)
	if preview != "a, b" || !truncated {
		t.Fatalf("got %q %v", preview, truncated)
	}
	preview, truncated = SummarizeStrings([]string{"a"}, 2)
	if preview != "a" || truncated {
		t.Fatalf("got %q %v", preview, truncated)
	}
	if _, truncated = SummarizeStrings([]string{"a"}, 0); !truncated {
		t.Fatal("zero limit with values must report truncation")
	}
}

func TestRoundMS(t *testing.T) {
	if got := RoundMS(1499 * time.Microsecond); got != time.Millisecond {
		t.Fatalf("got %v", got)
	}
	if got := RoundMS(-time.Second); got != 0 {
		t.Fatalf("got %v", got)
	}
}
