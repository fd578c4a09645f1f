package attribution

import (
	"testing"
	"time"
)

func TestAbsDuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   time.Duration
		want time.Duration
	}{
		{5 * time.Minute, 5 * time.Minute},
		{-5 * time.Minute, 5 * time.Minute},
		{0, 0},
	}
	for _, c := range cases {
		if got := absDuration(c.in); got != c.want {
			t.Errorf("absDuration(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestConfidenceTiers_Distinct(t *testing.T) {
	t.Parallel()

	if ConfidenceHigh == ConfidenceMedium || ConfidenceMedium == ConfidenceLow {
		t.Fatalf("confidence tiers must be distinct values")
	}
}

func TestBuildEvidence_OneSentencePerCondition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                                                 string
		hasEngagers, hasOwnInterval, spansMultipleIntervals bool
		want                                                 []string
	}{
		{"none", false, false, false, []string{"Interval-based correlation"}},
		{"engagers only", true, false, false, []string{"Direct engagement within attribution window"}},
		{"own interval only", false, true, false, []string{"New followers in same interval as post"}},
		{"lookback span only", false, false, true, []string{"Followed within lookback window"}},
		{
			"all conditions", true, true, true,
			[]string{
				"Direct engagement within attribution window",
				"New followers in same interval as post",
				"Followed within lookback window",
			},
		},
	}
	for _, c := range cases {
		got := buildEvidence(c.hasEngagers, c.hasOwnInterval, c.spansMultipleIntervals)
		if len(got) != len(c.want) {
			t.Fatalf("%s: buildEvidence = %v, want %v", c.name, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%s: buildEvidence = %v, want %v", c.name, got, c.want)
			}
		}
	}
}
