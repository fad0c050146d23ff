package timeutil

import "testing"

func TestSecondsToClock(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00"},
		{59.9, "00:00:59"},
		{90, "00:01:30"},
		{3661, "01:01:01"},
		{-5, "00:00:00"},
	}
	for _, tc := range cases {
		if got := SecondsToClock(tc.seconds); got != tc.want {
			t.Errorf("SecondsToClock(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestClockToSeconds(t *testing.T) {
	cases := []struct {
		clock string
		want  float64
	}{
		{"00:01:30", 90},
		{"01:30", 90},
		{"45", 45},
		{"01:01:01", 3661},
		{"garbage", 0},
	}
	for _, tc := range cases {
		if got := ClockToSeconds(tc.clock); got != tc.want {
			t.Errorf("ClockToSeconds(%q) = %v, want %v", tc.clock, got, tc.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []float64{0, 1, 61, 3599, 86399} {
		if got := ClockToSeconds(SecondsToClock(s)); got != s {
			t.Errorf("round trip %v -> %v", s, got)
		}
	}
}

func TestCompact(t *testing.T) {
	cases := []struct{ in, want string }{
		{"00:01:30", "01:30"},
		{"01:00:30", "01:30"},
		{"00:00:05", "05"},
	}
	for _, tc := range cases {
		if got := Compact(tc.in); got != tc.want {
			t.Errorf("Compact(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
