package core

import "testing"

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"8h", "8.00", true},
		{"1h 30m", "1.50", true},
		{"1H 30M", "1.50", true},
		{" 2h  15m ", "2.25", true},
		{"45m", "0.75", true},
		{"90m", "1.50", true},
		{"1:30", "1.50", true},
		{"0:45", "0.75", true},
		{"26:30", "26.50", true},
		{"1.5", "1.50", true},
		{"1,5", "1.50", true},
		{"12", "12.00", true},
		{"12.505", "12.51", true}, // half-up rounding
		{"", "", false},
		{"   ", "", false},
		{"abc", "", false},
		{"1:75", "", false},
		{"-2", "", false},
		{"1.2.3", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDuration(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error, got %q", tc.in, got)
			}
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"12.5", "12h 30m"},
		{"8.00", "8h 0m"},
		{"0.75", "0h 45m"},
		{"1.33", "1h 20m"},
		{"-1", "0h 0m"},
		{"garbage", "0h 0m"},
		{"", "0h 0m"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.in); got != tc.out {
			t.Fatalf("%q expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestFormatDurationNormalizationIsIdempotent(t *testing.T) {
	// Formatting loses sub-minute precision, so one normalization pass must
	// be a fixed point rather than an exact round trip.
	for _, d := range []string{"0.01", "1.33", "7.99", "12.50", "23.97"} {
		formatted := FormatDuration(d)
		reparsed, err := ParseDuration(formatted)
		if err != nil {
			t.Fatalf("reparse %q: %v", formatted, err)
		}
		if FormatDuration(reparsed) != formatted {
			t.Fatalf("%q: %q did not survive a normalization pass (got %q)",
				d, formatted, FormatDuration(reparsed))
		}
	}
}

func TestDurationBetween(t *testing.T) {
	cases := []struct {
		in, out string
		want    string
		ok      bool
	}{
		{"09:00", "17:00", "8.00", true},
		{"22:00", "06:00", "8.00", true}, // overnight wrap
		{"9:00", "9:30", "0.50", true},
		{"10:00", "10:00", "24.00", true}, // equal times wrap a full day
		{"23:30", "00:15", "0.75", true},
		{"", "17:00", "", false},
		{"09:00", "", "", false},
		{"9am", "5pm", "", false},
		{"25:00", "17:00", "", false},
	}
	for _, tc := range cases {
		got, err := DurationBetween(tc.in, tc.out)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("(%q,%q) expected %q, got %q (err=%v)", tc.in, tc.out, tc.want, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("(%q,%q) expected error, got %q", tc.in, tc.out, got)
			}
		}
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in  string
		min int
		ok  bool
	}{
		{"00:00", 0, true},
		{"9:05", 545, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"12", 0, false},
		{"a:b", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.ok {
			if err != nil || got != tc.min {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.min, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFormatCentihours(t *testing.T) {
	if got := FormatCentihours(1250); got != "12.50" {
		t.Fatalf("expected 12.50, got %q", got)
	}
	if got := FormatCentihours(5); got != "0.05" {
		t.Fatalf("expected 0.05, got %q", got)
	}
	if got := FormatCentihours(-10); got != "0.00" {
		t.Fatalf("expected clamp to 0.00, got %q", got)
	}
}
