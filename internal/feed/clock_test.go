package feed

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	anchor := time.Date(2024, time.March, 9, 17, 45, 0, 0, time.UTC)

	tests := []struct {
		in         string
		wantHour   int
		wantMinute int
	}{
		{"1:05 PM", 13, 5},
		{"1:05 AM", 1, 5},
		{"12:00 AM", 0, 0},   // midnight
		{"12:30 PM", 12, 30}, // noon
		{"11:59 PM", 23, 59},
		{"9:15am", 9, 15},
		{"3:20 pm", 15, 20},
		{"7:40", 7, 40},  // no marker: hour unmodified
		{"12:10", 0, 10}, // no marker: 12 is still midnight
		{"4:07:33 PM", 16, 7},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in, anchor)
			if err != nil {
				t.Fatalf("ParseClock(%q): %v", tt.in, err)
			}
			if got.Hour() != tt.wantHour || got.Minute() != tt.wantMinute {
				t.Fatalf("ParseClock(%q) = %s, want %02d:%02d", tt.in, got.Format("15:04"), tt.wantHour, tt.wantMinute)
			}
			if y, m, d := got.Date(); y != 2024 || m != time.March || d != 9 {
				t.Fatalf("ParseClock(%q) not anchored to calendar date: %s", tt.in, got)
			}
			if got.Location() != time.UTC {
				t.Fatalf("ParseClock(%q) location = %v", tt.in, got.Location())
			}
		})
	}
}

func TestParseClockRejectsMalformed(t *testing.T) {
	anchor := time.Now()
	for _, in := range []string{"", "PM", "noon", "x:15 PM", "3:yy AM", "-1:00 AM", "+3:00", "24:00", "3:60 PM", "3:-5 PM"} {
		if _, err := ParseClock(in, anchor); err == nil {
			t.Errorf("ParseClock(%q) expected error", in)
		}
	}
}

func TestParseAnchor(t *testing.T) {
	now := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)

	got, err := ParseAnchor("", now)
	if err != nil || !got.Equal(now) {
		t.Fatalf("empty anchor: got %v, %v", got, err)
	}

	got, err = ParseAnchor("2023-11-05", now)
	if err != nil {
		t.Fatalf("ParseAnchor: %v", err)
	}
	if y, m, d := got.Date(); y != 2023 || m != time.November || d != 5 {
		t.Fatalf("ParseAnchor date: got %v", got)
	}

	if _, err := ParseAnchor("not a date", now); err == nil {
		t.Fatal("expected error for garbage anchor")
	}
}
