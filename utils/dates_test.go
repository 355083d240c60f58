package utils

import (
	"testing"
	"time"
)

func TestDateOnly(t *testing.T) {
	dakar := time.FixedZone("GMT", 0)
	in := time.Date(2025, time.November, 15, 23, 45, 12, 999, dakar)

	got := DateOnly(in)
	want := time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DateOnly(%v) = %v, want %v", in, got, want)
	}
	if got.Location() != time.UTC {
		t.Fatalf("DateOnly must return UTC, got %v", got.Location())
	}
}

func TestMonthBounds(t *testing.T) {
	in := time.Date(2025, time.December, 20, 10, 0, 0, 0, time.UTC)
	start, end := MonthBounds(in)

	if !start.Equal(time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected month start %v", start)
	}
	if !end.Equal(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected month end %v", end)
	}
	if !start.Before(in) || !in.Before(end) {
		t.Fatal("input must fall inside the half-open month range")
	}
}

func TestMonthKey(t *testing.T) {
	in := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	if got := MonthKey(in); got != "2025-03" {
		t.Fatalf("MonthKey = %q, want 2025-03", got)
	}
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2025, time.November, 10, 23, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.November, 13, 1, 0, 0, 0, time.UTC)

	if got := DaysBetween(start, end); got != 3 {
		t.Fatalf("DaysBetween = %d, want 3", got)
	}
	if got := DaysBetween(start, start); got != 0 {
		t.Fatalf("DaysBetween of the same day = %d, want 0", got)
	}
}

func TestBeginningOfDay(t *testing.T) {
	in := time.Date(2025, time.November, 10, 18, 30, 45, 12, time.UTC)
	got := BeginningOfDay(in)
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Fatalf("BeginningOfDay left time components: %v", got)
	}
	if got.Day() != in.Day() || got.Location() != in.Location() {
		t.Fatalf("BeginningOfDay changed the day or zone: %v", got)
	}
}
