package util

import (
	"testing"
	"time"
)

func TestParseDayLayouts(t *testing.T) {
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-10-10", "20241010", "2024/10/10"} {
		got, ok := ParseDay(s)
		if !ok {
			t.Fatalf("expected ok for %q", s)
		}
		if !got.Equal(want) {
			t.Fatalf("unexpected date %v for %q", got, s)
		}
	}
}

func TestParseDayRejectsGarbage(t *testing.T) {
	if _, ok := ParseDay(""); ok {
		t.Fatalf("expected not ok for empty string")
	}
	if _, ok := ParseDay("yesterday"); ok {
		t.Fatalf("expected not ok for garbage")
	}
}

func TestFormatDay(t *testing.T) {
	d := time.Date(2024, 3, 7, 15, 4, 5, 0, time.UTC)
	if got := FormatDay(d); got != "20240307" {
		t.Fatalf("unexpected format %q", got)
	}
}

func TestQuarterStart(t *testing.T) {
	d := time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC)
	want := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	if got := QuarterStart(d); !got.Equal(want) {
		t.Fatalf("unexpected quarter start %v", got)
	}
	if q := QuarterOf(d); q != 3 {
		t.Fatalf("unexpected quarter %d", q)
	}
}
