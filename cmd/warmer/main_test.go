package main

import (
	"testing"
	"time"
)

func TestUpcomingWeekends(t *testing.T) {
	// a Friday: the first window is the following week's
	fri := time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)
	got := upcomingWeekends(fri, 2)
	want := [][2]string{{"2026-10-23", "2026-10-25"}, {"2026-10-30", "2026-11-01"}}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("window %d: got %v want %v", i, got[i], want[i])
		}
	}

	mon := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	if w := upcomingWeekends(mon, 1); w[0][0] != "2026-10-23" {
		t.Fatalf("from Monday: %v", w)
	}
	if w := upcomingWeekends(mon, 0); len(w) != 0 {
		t.Fatalf("zero weekends: %v", w)
	}
}

func TestPlan(t *testing.T) {
	p := plan([]string{"Oslo", "Rome"}, [][2]string{{"2026-10-23", "2026-10-25"}})
	if len(p) != 4 {
		t.Fatalf("expected undated + dated per destination, got %+v", p)
	}
	if p[0] != (stay{dest: "Oslo"}) || p[1].checkIn != "2026-10-23" || p[3].dest != "Rome" {
		t.Fatalf("plan=%+v", p)
	}
}
