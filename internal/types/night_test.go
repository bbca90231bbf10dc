package types

import (
	"path/filepath"
	"testing"
	"time"
)

func TestNightOf_EveningAndMorningShareANight(t *testing.T) {
	evening := time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)
	morning := time.Date(2026, 3, 15, 5, 45, 0, 0, time.UTC)

	if NightOf(evening) != NightOf(morning) {
		t.Fatalf("evening night %v != morning night %v", NightOf(evening), NightOf(morning))
	}
	if got := NightOf(evening).String(); got != "20260314" {
		t.Fatalf("night = %s, want 20260314", got)
	}
}

func TestNightOf_RollsOverAtNoonExactlyOnce(t *testing.T) {
	// Walk across the noon boundary minute by minute: the night must
	// change exactly once and never regress.
	start := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)
	prev := NightOf(start)
	changes := 0
	for m := 1; m <= 120; m++ {
		cur := NightOf(start.Add(time.Duration(m) * time.Minute))
		if cur != prev {
			changes++
			prevDate := time.Date(prev.Year, prev.Month, prev.Day, 0, 0, 0, 0, time.UTC)
			curDate := time.Date(cur.Year, cur.Month, cur.Day, 0, 0, 0, 0, time.UTC)
			if !curDate.After(prevDate) {
				t.Fatalf("night regressed from %v to %v", prev, cur)
			}
			prev = cur
		}
	}
	if changes != 1 {
		t.Fatalf("night changed %d times across the boundary, want exactly 1", changes)
	}
	if NightOf(start.Add(90*time.Minute)).String() != "20260314" {
		t.Fatalf("post-noon night = %s, want 20260314", NightOf(start.Add(90*time.Minute)))
	}
}

func TestNightDir_Layout(t *testing.T) {
	n := Night{Year: 2026, Month: time.February, Day: 3}
	want := filepath.Join("base", "2026", "02", "03", "overview")
	if got := n.Dir("base", "overview"); got != want {
		t.Fatalf("Dir = %q, want %q", got, want)
	}
	if got := n.VideoFilename(); got != "20260203.mp4" {
		t.Fatalf("VideoFilename = %q, want 20260203.mp4", got)
	}
}
