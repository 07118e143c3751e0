package clock

import (
	"testing"
	"time"
)

func TestFake(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.FixedZone("X", 3600))
	f := NewFake(start)

	if got := f.Now(); !got.Equal(start) || got.Location() != time.UTC {
		t.Fatalf("Now() = %v, want %v in UTC", got, start)
	}

	f.Advance(time.Minute)
	if got := f.Now(); !got.Equal(start.Add(time.Minute)) {
		t.Errorf("Now() after Advance = %v", got)
	}

	f.Step = time.Second
	first := f.Now()
	second := f.Now()
	if second.Sub(first) != time.Second {
		t.Errorf("Step: consecutive reads %v apart, want 1s", second.Sub(first))
	}

	f.Set(start)
	if got := f.Now(); !got.Equal(start) {
		t.Errorf("Now() after Set = %v", got)
	}
}

func TestRealIsUTC(t *testing.T) {
	if loc := (Real{}).Now().Location(); loc != time.UTC {
		t.Errorf("Location() = %v, want UTC", loc)
	}
}
