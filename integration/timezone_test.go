package integration

import (
	"errors"
	"testing"
	"time"

	"github.com/javiermolinar/chronoblock/internal/dateutil"
	"github.com/javiermolinar/chronoblock/internal/schedule"
)

func TestTimezoneRoundTrip(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	start := time.Date(2025, 3, 14, 9, 0, 0, 0, kolkata)
	end := start.Add(45 * time.Minute)

	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			block := mustAddBlock(t, openStore(t, b), start, end, "Call with Bangalore")

			reopened := openStore(t, b)
			got, ok := reopened.TimeBlock(block.ID)
			if !ok {
				t.Fatal("block missing after reopen")
			}
			t.Logf("stored %v, loaded %v (%v)", start, got.Start, got.Start.Location())

			if !got.Start.Equal(start) || !got.End.Equal(end) {
				t.Errorf("instants changed: got %v-%v, want %v-%v", got.Start, got.End, start, end)
			}

			// The same instant expressed in UTC still collides.
			_, err := reopened.AddTimeBlock(start.UTC().Add(-15*time.Minute), start.UTC().Add(15*time.Minute), "Clash")
			if !errors.Is(err, schedule.ErrConflict) {
				t.Errorf("got %v, want ErrConflict across zones", err)
			}

			from, to := dateutil.DayRange(start)
			if n := len(reopened.TimeBlocksBetween(from, to)); n != 1 {
				t.Errorf("got %d blocks on the IST day, want 1", n)
			}
		})
	}
}

func TestTimezoneDayBoundary(t *testing.T) {
	// 23:30-00:15 local spans midnight; it belongs to the day it starts on.
	start := time.Date(2025, 6, 1, 23, 30, 0, 0, time.Local)

	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			mustAddBlock(t, openStore(t, b), start, start.Add(45*time.Minute), "Late deploy")
			store := openStore(t, b)

			from, to := dateutil.DayRange(start)
			if n := len(store.TimeBlocksBetween(from, to)); n != 1 {
				t.Errorf("got %d blocks on the start day, want 1", n)
			}
			nextFrom, nextTo := dateutil.DayRange(start.AddDate(0, 0, 1))
			if n := len(store.TimeBlocksBetween(nextFrom, nextTo)); n != 0 {
				t.Errorf("got %d blocks on the next day, want 0", n)
			}

			_, err := store.AddTimeBlock(start.Add(30*time.Minute), start.Add(time.Hour), "Early")
			if !errors.Is(err, schedule.ErrConflict) {
				t.Errorf("got %v, want ErrConflict past midnight", err)
			}
		})
	}
}
