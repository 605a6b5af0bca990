package room

import (
	"context"
	"testing"
	"time"

	"github.com/drawchain/server/internal/rounds"
	"github.com/drawchain/server/internal/store"
)

func playingRoom(ms *memStore, id string, n, round int) (*store.Room, []store.Participant) {
	participants := seedRoom(ms, id, n, 90)
	rm := ms.rooms[id]
	rm.Status = store.StatusPlaying
	rm.CurrentRound = round
	rm.RoundStart = time.Now()
	rm.TotalPlayers = &n
	ms.rooms[id] = rm
	out := rm
	return &out, participants
}

// With four players, round 1 does not rotate: every
// submitter is advancing their own chain.
func TestTracker_EvenCountRoundOneKeepsOwnChain(t *testing.T) {
	ms := newMemStore()
	rm, participants := playingRoom(ms, "r1", 4, 1)
	tr := NewTracker(ms)

	for _, p := range participants {
		if _, err := tr.Record(context.Background(), rm, participants, p.ID, rounds.CategoryDraw); err != nil {
			t.Fatalf("record %s: %v", p.ID, err)
		}
	}

	recs, _ := ms.ListCompletions(context.Background(), "r1", 1)
	for _, rec := range recs {
		if rec.ChainOwnerID != rec.SubmitterID {
			t.Fatalf("round 1 of even count must not rotate: submitter=%s owner=%s",
				rec.SubmitterID, rec.ChainOwnerID)
		}
	}
}

func TestTracker_ReturnsRunningCount(t *testing.T) {
	ms := newMemStore()
	rm, participants := playingRoom(ms, "r1", 3, 0)
	tr := NewTracker(ms)

	for i, p := range participants {
		count, err := tr.Record(context.Background(), rm, participants, p.ID, rounds.CategoryWord)
		if err != nil {
			t.Fatalf("record %s: %v", p.ID, err)
		}
		if count != i+1 {
			t.Fatalf("want count %d, got %d", i+1, count)
		}
	}

	sat, err := tr.IsRoundSatisfied(context.Background(), rm)
	if err != nil || !sat {
		t.Fatalf("round should be satisfied: sat=%v err=%v", sat, err)
	}
}

func TestTracker_RecordMissingAbsorbsExistingRecords(t *testing.T) {
	ms := newMemStore()
	rm, participants := playingRoom(ms, "r1", 3, 0)
	tr := NewTracker(ms)

	// one player submitted in time
	if _, err := tr.Record(context.Background(), rm, participants, "p1", rounds.CategoryWord); err != nil {
		t.Fatalf("record: %v", err)
	}

	count, err := tr.RecordMissing(context.Background(), rm, participants)
	if err != nil {
		t.Fatalf("record missing: %v", err)
	}
	if count != 3 {
		t.Fatalf("want 3 completions, got %d", count)
	}

	recs, _ := ms.ListCompletions(context.Background(), "r1", 0)
	auto := 0
	for _, rec := range recs {
		if rec.AutoFilled {
			auto++
		} else if rec.SubmitterID != "p1" {
			t.Fatalf("unexpected real completion for %s", rec.SubmitterID)
		}
	}
	if auto != 2 {
		t.Fatalf("want 2 synthesized records, got %d", auto)
	}
}

func TestWriteOnceCache(t *testing.T) {
	var c startCache
	if !c.populate("host", 90, 4) {
		t.Fatalf("first populate must win")
	}
	if c.populate("other", 30, 7) {
		t.Fatalf("second populate must be a no-op")
	}
	if c.hostID != "host" || c.timerDuration != 90 || c.totalPlayers != 4 {
		t.Fatalf("cache overwritten: %+v", c)
	}
}
