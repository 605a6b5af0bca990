package room

import (
	"context"
	"errors"
	"time"

	"github.com/drawchain/server/internal/rounds"
	"github.com/drawchain/server/internal/store"
)

// Tracker records per-round completion facts and answers whether a
// round is fully satisfied. It never stores content, only that a
// completion happened, by whom, and for which round.
type Tracker struct {
	store store.Store
}

func NewTracker(st store.Store) *Tracker {
	return &Tracker{store: st}
}

// Record validates and persists one completion, returning the updated
// completion count for the round. The (room, round, submitter) unique
// index in the store backs the duplicate check under concurrency.
func (t *Tracker) Record(ctx context.Context, rm *store.Room, participants []store.Participant, submitterID string, category rounds.Category) (int, error) {
	if rm.Status != store.StatusPlaying {
		return 0, ErrRoomNotPlaying
	}

	n := len(participants)
	if rm.TotalPlayers != nil {
		n = *rm.TotalPlayers
	}

	if category != rounds.TaskCategory(rm.CurrentRound, n) {
		return 0, ErrWrongCategory
	}

	submitter, ok := findParticipant(participants, submitterID)
	if !ok {
		return 0, ErrUnknownParticipant
	}

	ownerSeat := rounds.ChainOwnerOf(submitter.Seat, rm.CurrentRound, n)
	owner, ok := findSeat(participants, ownerSeat)
	if !ok {
		return 0, ErrUnknownParticipant
	}

	rec := &store.Completion{
		RoomID:       rm.ID,
		Round:        rm.CurrentRound,
		SubmitterID:  submitterID,
		ChainOwnerID: owner.ID,
		Category:     string(category),
		CreatedAt:    time.Now(),
	}
	if err := t.store.InsertCompletion(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicateCompletion) {
			return 0, ErrDuplicateCompletion
		}
		return 0, err
	}

	return t.store.CountCompletions(ctx, rm.ID, rm.CurrentRound)
}

// RecordMissing writes placeholder completions for every participant
// that has not completed the given round. Used by the deadline path so
// a round always reaches satisfied even with vanished clients.
// Duplicate rejections are absorbed: a client submission landing
// between the list and the insert is the record we wanted anyway.
func (t *Tracker) RecordMissing(ctx context.Context, rm *store.Room, participants []store.Participant) (int, error) {
	n := len(participants)
	if rm.TotalPlayers != nil {
		n = *rm.TotalPlayers
	}

	done, err := t.store.ListCompletions(ctx, rm.ID, rm.CurrentRound)
	if err != nil {
		return 0, err
	}
	submitted := make(map[string]bool, len(done))
	for _, c := range done {
		submitted[c.SubmitterID] = true
	}

	category := rounds.TaskCategory(rm.CurrentRound, n)
	for _, p := range participants {
		if submitted[p.ID] {
			continue
		}
		ownerSeat := rounds.ChainOwnerOf(p.Seat, rm.CurrentRound, n)
		owner, ok := findSeat(participants, ownerSeat)
		if !ok {
			continue
		}
		rec := &store.Completion{
			RoomID:       rm.ID,
			Round:        rm.CurrentRound,
			SubmitterID:  p.ID,
			ChainOwnerID: owner.ID,
			Category:     string(category),
			AutoFilled:   true,
			CreatedAt:    time.Now(),
		}
		if err := t.store.InsertCompletion(ctx, rec); err != nil && !errors.Is(err, store.ErrDuplicateCompletion) {
			return 0, err
		}
	}

	return t.store.CountCompletions(ctx, rm.ID, rm.CurrentRound)
}

// IsRoundSatisfied reports whether every player has a completion for
// the round.
func (t *Tracker) IsRoundSatisfied(ctx context.Context, rm *store.Room) (bool, error) {
	if rm.TotalPlayers == nil {
		return false, nil
	}
	count, err := t.store.CountCompletions(ctx, rm.ID, rm.CurrentRound)
	if err != nil {
		return false, err
	}
	return count == *rm.TotalPlayers, nil
}

func findParticipant(ps []store.Participant, id string) (store.Participant, bool) {
	for _, p := range ps {
		if p.ID == id {
			return p, true
		}
	}
	return store.Participant{}, false
}

func findSeat(ps []store.Participant, seat int) (store.Participant, bool) {
	for _, p := range ps {
		if p.Seat == seat {
			return p, true
		}
	}
	return store.Participant{}, false
}
