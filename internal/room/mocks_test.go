package room

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/drawchain/server/internal/store"
)

// memStore is an in-memory store.Store for coordinator tests. It keeps
// the same uniqueness guarantees as the gorm schema: one seat per
// participant, one completion per (room, round, submitter).
type memStore struct {
	mu           sync.Mutex
	rooms        map[string]store.Room
	participants map[string][]store.Participant
	completions  []store.Completion
}

func newMemStore() *memStore {
	return &memStore{
		rooms:        make(map[string]store.Room),
		participants: make(map[string][]store.Participant),
	}
}

func (m *memStore) CreateRoom(_ context.Context, rm *store.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[rm.ID] = *rm
	return nil
}

func (m *memStore) GetRoom(_ context.Context, id string) (*store.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rm, ok := m.rooms[id]
	if !ok {
		return nil, store.ErrRoomNotFound
	}
	out := rm
	return &out, nil
}

func (m *memStore) GetRoomByCode(_ context.Context, code string) (*store.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rm := range m.rooms {
		if rm.JoinCode == code {
			out := rm
			return &out, nil
		}
	}
	return nil, store.ErrRoomNotFound
}

func (m *memStore) UpdateRoom(_ context.Context, id string, upd store.RoomUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rm, ok := m.rooms[id]
	if !ok {
		return store.ErrRoomNotFound
	}
	if upd.Status != nil {
		rm.Status = *upd.Status
	}
	if upd.CurrentRound != nil {
		rm.CurrentRound = *upd.CurrentRound
	}
	if upd.RoundStart != nil {
		rm.RoundStart = *upd.RoundStart
	}
	if upd.TotalPlayers != nil {
		tp := *upd.TotalPlayers
		rm.TotalPlayers = &tp
	}
	m.rooms[id] = rm
	return nil
}

func (m *memStore) AddParticipant(_ context.Context, p *store.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Seat = len(m.participants[p.RoomID])
	m.participants[p.RoomID] = append(m.participants[p.RoomID], *p)
	return nil
}

func (m *memStore) ListParticipants(_ context.Context, roomID string) ([]store.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.Participant, len(m.participants[roomID]))
	copy(out, m.participants[roomID])
	return out, nil
}

func (m *memStore) InsertCompletion(_ context.Context, c *store.Completion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.completions {
		if existing.RoomID == c.RoomID && existing.Round == c.Round && existing.SubmitterID == c.SubmitterID {
			return store.ErrDuplicateCompletion
		}
	}
	m.completions = append(m.completions, *c)
	return nil
}

func (m *memStore) CountCompletions(_ context.Context, roomID string, round int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.completions {
		if c.RoomID == roomID && c.Round == round {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListCompletions(_ context.Context, roomID string, round int) ([]store.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Completion
	for _, c := range m.completions {
		if c.RoomID == roomID && c.Round == round {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) completionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.completions)
}

func (m *memStore) roomStatus(id string) store.RoomStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[id].Status
}

// seedRoom creates a lobby room with n seated participants. The first
// participant is the host. Participant ids are p0..p(n-1).
func seedRoom(m *memStore, id string, n, timerSeconds int) []store.Participant {
	rm := store.Room{
		ID:            id,
		JoinCode:      "CODE" + id,
		Status:        store.StatusLobby,
		HostID:        "p0",
		TimerDuration: timerSeconds,
		CreatedAt:     time.Now(),
	}
	m.rooms[id] = rm
	for i := 0; i < n; i++ {
		m.participants[id] = append(m.participants[id], store.Participant{
			ID:          fmt.Sprintf("p%d", i),
			RoomID:      id,
			DisplayName: fmt.Sprintf("player %d", i),
			Seat:        i,
		})
	}
	return m.participants[id]
}
