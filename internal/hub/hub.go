// Package hub is the registry of live room coordinators. One
// coordinator goroutine exists per room with activity; rooms are
// independent actors and never share mutable state.
package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/drawchain/server/internal/room"
	"github.com/drawchain/server/internal/store"
)

type HubMsg interface{ isHubMsg() }

type EnsureRoom struct {
	RoomID string
	Reply  chan *room.Coordinator
}

type GetRoom struct {
	RoomID string
	Reply  chan *room.Coordinator
}

type RemoveRoom struct{ RoomID string }

type ShutdownHub struct{}

func (EnsureRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox chan HubMsg
	rooms map[string]*room.Coordinator
	store store.Store
	log   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, st store.Store, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Coordinator),
		store:  st,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Ensure returns the coordinator for a room, spawning it on first use.
func (h *Hub) Ensure(roomID string) *room.Coordinator {
	reply := make(chan *room.Coordinator, 1)
	h.inbox <- EnsureRoom{RoomID: roomID, Reply: reply}
	return <-reply
}

// Get returns the coordinator for a room, or nil if none is live.
func (h *Hub) Get(roomID string) *room.Coordinator {
	reply := make(chan *room.Coordinator, 1)
	h.inbox <- GetRoom{RoomID: roomID, Reply: reply}
	return <-reply
}

// Fire-and-forget lifecycle notifications for writers that mutate the
// durable store outside the coordinator. Each one wakes the room's
// coordinator so it re-reads state and broadcasts.

func (h *Hub) NotifyJoined(roomID string)             { h.notify(roomID, room.EventJoined) }
func (h *Hub) NotifyStarted(roomID string)            { h.notify(roomID, room.EventStarted) }
func (h *Hub) NotifyRoundAdvanced(roomID string)      { h.notify(roomID, room.EventRoundAdvanced) }
func (h *Hub) NotifyFinished(roomID string)           { h.notify(roomID, room.EventFinished) }
func (h *Hub) NotifyCompletionReceived(roomID string) { h.notify(roomID, room.EventCompletionReceived) }

func (h *Hub) notify(roomID string, ev room.Event) {
	c := h.Ensure(roomID)
	if c == nil {
		return
	}
	c.Inbox() <- room.Notify{Event: ev}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case EnsureRoom:
				if c := h.rooms[msg.RoomID]; c != nil {
					msg.Reply <- c
					break
				}
				c := room.NewCoordinator(h.ctx, msg.RoomID, h.store, h.log)
				h.rooms[msg.RoomID] = c
				msg.Reply <- c

			case GetRoom:
				msg.Reply <- h.rooms[msg.RoomID] // may be nil

			case RemoveRoom:
				if c := h.rooms[msg.RoomID]; c != nil {
					c.Inbox() <- room.Shutdown{}
					delete(h.rooms, msg.RoomID)
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for id, c := range h.rooms {
		select {
		case c.Inbox() <- room.Shutdown{}:
		default:
		}
		delete(h.rooms, id)
	}
	h.cancel()
}
