// Package room hosts the per-room coordinator: a single goroutine that
// owns the live connections for one room, serializes every mutation
// (join, start, submission, timer fire), and decides what shape of
// state update each transition broadcasts.
package room

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drawchain/server/internal/rounds"
	"github.com/drawchain/server/internal/store"
	"github.com/drawchain/server/internal/types"
)

type Coordinator struct {
	roomID  string
	store   store.Store
	tracker *Tracker
	log     *zap.Logger

	inbox chan Msg
	conns map[string]chan types.ServerMessage
	cache startCache
	sched deadlineScheduler

	ctx    context.Context
	cancel context.CancelFunc
}

func NewCoordinator(parent context.Context, roomID string, st store.Store, log *zap.Logger) *Coordinator {
	ctx, cancel := context.WithCancel(parent)

	c := &Coordinator{
		roomID:  roomID,
		store:   st,
		tracker: NewTracker(st),
		log:     log.With(zap.String("room_id", roomID)),
		inbox:   make(chan Msg, 64),
		conns:   make(map[string]chan types.ServerMessage),
		ctx:     ctx,
		cancel:  cancel,
	}

	go c.loop()
	return c
}

// Inbox exposes the actor mailbox to the transport layer and tests.
func (c *Coordinator) Inbox() chan<- Msg { return c.inbox }

// Join adds a participant to the room while it is still in the lobby.
func (c *Coordinator) Join(displayName string) (store.Participant, error) {
	reply := make(chan JoinReply, 1)
	if err := c.send(JoinRequest{DisplayName: displayName, Reply: reply}); err != nil {
		return store.Participant{}, err
	}
	select {
	case r := <-reply:
		return r.Participant, r.Err
	case <-c.ctx.Done():
		// a shutdown dequeued ahead of the queued request drops it
		return store.Participant{}, ErrCoordinatorClosed
	}
}

// Start locks the roster, arms the first deadline, and broadcasts full
// state. Only the host may start.
func (c *Coordinator) Start(requesterID string) error {
	reply := make(chan error, 1)
	if err := c.send(StartRequest{RequesterID: requesterID, Reply: reply}); err != nil {
		return err
	}
	return c.await(reply)
}

// Submit records one completion for the current round and advances the
// round if this was the last one outstanding.
func (c *Coordinator) Submit(submitterID string, category rounds.Category) error {
	reply := make(chan error, 1)
	if err := c.send(SubmitRequest{SubmitterID: submitterID, Category: category, Reply: reply}); err != nil {
		return err
	}
	return c.await(reply)
}

// await waits for the actor's reply. The reply never comes when a
// shutdown was dequeued ahead of the queued request, so the ctx guards
// the wait.
func (c *Coordinator) await(reply <-chan error) error {
	select {
	case err := <-reply:
		return err
	case <-c.ctx.Done():
		return ErrCoordinatorClosed
	}
}

func (c *Coordinator) send(m Msg) error {
	select {
	case c.inbox <- m:
		return nil
	case <-c.ctx.Done():
		return ErrCoordinatorClosed
	}
}

func (c *Coordinator) loop() {
	for {
		select {
		case <-c.ctx.Done():
			c.shutdown()
			return

		case m := <-c.inbox:
			switch msg := m.(type) {
			case Connect:
				c.handleConnect(msg)
			case Disconnect:
				c.handleDisconnect(msg)
			case JoinRequest:
				c.handleJoin(msg)
			case StartRequest:
				msg.Reply <- c.handleStart(msg.RequesterID)
			case SubmitRequest:
				c.handleSubmit(msg)
			case Notify:
				c.apply(msg.Event)
			case timerFired:
				c.handleTimerFired(msg.armedFor)
			case GetView:
				msg.Reply <- View{
					NumConns:       len(c.conns),
					CachePopulated: c.cache.populated,
					TotalPlayers:   c.cache.totalPlayers,
					TimerArmed:     c.sched.armed(),
				}
			case Shutdown:
				c.shutdown()
				return
			}
		}
	}
}

func (c *Coordinator) shutdown() {
	c.sched.cancel()
	c.release()
	c.cancel()
}

// apply performs the broadcast (and timer) reaction for one lifecycle
// event. The coordinator's own mutation handlers funnel through here
// so an out-of-band Notify behaves identically to an internal write.
func (c *Coordinator) apply(ev Event) {
	switch ev {
	case EventJoined:
		// Lobby roster changed: everyone needs the new roster.
		c.broadcastFull()

	case EventStarted:
		rm, err := c.store.GetRoom(c.ctx, c.roomID)
		if err != nil {
			c.log.Error("read room on started", zap.Error(err))
			return
		}
		if !c.cache.populated && rm.TotalPlayers != nil {
			c.cache.populate(rm.HostID, rm.TimerDuration, *rm.TotalPlayers)
		}
		c.armDeadline(rm)
		c.broadcastFull()

	case EventRoundAdvanced:
		rm, err := c.store.GetRoom(c.ctx, c.roomID)
		if err != nil {
			c.log.Error("read room on round advance", zap.Error(err))
			return
		}
		c.armDeadline(rm)
		c.broadcastIncremental()

	case EventCompletionReceived:
		c.broadcastIncremental()

	case EventFinished:
		c.sched.cancel()
		c.broadcastIncremental()
		c.release()
	}
}

func (c *Coordinator) handleJoin(msg JoinRequest) {
	rm, err := c.store.GetRoom(c.ctx, c.roomID)
	if err != nil {
		msg.Reply <- JoinReply{Err: err}
		return
	}
	if rm.Status != store.StatusLobby {
		msg.Reply <- JoinReply{Err: ErrRoomNotLobby}
		return
	}

	p := &store.Participant{
		ID:          uuid.NewString(),
		RoomID:      c.roomID,
		DisplayName: msg.DisplayName,
		CreatedAt:   time.Now(),
	}
	if err := c.store.AddParticipant(c.ctx, p); err != nil {
		msg.Reply <- JoinReply{Err: err}
		return
	}

	msg.Reply <- JoinReply{Participant: *p}
	c.apply(EventJoined)
}

func (c *Coordinator) handleStart(requesterID string) error {
	rm, err := c.store.GetRoom(c.ctx, c.roomID)
	if err != nil {
		return err
	}
	if rm.Status != store.StatusLobby {
		return ErrRoomNotLobby
	}
	if requesterID != rm.HostID {
		return ErrNotHost
	}

	participants, err := c.store.ListParticipants(c.ctx, c.roomID)
	if err != nil {
		return err
	}
	n := len(participants)
	if n < 3 {
		return ErrNotEnoughPlayers
	}

	now := time.Now()
	status := store.StatusPlaying
	round := 0
	if err := c.store.UpdateRoom(c.ctx, c.roomID, store.RoomUpdate{
		Status:       &status,
		CurrentRound: &round,
		RoundStart:   &now,
		TotalPlayers: &n,
	}); err != nil {
		return err
	}

	c.cache.populate(rm.HostID, rm.TimerDuration, n)
	c.apply(EventStarted)
	return nil
}

func (c *Coordinator) handleSubmit(msg SubmitRequest) {
	rm, err := c.store.GetRoom(c.ctx, c.roomID)
	if err != nil {
		msg.Reply <- err
		return
	}
	participants, err := c.store.ListParticipants(c.ctx, c.roomID)
	if err != nil {
		msg.Reply <- err
		return
	}

	count, err := c.tracker.Record(c.ctx, rm, participants, msg.SubmitterID, msg.Category)
	if err != nil {
		msg.Reply <- err
		return
	}
	msg.Reply <- nil

	if rm.TotalPlayers != nil && count >= *rm.TotalPlayers {
		c.advance(rm, *rm.TotalPlayers)
	} else {
		c.apply(EventCompletionReceived)
	}
}

// handleTimerFired runs the deadline. Delivery is at-least-once, so
// the fire is dropped when the room is no longer playing or the round
// it was armed for has already advanced.
func (c *Coordinator) handleTimerFired(armedFor time.Time) {
	rm, err := c.store.GetRoom(c.ctx, c.roomID)
	if err != nil {
		c.log.Error("read room on deadline", zap.Error(err))
		return
	}
	if rm.Status != store.StatusPlaying {
		c.log.Debug("deadline fired on non-playing room", zap.String("status", string(rm.Status)))
		return
	}
	if !rm.RoundStart.Equal(armedFor) {
		c.log.Debug("stale deadline dropped",
			zap.Int("round", rm.CurrentRound),
			zap.Time("armed_for", armedFor))
		return
	}

	participants, err := c.store.ListParticipants(c.ctx, c.roomID)
	if err != nil {
		c.log.Error("list participants on deadline", zap.Error(err))
		return
	}

	count, err := c.tracker.RecordMissing(c.ctx, rm, participants)
	if err != nil {
		c.log.Error("auto-complete round", zap.Int("round", rm.CurrentRound), zap.Error(err))
		return
	}
	c.log.Info("deadline auto-completed round", zap.Int("round", rm.CurrentRound))

	if rm.TotalPlayers != nil && count >= *rm.TotalPlayers {
		c.advance(rm, *rm.TotalPlayers)
	}
}

// advance moves a satisfied round forward: to finished if the game is
// over, otherwise to the next round with a fresh deadline. Exactly one
// caller can get here per round because all mutations are serialized
// through the actor.
func (c *Coordinator) advance(rm *store.Room, n int) {
	if rounds.IsComplete(rm.CurrentRound+1, n) {
		status := store.StatusFinished
		if err := c.store.UpdateRoom(c.ctx, c.roomID, store.RoomUpdate{Status: &status}); err != nil {
			c.log.Error("finish room", zap.Error(err))
			return
		}
		c.apply(EventFinished)
		return
	}

	next := rm.CurrentRound + 1
	now := time.Now()
	if err := c.store.UpdateRoom(c.ctx, c.roomID, store.RoomUpdate{
		CurrentRound: &next,
		RoundStart:   &now,
	}); err != nil {
		c.log.Error("advance round", zap.Error(err))
		return
	}
	c.apply(EventRoundAdvanced)
}

func (c *Coordinator) armDeadline(rm *store.Room) {
	duration := time.Duration(rm.TimerDuration) * time.Second
	if c.cache.populated {
		duration = time.Duration(c.cache.timerDuration) * time.Second
	}
	c.sched.schedule(rm.RoundStart, duration, func(armedFor time.Time) {
		select {
		case c.inbox <- timerFired{armedFor: armedFor}:
		case <-c.ctx.Done():
		}
	})
}

func (c *Coordinator) handleConnect(msg Connect) {
	if old, ok := c.conns[msg.ParticipantID]; ok {
		close(old)
	}
	c.conns[msg.ParticipantID] = msg.Outbox

	// The newcomer gets the roster privately; nobody else pays for a
	// re-broadcast.
	full, err := c.fullState()
	if err != nil {
		c.trySend(msg.ParticipantID, types.ServerMessage{Type: "error", Data: types.ErrorData{Message: "failed to load room state"}})
		return
	}
	c.trySend(msg.ParticipantID, types.ServerMessage{Type: "full_state", Data: full})
}

func (c *Coordinator) handleDisconnect(msg Disconnect) {
	ch, ok := c.conns[msg.ParticipantID]
	if !ok || ch != msg.Outbox {
		// Stale: this handler's connection was already replaced by a
		// reconnect (handleConnect closed its outbox). The live
		// replacement stays registered.
		return
	}
	close(ch)
	delete(c.conns, msg.ParticipantID)

	// An abandoned room should not consume a wake-up nobody will see.
	if len(c.conns) == 0 {
		c.sched.cancel()
		c.log.Debug("last connection closed, deadline cancelled")
	}
}

func (c *Coordinator) release() {
	for id, ch := range c.conns {
		close(ch)
		delete(c.conns, id)
	}
}

func (c *Coordinator) broadcastFull() {
	full, err := c.fullState()
	if err != nil {
		c.log.Error("build full state", zap.Error(err))
		return
	}
	c.broadcast(types.ServerMessage{Type: "full_state", Data: full})
}

func (c *Coordinator) broadcastIncremental() {
	inc, err := c.incrementalState()
	if err != nil {
		c.log.Error("build incremental state", zap.Error(err))
		return
	}
	c.broadcast(types.ServerMessage{Type: "incremental_state", Data: inc})
}

func (c *Coordinator) broadcast(msg types.ServerMessage) {
	for id := range c.conns {
		c.trySend(id, msg)
	}
}

// trySend delivers without blocking the actor. A full outbox means the
// client is slow or gone; drop the connection and let the next
// reconnect resync it with full state.
func (c *Coordinator) trySend(participantID string, msg types.ServerMessage) {
	ch, ok := c.conns[participantID]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		c.log.Warn("dropping unresponsive connection", zap.String("participant_id", participantID))
		close(ch)
		delete(c.conns, participantID)
	}
}

// fullState re-reads the room and roster from the store; only the
// write-once scalars come from the cache once it is populated.
func (c *Coordinator) fullState() (types.FullState, error) {
	rm, err := c.store.GetRoom(c.ctx, c.roomID)
	if err != nil {
		return types.FullState{}, err
	}
	participants, err := c.store.ListParticipants(c.ctx, c.roomID)
	if err != nil {
		return types.FullState{}, err
	}

	infos := make([]types.ParticipantInfo, 0, len(participants))
	for _, p := range participants {
		infos = append(infos, types.ParticipantInfo{ID: p.ID, DisplayName: p.DisplayName, Seat: p.Seat})
	}

	hostID, timerDuration, totalPlayers := c.scalars(rm)
	return types.FullState{
		RoomID:        rm.ID,
		Status:        string(rm.Status),
		HostID:        hostID,
		Participants:  infos,
		CurrentRound:  rm.CurrentRound,
		RoundStart:    rm.RoundStart,
		TimerDuration: timerDuration,
		TotalPlayers:  totalPlayers,
	}, nil
}

func (c *Coordinator) incrementalState() (types.IncrementalState, error) {
	rm, err := c.store.GetRoom(c.ctx, c.roomID)
	if err != nil {
		return types.IncrementalState{}, err
	}

	hostID, timerDuration, totalPlayers := c.scalars(rm)
	return types.IncrementalState{
		RoomID:        rm.ID,
		Status:        string(rm.Status),
		CurrentRound:  rm.CurrentRound,
		RoundStart:    rm.RoundStart,
		HostID:        hostID,
		TimerDuration: timerDuration,
		TotalPlayers:  totalPlayers,
	}, nil
}

func (c *Coordinator) scalars(rm *store.Room) (hostID string, timerDuration, totalPlayers int) {
	if c.cache.populated {
		return c.cache.hostID, c.cache.timerDuration, c.cache.totalPlayers
	}
	totalPlayers = 0
	if rm.TotalPlayers != nil {
		totalPlayers = *rm.TotalPlayers
	}
	return rm.HostID, rm.TimerDuration, totalPlayers
}
