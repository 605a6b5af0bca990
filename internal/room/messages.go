package room

import (
	"time"

	"github.com/drawchain/server/internal/rounds"
	"github.com/drawchain/server/internal/store"
	"github.com/drawchain/server/internal/types"
)

// Event names the lifecycle notifications the coordinator consumes.
// External writers that mutate the durable store directly can feed
// these in through the hub; the coordinator's own mutation handlers
// reuse the same reactions.
type Event string

const (
	EventJoined             Event = "joined"
	EventStarted            Event = "started"
	EventRoundAdvanced      Event = "round_advanced"
	EventFinished           Event = "finished"
	EventCompletionReceived Event = "completion_received"
)

type Msg interface{ isRoomMsg() }

// Connect registers a live client connection. The connecting client
// receives full state privately; nobody else gets a re-broadcast.
type Connect struct {
	ParticipantID string
	Outbox        chan types.ServerMessage
}

func (Connect) isRoomMsg() {}

// Disconnect unregisters one specific connection. Outbox identifies
// which one: a handler whose connection was already replaced by a
// reconnect must not tear down the replacement.
type Disconnect struct {
	ParticipantID string
	Outbox        chan types.ServerMessage
}

func (Disconnect) isRoomMsg() {}

type JoinRequest struct {
	DisplayName string
	Reply       chan JoinReply
}

func (JoinRequest) isRoomMsg() {}

type JoinReply struct {
	Participant store.Participant
	Err         error
}

type StartRequest struct {
	RequesterID string
	Reply       chan error
}

func (StartRequest) isRoomMsg() {}

type SubmitRequest struct {
	SubmitterID string
	Category    rounds.Category
	Reply       chan error
}

func (SubmitRequest) isRoomMsg() {}

// Notify is the fire-and-forget lifecycle notification surface.
type Notify struct{ Event Event }

func (Notify) isRoomMsg() {}

// timerFired is injected by the deadline scheduler so a deadline is
// serialized with client submissions. armedFor is the round start the
// timer was armed against; a mismatch on arrival means the round
// already moved and the fire is stale.
type timerFired struct{ armedFor time.Time }

func (timerFired) isRoomMsg() {}

// GetView reflects internal coordinator state without data races.
// Test-only.
type GetView struct{ Reply chan View }

func (GetView) isRoomMsg() {}

type View struct {
	NumConns       int
	CachePopulated bool
	TotalPlayers   int
	TimerArmed     bool
}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}
