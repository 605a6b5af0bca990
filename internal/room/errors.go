package room

import "errors"

var (
	ErrRoomNotLobby        = errors.New("room is not accepting joins")
	ErrRoomNotPlaying      = errors.New("room is not playing")
	ErrDuplicateCompletion = errors.New("already completed this round")
	ErrWrongCategory       = errors.New("wrong task category for this round")
	ErrNotHost             = errors.New("only the host can start the game")
	ErrNotEnoughPlayers    = errors.New("need at least three players")
	ErrUnknownParticipant  = errors.New("participant is not in this room")
	ErrCoordinatorClosed   = errors.New("room coordinator is shut down")
)
