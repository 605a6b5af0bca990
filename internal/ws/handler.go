package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/drawchain/server/internal/hub"
	"github.com/drawchain/server/internal/room"
	"github.com/drawchain/server/internal/store"
	"github.com/drawchain/server/internal/types"
)

// Handler upgrades a client to a websocket and registers it with the
// room's coordinator. The first client message must be a "connect"
// carrying the participant id; the coordinator answers with full state
// so a reconnecting client can rebuild the roster on its own.
func Handler(h *hub.Hub, st store.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		rm, err := st.GetRoomByCode(r.Context(), code)
		if errors.Is(err, store.ErrRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		participantID, ok := readConnect(r.Context(), conn)
		if !ok {
			writeError(r.Context(), conn, "expected connect message")
			return
		}
		if !participantInRoom(r.Context(), st, rm.ID, participantID) {
			writeError(r.Context(), conn, "unknown participant")
			return
		}

		c := h.Ensure(rm.ID)

		out := make(chan types.ServerMessage, 8)
		c.Inbox() <- room.Connect{ParticipantID: participantID, Outbox: out}
		defer func() { c.Inbox() <- room.Disconnect{ParticipantID: participantID, Outbox: out} }()

		// Writer goroutine: drains the outbox until the coordinator
		// closes it (disconnect, drop, or room release).
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, err := json.Marshal(msg)
				if err != nil {
					log.Error("marshal server message", zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
					log.Debug("write to client failed", zap.String("participant_id", participantID), zap.Error(err))
				}
				cancel()
			}
		}()

		// Reader loop: gameplay mutations arrive over HTTP, so after
		// the handshake we only watch for close.
		for {
			_, _, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}
		}
	}
}

func readConnect(ctx context.Context, conn *websocket.Conn) (string, bool) {
	readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, data, err := conn.Read(readCtx)
	if err != nil {
		return "", false
	}

	var cm types.ClientMessage
	if err := json.Unmarshal(data, &cm); err != nil {
		return "", false
	}
	if cm.Type != "connect" || cm.ParticipantID == "" {
		return "", false
	}
	return cm.ParticipantID, true
}

func participantInRoom(ctx context.Context, st store.Store, roomID, participantID string) bool {
	participants, err := st.ListParticipants(ctx, roomID)
	if err != nil {
		return false
	}
	for _, p := range participants {
		if p.ID == participantID {
			return true
		}
	}
	return false
}

func writeError(ctx context.Context, conn *websocket.Conn, message string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: "error", Data: types.ErrorData{Message: message}})
	writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_ = conn.Write(writeCtx, websocket.MessageText, payload)
}
