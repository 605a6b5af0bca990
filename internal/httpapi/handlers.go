package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drawchain/server/internal/hub"
	"github.com/drawchain/server/internal/room"
	"github.com/drawchain/server/internal/rounds"
	"github.com/drawchain/server/internal/store"
)

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

type createRoomRequest struct {
	DisplayName   string `json:"display_name"`
	TimerDuration int    `json:"timer_duration"`
}

type createRoomResponse struct {
	RoomID        string `json:"room_id"`
	Code          string `json:"code"`
	ParticipantID string `json:"participant_id"`
	Seat          int    `json:"seat"`
}

// CreateRoom makes a lobby and seats the creator as host.
func CreateRoom(h *hub.Hub, st store.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DisplayName == "" {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if req.TimerDuration <= 0 {
			req.TimerDuration = 90
		}

		var code string
		for {
			c, err := GenerateCode()
			if err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			_, err = st.GetRoomByCode(r.Context(), c)
			if errors.Is(err, store.ErrRoomNotFound) {
				code = c
				break
			}
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			log.Debug("join code collision, regenerating", zap.String("code", c))
		}

		hostID := uuid.NewString()
		rm := &store.Room{
			ID:            uuid.NewString(),
			JoinCode:      code,
			Status:        store.StatusLobby,
			HostID:        hostID,
			TimerDuration: req.TimerDuration,
			CreatedAt:     time.Now(),
		}
		if err := st.CreateRoom(r.Context(), rm); err != nil {
			http.Error(w, "failed to create room", http.StatusInternalServerError)
			return
		}
		host := &store.Participant{
			ID:          hostID,
			RoomID:      rm.ID,
			DisplayName: req.DisplayName,
			CreatedAt:   time.Now(),
		}
		if err := st.AddParticipant(r.Context(), host); err != nil {
			http.Error(w, "failed to seat host", http.StatusInternalServerError)
			return
		}

		h.Ensure(rm.ID)

		writeJSON(w, http.StatusCreated, createRoomResponse{
			RoomID:        rm.ID,
			Code:          code,
			ParticipantID: hostID,
			Seat:          host.Seat,
		})
	}
}

type joinRequest struct {
	DisplayName string `json:"display_name"`
}

type joinResponse struct {
	RoomID        string `json:"room_id"`
	ParticipantID string `json:"participant_id"`
	Seat          int    `json:"seat"`
}

func JoinRoom(h *hub.Hub, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DisplayName == "" {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		rm, ok := lookupRoom(w, r, st)
		if !ok {
			return
		}

		p, err := h.Ensure(rm.ID).Join(req.DisplayName)
		if err != nil {
			writeCoordinatorError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, joinResponse{
			RoomID:        rm.ID,
			ParticipantID: p.ID,
			Seat:          p.Seat,
		})
	}
}

type startRequest struct {
	ParticipantID string `json:"participant_id"`
}

func StartRoom(h *hub.Hub, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ParticipantID == "" {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		rm, ok := lookupRoom(w, r, st)
		if !ok {
			return
		}

		if err := h.Ensure(rm.ID).Start(req.ParticipantID); err != nil {
			writeCoordinatorError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type submitRequest struct {
	ParticipantID string `json:"participant_id"`
	Category      string `json:"category"`
}

// SubmitCompletion records that a participant finished their task for
// the current round. No content crosses this endpoint; the chain
// artifact stays on the participant's device.
func SubmitCompletion(h *hub.Hub, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ParticipantID == "" {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		category := rounds.Category(req.Category)
		switch category {
		case rounds.CategoryWord, rounds.CategoryDraw, rounds.CategoryGuess:
		default:
			http.Error(w, "unknown category", http.StatusBadRequest)
			return
		}

		rm, ok := lookupRoom(w, r, st)
		if !ok {
			return
		}

		if err := h.Ensure(rm.ID).Submit(req.ParticipantID, category); err != nil {
			writeCoordinatorError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func lookupRoom(w http.ResponseWriter, r *http.Request, st store.Store) (*store.Room, bool) {
	code := chi.URLParam(r, "code")
	rm, err := st.GetRoomByCode(r.Context(), code)
	if errors.Is(err, store.ErrRoomNotFound) {
		http.Error(w, "room not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	return rm, true
}

func writeCoordinatorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, room.ErrRoomNotLobby),
		errors.Is(err, room.ErrRoomNotPlaying),
		errors.Is(err, room.ErrDuplicateCompletion),
		errors.Is(err, room.ErrWrongCategory),
		errors.Is(err, room.ErrNotEnoughPlayers):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, room.ErrNotHost):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, room.ErrUnknownParticipant), errors.Is(err, store.ErrRoomNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
