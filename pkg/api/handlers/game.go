package handlers

import (
	"errors"
	"net/http"

	"github.com/cbodonnell/minimmo/pkg/game"
	"github.com/cbodonnell/minimmo/pkg/game/types"
	"github.com/cbodonnell/minimmo/pkg/log"
	"github.com/cbodonnell/minimmo/pkg/repositories"
	"github.com/cbodonnell/minimmo/pkg/repositories/models"
)

type MoveRequest struct {
	Direction string `json:"direction"`
}

// AttackRequest accepts camelCase keys and their snake_case spellings.
// A camelCase key wins when both are sent.
type AttackRequest struct {
	AttackerID *int64 `json:"attackerId"`
	TargetID   *int64 `json:"targetId"`
	SessionHP  *int   `json:"sessionHp"`

	AttackerIDSnake *int64 `json:"attacker_id"`
	TargetIDSnake   *int64 `json:"target_id"`
	SessionHPSnake  *int   `json:"session_hp"`
}

func (req AttackRequest) gameRequest() (game.AttackRequest, bool) {
	attackerID := coalescePtr(req.AttackerID, req.AttackerIDSnake)
	targetID := coalescePtr(req.TargetID, req.TargetIDSnake)
	if attackerID == nil || targetID == nil {
		return game.AttackRequest{}, false
	}
	return game.AttackRequest{
		AttackerID: *attackerID,
		TargetID:   *targetID,
		SessionHP:  coalescePtr(req.SessionHP, req.SessionHPSnake),
	}, true
}

func coalescePtr[T any](values ...*T) *T {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func HandleSpawn(gameManager *game.GameManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, err := pathID(r, "characterID")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		position, err := gameManager.Spawn(r.Context(), characterID)
		if err != nil {
			if errors.Is(err, game.ErrGridFull) {
				http.Error(w, "No free cell available", http.StatusConflict)
				return
			}
			notFoundOr(w, err, characterNotFound, "Failed to spawn character")
			return
		}
		writeJSON(w, http.StatusOK, position)
	}
}

func HandleMove(gameManager *game.GameManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, err := pathID(r, "characterID")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var req MoveRequest
		if err := decodeJSON(w, r, &req); err != nil {
			http.Error(w, "Invalid move: "+err.Error(), http.StatusBadRequest)
			return
		}

		position, err := gameManager.Move(r.Context(), characterID, req.Direction)
		if err != nil {
			if errors.Is(err, types.ErrInvalidDirection) {
				http.Error(w, "Invalid direction", http.StatusBadRequest)
				return
			}
			notFoundOr(w, err, "Character has no position", "Failed to move character")
			return
		}
		writeJSON(w, http.StatusOK, position)
	}
}

func HandleAttack(gameManager *game.GameManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AttackRequest
		if err := decodeJSON(w, r, &req); err != nil {
			http.Error(w, "Invalid attack: "+err.Error(), http.StatusBadRequest)
			return
		}
		attack, ok := req.gameRequest()
		if !ok {
			http.Error(w, "attackerId and targetId are required", http.StatusBadRequest)
			return
		}

		result, err := gameManager.Attack(r.Context(), attack)
		if err != nil {
			switch {
			case errors.Is(err, game.ErrOutOfRange):
				http.Error(w, "Target out of range", http.StatusBadRequest)
				return
			case errors.Is(err, game.ErrSelfAttack):
				http.Error(w, "A character cannot attack itself", http.StatusBadRequest)
				return
			}
			notFoundOr(w, err, "Attacker or target not found", "Failed to attack")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func HandleListPositions(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := repository.ListPositionViews(r.Context())
		if err != nil {
			log.Error("failed to list positions: %v", err)
			http.Error(w, "Failed to list positions", http.StatusInternalServerError)
			return
		}
		if views == nil {
			views = []*models.PositionView{}
		}
		writeJSON(w, http.StatusOK, views)
	}
}
