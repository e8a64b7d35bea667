package handlers

import (
	"net/http"

	"github.com/cbodonnell/minimmo/pkg/game"
	"github.com/cbodonnell/minimmo/pkg/log"
	"github.com/cbodonnell/minimmo/pkg/repositories"
	"github.com/cbodonnell/minimmo/pkg/repositories/models"
)

const characterNotFound = "Character not found"

func HandleCreateCharacter(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		create := models.NewCharacterCreate()
		if err := decodeJSON(w, r, &create); err != nil {
			http.Error(w, "Invalid character: "+err.Error(), http.StatusBadRequest)
			return
		}
		if create.Name == "" || create.Image == "" {
			http.Error(w, "Name and image are required", http.StatusBadRequest)
			return
		}

		character, err := repository.CreateCharacter(r.Context(), create)
		if err != nil {
			log.Error("failed to create character: %v", err)
			http.Error(w, "Failed to create character", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, character)
	}
}

func HandleCreateRandomCharacter(gameManager *game.GameManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		character, err := gameManager.CreateRandomCharacter(r.Context())
		if err != nil {
			log.Error("failed to create random character: %v", err)
			http.Error(w, "Failed to create character", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, character)
	}
}

func HandleListCharacters(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skip, err := queryInt(r, "skip", 0)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		limit, err := queryInt(r, "limit", repositories.DefaultListLimit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		characters, err := repository.ListCharacters(r.Context(), skip, limit)
		if err != nil {
			log.Error("failed to list characters: %v", err)
			http.Error(w, "Failed to list characters", http.StatusInternalServerError)
			return
		}
		if characters == nil {
			characters = []*models.Character{}
		}
		writeJSON(w, http.StatusOK, characters)
	}
}

func HandleCharacterStats(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := repository.CharacterStats(r.Context())
		if err != nil {
			log.Error("failed to get character stats: %v", err)
			http.Error(w, "Failed to get character stats", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func HandleGetCharacter(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, err := pathID(r, "characterID")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		character, err := repository.GetCharacter(r.Context(), characterID)
		if err != nil {
			notFoundOr(w, err, characterNotFound, "Failed to get character")
			return
		}
		writeJSON(w, http.StatusOK, character)
	}
}

func HandleUpdateCharacter(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, err := pathID(r, "characterID")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var update models.CharacterUpdate
		if err := decodeJSON(w, r, &update); err != nil {
			http.Error(w, "Invalid character update: "+err.Error(), http.StatusBadRequest)
			return
		}

		character, err := repository.UpdateCharacter(r.Context(), characterID, update)
		if err != nil {
			notFoundOr(w, err, characterNotFound, "Failed to update character")
			return
		}
		writeJSON(w, http.StatusOK, character)
	}
}

func HandleDeleteCharacter(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, err := pathID(r, "characterID")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		character, err := repository.DeleteCharacter(r.Context(), characterID)
		if err != nil {
			notFoundOr(w, err, characterNotFound, "Failed to delete character")
			return
		}
		writeJSON(w, http.StatusOK, character)
	}
}
