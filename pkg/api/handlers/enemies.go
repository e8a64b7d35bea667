package handlers

import (
	"net/http"

	"github.com/cbodonnell/minimmo/pkg/log"
	"github.com/cbodonnell/minimmo/pkg/repositories"
	"github.com/cbodonnell/minimmo/pkg/repositories/models"
)

func HandleListEnemies(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enemies, err := repository.ListEnemies(r.Context())
		if err != nil {
			log.Error("failed to list enemies: %v", err)
			http.Error(w, "Failed to list enemies", http.StatusInternalServerError)
			return
		}
		if enemies == nil {
			enemies = []*models.Enemy{}
		}
		writeJSON(w, http.StatusOK, enemies)
	}
}

// HandleCreateEnemy stores an enemy as given; enemies do not take part in grid occupancy.
func HandleCreateEnemy(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		create := models.NewEnemyCreate()
		if err := decodeJSON(w, r, &create); err != nil {
			http.Error(w, "Invalid enemy: "+err.Error(), http.StatusBadRequest)
			return
		}

		enemy, err := repository.CreateEnemy(r.Context(), create)
		if err != nil {
			log.Error("failed to create enemy: %v", err)
			http.Error(w, "Failed to create enemy", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, enemy)
	}
}
