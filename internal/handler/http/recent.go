package http

import (
	"net/http"

	"github.com/ndedov/go-stash-sync/internal/app"
	"github.com/ndedov/go-stash-sync/internal/logger"
	"github.com/ndedov/go-stash-sync/internal/service"
	"github.com/ndedov/go-stash-sync/internal/utils"
	"github.com/ndedov/go-stash-sync/models"
)

func (h *Handler) recentNotes(w http.ResponseWriter, r *http.Request) {
	h.handleRecent(w, r, h.services.NoteSync)
}

func (h *Handler) recentBookmarks(w http.ResponseWriter, r *http.Request) {
	h.handleRecent(w, r, h.services.BookmarkSync)
}

func (h *Handler) recentFiles(w http.ResponseWriter, r *http.Request) {
	h.handleRecent(w, r, h.services.FileSync)
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request, svc service.SyncService) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.handleRecent").Msg("no user ID was given")
		http.Error(w, app.MsgNoUserIDProvided, http.StatusBadRequest)
		return
	}

	entities, err := svc.Recent(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.handleRecent").Msg("error listing recent activity")
		http.Error(w, app.MsgErrorListingRecent, statusFromError(err))
		return
	}

	response := models.RecentResponse{
		Entities: entities,
		Length:   len(entities),
	}

	utils.WriteJSON(w, response, http.StatusOK)
}
