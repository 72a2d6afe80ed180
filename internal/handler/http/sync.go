package http

import (
	"io"
	"net/http"

	"github.com/ndedov/go-stash-sync/internal/app"
	"github.com/ndedov/go-stash-sync/internal/logger"
	"github.com/ndedov/go-stash-sync/internal/service"
	"github.com/ndedov/go-stash-sync/internal/utils"
)

func (h *Handler) syncNotes(w http.ResponseWriter, r *http.Request) {
	h.handleSync(w, r, h.services.NoteSync)
}

func (h *Handler) syncBookmarks(w http.ResponseWriter, r *http.Request) {
	h.handleSync(w, r, h.services.BookmarkSync)
}

func (h *Handler) syncFiles(w http.ResponseWriter, r *http.Request) {
	h.handleSync(w, r, h.services.FileSync)
}

// handleSync reads the raw batch envelope and hands it to the family's sync
// service. The envelope is passed through as bytes: the engine owns all
// parsing so that a malformed batch is rejected in one place.
func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request, svc service.SyncService) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.handleSync").Msg("no user ID was given")
		http.Error(w, app.MsgNoUserIDProvided, http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Err(err).Str("func", "*Handler.handleSync").Msg("error reading request body")
		http.Error(w, app.MsgErrorReadingBody, http.StatusBadRequest)
		return
	}

	result, err := svc.Sync(ctx, userID, body)
	if err != nil {
		log.Err(err).Str("func", "*Handler.handleSync").Msg("error reconciling batch")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, result, http.StatusOK)
}
