// internal/app/features/preferences/handler.go
package preferences

import (
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/dalemusser/campaignhub/internal/app/system/inputval"
	"github.com/dalemusser/campaignhub/internal/app/system/respond"
	"go.uber.org/zap"
)

// Handler serves the device-local preferences kept in the session cookie.
// They work for anonymous visitors too.
type Handler struct {
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{SessionMgr: sm, Log: logger}
}

// ServePreferences serves GET /preferences.
func (h *Handler) ServePreferences(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, h.SessionMgr.Preferences(r))
}

// HandlePutPreferences serves PUT /preferences. lastProjectId must be empty
// or an object id; it is not checked against the project list.
func (h *Handler) HandlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var in auth.Preferences
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if in.LastProjectID != "" && !inputval.IsValidObjectID(in.LastProjectID) {
		respond.Error(w, h.Log, apperr.Validation("invalid_project_id", "lastProjectId must be a project id."))
		return
	}
	if err := h.SessionMgr.SavePreferences(w, r, in); err != nil {
		h.Log.Warn("save preferences", zap.Error(err))
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, in)
}
