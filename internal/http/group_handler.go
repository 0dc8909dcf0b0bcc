package http

import (
	"log/slog"
	"net/http"

	"gather/internal/groups"
	"gather/internal/metrics"
)

// GroupHandler exposes the group mutation endpoints consumed by the pages.
// Authorization is re-derived from the session on every call; the payload's
// user_responsible is an assertion to verify, never a fact to trust.
type GroupHandler struct {
	groups   *groups.Service
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewGroupHandler creates a GroupHandler.
func NewGroupHandler(groupService *groups.Service, recorder metrics.Recorder, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{groups: groupService, recorder: recorder, logger: logger}
}

// Create handles POST /api/groups/create.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var input groups.CreateGroupInput
	if err := decodeJSONBody(w, r, &input); err != nil {
		writeJSONError(w, err)
		return
	}

	created, err := h.groups.Create(r.Context(), session.User, input)
	if err != nil {
		handleGroupServiceError(w, err, h.logger)
		return
	}

	h.recorder.RecordGroupCreated()
	writeJSON(w, http.StatusCreated, map[string]string{"_id": created.ID.Hex()})
}

// Delete handles DELETE /api/groups/delete. The client posts the group it
// is looking at; only the _id is meaningful here.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload groups.Group
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	if payload.ID.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	if err := h.groups.Delete(r.Context(), session.User, payload.ID); err != nil {
		handleGroupServiceError(w, err, h.logger)
		return
	}

	h.recorder.RecordGroupDeleted()
	w.WriteHeader(http.StatusNoContent)
}
