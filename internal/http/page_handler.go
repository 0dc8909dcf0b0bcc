package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"gather/internal/groups"
	"gather/internal/users"
)

// PageHandler backs the server-rendered routes. Each handler walks the
// same state machine: resolve session, check the resource, then either
// emit the page's view-model or redirect. There is no retry and no error
// page; denial is always a redirect.
type PageHandler struct {
	groups *groups.Service
	logger *slog.Logger
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(groupService *groups.Service, logger *slog.Logger) *PageHandler {
	return &PageHandler{groups: groupService, logger: logger}
}

// Home handles GET /. The landing page is public.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{"signedIn": false}
	if session := SessionFromContext(r.Context()); session != nil {
		payload["signedIn"] = true
	}
	writeJSON(w, http.StatusOK, payload)
}

// Account handles GET /account: a signed-in stub that forwards to the
// profile page.
func (h *PageHandler) Account(w http.ResponseWriter, r *http.Request) {
	if SessionFromContext(r.Context()) == nil {
		redirect(w, r, pathHome)
		return
	}
	redirect(w, r, pathAccountProfile)
}

// AccountProfile handles GET /account/profile.
func (h *PageHandler) AccountProfile(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if session == nil {
		redirect(w, r, pathHome)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": session})
}

// Dashboard handles GET /dashboard: the user's groups in membership order
// plus pending invitations addressed to their email.
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if session == nil {
		redirect(w, r, pathHome)
		return
	}

	index, err := h.groups.Index(r.Context(), session.User)
	if err != nil {
		h.logger.Error("dashboard index", "user_id", session.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":          session,
		"groups":        index.Groups,
		"notifications": index.Notifications,
	})
}

// GroupsCreate handles GET /groups/create. A user already owning the
// maximum number of groups is sent to the limit page instead.
func (h *PageHandler) GroupsCreate(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if session == nil {
		redirect(w, r, pathHome)
		return
	}
	if len(session.Data.Groups) == users.MaxGroupsPerUser {
		redirect(w, r, pathGroupLimit)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": session})
}

// GroupDetail handles GET /groups/{_id} and its /edit and /delete
// sub-pages; the guard is identical for all three.
//
// A malformed identifier is never echoed back: the not-found redirect
// carries ?_id= only when the id was well-formed but unauthorized or
// nonexistent. Ownership failures are indistinguishable from nonexistence
// on purpose.
func (h *PageHandler) GroupDetail(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "_id")
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		redirect(w, r, pathGroupNotFound)
		return
	}

	session := SessionFromContext(r.Context())
	if session == nil {
		redirect(w, r, pathHome)
		return
	}

	if !h.groups.IsMember(session.User, id) {
		redirect(w, r, notFoundWithID(raw))
		return
	}

	group, err := h.groups.Get(r.Context(), id)
	if errors.Is(err, groups.ErrNotFound) {
		redirect(w, r, notFoundWithID(raw))
		return
	}
	if err != nil {
		h.logger.Error("group page", "group_id", raw, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load group")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":  session,
		"group": group,
	})
}

// GroupNotFound handles GET /groups/not-found, the terminal page for every
// denied or dangling group reference.
func (h *PageHandler) GroupNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"_id": r.URL.Query().Get("_id"),
	})
}

// GroupLimit handles GET /groups/create/limit.
func (h *PageHandler) GroupLimit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"limit": users.MaxGroupsPerUser,
	})
}

func notFoundWithID(id string) string {
	return pathGroupNotFound + "?_id=" + url.QueryEscape(id)
}
