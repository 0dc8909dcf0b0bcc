package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"gather/internal/groups"
)

// Redirect targets are part of the observable contract.
const (
	pathHome           = "/"
	pathAccountProfile = "/account/profile"
	pathDashboard      = "/dashboard"
	pathGroupNotFound  = "/groups/not-found"
	pathGroupLimit     = "/groups/create/limit"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// redirect issues the SSR-style 302 the page contract expects.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusFound)
}

const maxJSONBodyBytes int64 = 1 << 20 // 1 MiB

var errPayloadTooLarge = errors.New("payload too large")

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	limited := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	defer func() {
		_ = limited.Close()
	}()

	decoder := json.NewDecoder(limited)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w (max %d bytes)", errPayloadTooLarge, maxErr.Limit)
		}
		return err
	}
	return nil
}

func writeJSONError(w http.ResponseWriter, err error) {
	if errors.Is(err, errPayloadTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}
	// Return generic message to avoid leaking internal JSON parsing details
	writeError(w, http.StatusBadRequest, "invalid request body")
}

func handleGroupServiceError(w http.ResponseWriter, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, groups.ErrNotFound):
		writeError(w, http.StatusNotFound, "group not found")
	case errors.Is(err, groups.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, groups.ErrNotResponsible):
		writeError(w, http.StatusForbidden, "only the responsible user may do this")
	case errors.Is(err, groups.ErrGroupLimit):
		writeError(w, http.StatusForbidden, "group limit reached")
	default:
		logger.Error("group service error", "error", err)
		writeError(w, http.StatusInternalServerError, "unexpected error")
	}
}
