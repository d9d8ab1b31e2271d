package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chertoha/contacthub/internal/common"
)

type detailResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

// respondError maps the shared error taxonomy onto HTTP status codes.
// Anything unmatched is logged and reported as a bare 500.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrConflict):
		writeDetail(w, http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
	case errors.Is(err, common.ErrUnconfirmed):
		writeDetail(w, http.StatusUnauthorized, "Email address not confirmed")
	case errors.Is(err, common.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
	case errors.Is(err, common.ErrUnprocessableToken):
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid email verification token")
	case errors.Is(err, common.ErrAlreadyConfirmed):
		writeDetail(w, http.StatusBadRequest, "Your email is already confirmed")
	case errors.Is(err, common.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Not found")
	default:
		h.logger.Error(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err.Error())
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}
