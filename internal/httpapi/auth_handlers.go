package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/chertoha/contacthub/internal/common"
	"github.com/chertoha/contacthub/internal/models"
	"github.com/chertoha/contacthub/internal/services"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type requestEmailRequest struct {
	Email string `json:"email"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Avatar:   user.Avatar,
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	if msg, ok := validateRegister(req); !ok {
		writeDetail(w, http.StatusUnprocessableEntity, msg)
		return
	}

	user, err := h.users.Register(r.Context(), services.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// login consumes OAuth2-style form credentials and returns a bearer token.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid form data")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	token, err := h.users.Login(r.Context(), username, password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) confirmEmail(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	if err := h.users.ConfirmEmail(r.Context(), token); err != nil {
		h.respondConfirmError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Email confirmed"})
}

func (h *Handler) requestEmail(w http.ResponseWriter, r *http.Request) {
	var req requestEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "email is required")
		return
	}

	if err := h.users.ResendConfirmation(r.Context(), req.Email); err != nil {
		h.respondError(w, r, err)
		return
	}

	// Deliberately neutral: never reveals whether the address exists.
	writeJSON(w, http.StatusOK, messageResponse{Message: "Check your email for confirmation"})
}

// respondConfirmError keeps the original confirmation-link behavior: a token
// whose email has no account behind it reads as a generic verification error.
func (h *Handler) respondConfirmError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, common.ErrNotFound) {
		writeDetail(w, http.StatusBadRequest, "Verification error")
		return
	}
	h.respondError(w, r, err)
}

func validateRegister(req registerRequest) (string, bool) {
	switch {
	case strings.TrimSpace(req.Username) == "":
		return "username is required", false
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		return "a valid email is required", false
	case len(req.Email) > 100:
		return "email must be at most 100 characters", false
	case req.Password == "":
		return "password is required", false
	}
	return "", true
}
