package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/chertoha/contacthub/internal/models"
	"github.com/chertoha/contacthub/internal/services"
)

const (
	defaultContactLimit = 100
	maxNameLen          = 50
	maxEmailLen         = 100
	maxPhoneLen         = 15
)

type contactRequest struct {
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	BirthDate      time.Time `json:"birth_date"`
	AdditionalData string    `json:"additional_data,omitempty"`
}

type contactUpdateRequest struct {
	FirstName      *string    `json:"first_name"`
	LastName       *string    `json:"last_name"`
	Email          *string    `json:"email"`
	Phone          *string    `json:"phone"`
	BirthDate      *time.Time `json:"birth_date"`
	AdditionalData *string    `json:"additional_data"`
}

type contactResponse struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	BirthDate      time.Time `json:"birth_date"`
	AdditionalData string    `json:"additional_data,omitempty"`
}

func toContactResponse(c *models.Contact) contactResponse {
	return contactResponse{
		ID:             c.ID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          c.Email,
		Phone:          c.Phone,
		BirthDate:      c.BirthDate,
		AdditionalData: c.AdditionalData,
	}
}

func toContactResponses(contacts []*models.Contact) []contactResponse {
	out := make([]contactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, toContactResponse(c))
	}
	return out
}

func (h *Handler) createContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if msg, ok := validateContact(req); !ok {
		writeDetail(w, http.StatusUnprocessableEntity, msg)
		return
	}

	contact, err := h.contacts.Create(r.Context(), services.ContactInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		BirthDate:      req.BirthDate,
		AdditionalData: req.AdditionalData,
	}, userFrom(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toContactResponse(contact))
}

func (h *Handler) listContacts(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", defaultContactLimit)
	search := r.URL.Query().Get("search")

	contacts, err := h.contacts.List(r.Context(), userFrom(r.Context()), offset, limit, search)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toContactResponses(contacts))
}

func (h *Handler) getContact(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}

	contact, err := h.contacts.Get(r.Context(), id, userFrom(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toContactResponse(contact))
}

func (h *Handler) updateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}

	var req contactUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	contact, err := h.contacts.Update(r.Context(), id, services.ContactUpdate{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		BirthDate:      req.BirthDate,
		AdditionalData: req.AdditionalData,
	}, userFrom(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toContactResponse(contact))
}

func (h *Handler) deleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}

	contact, err := h.contacts.Delete(r.Context(), id, userFrom(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toContactResponse(contact))
}

func (h *Handler) upcomingBirthdays(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.UpcomingBirthdays(r.Context(), userFrom(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toContactResponses(contacts))
}

func contactID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "contact id must be an integer")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func validateContact(req contactRequest) (string, bool) {
	switch {
	case strings.TrimSpace(req.FirstName) == "" || len(req.FirstName) > maxNameLen:
		return "first_name is required and must be at most 50 characters", false
	case strings.TrimSpace(req.LastName) == "" || len(req.LastName) > maxNameLen:
		return "last_name is required and must be at most 50 characters", false
	case req.Email == "" || !strings.Contains(req.Email, "@") || len(req.Email) > maxEmailLen:
		return "a valid email of at most 100 characters is required", false
	case req.Phone == "" || len(req.Phone) > maxPhoneLen:
		return "phone is required and must be at most 15 characters", false
	case req.BirthDate.IsZero():
		return "birth_date is required", false
	}
	return "", true
}
