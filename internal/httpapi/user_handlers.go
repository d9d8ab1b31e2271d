package httpapi

import (
	"net/http"
)

// maxAvatarBytes caps avatar upload size.
const maxAvatarBytes = 10 << 20

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUserResponse(userFrom(r.Context())))
}

func (h *Handler) updateAvatar(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "file field is required")
		return
	}
	defer file.Close()

	user, err := h.users.UpdateAvatar(r.Context(), userFrom(r.Context()), file,
		header.Header.Get("Content-Type"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
