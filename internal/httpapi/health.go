package httpapi

import "net/http"

// healthCheck verifies that the database answers a trivial query.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	var one int
	err := h.db.QueryRowContext(r.Context(), "SELECT 1").Scan(&one)
	if err != nil || one != 1 {
		if err != nil {
			h.logger.Error(r.Context(), "health check failed", "error", err.Error())
		}
		writeDetail(w, http.StatusInternalServerError, "Error connecting to the database")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Welcome to Contact Hub!"})
}
