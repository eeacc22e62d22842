package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/inkpress/blog-api/internal/models"
	"github.com/inkpress/blog-api/internal/repo"
)

// ==========================
// UserHandler (admin-only role management)
// ==========================
type UserHandler struct {
	Users UserStore
}

// ==========================
// Set Role
// ==========================
// The privileged elevation path. Registration never accepts a role, so the
// only way to mint an admin is through this endpoint (or direct SQL).
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		JSONError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	var input struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Role != models.RoleUser && input.Role != models.RoleAdmin {
		JSONValidationError(w, map[string]string{"role": "must be user or admin"})
		return
	}

	user, err := h.Users.SetRole(r.Context(), id, input.Role)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "No user found with that ID", http.StatusNotFound)
			return
		}
		slog.Error("set role", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONSuccess(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{"user": user},
	})
}
