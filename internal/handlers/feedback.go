package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/inkpress/blog-api/internal/models"
)

// FeedbackStore is the append-only sink for feedback and subscriptions.
type FeedbackStore interface {
	Add(ctx context.Context, name, email, feedback string) (*models.Feedback, error)
	AddSubscriber(ctx context.Context, email string) (*models.Subscriber, error)
}

// ==========================
// FeedbackHandler
// ==========================
type FeedbackHandler struct {
	Store FeedbackStore
}

// ==========================
// Submit Feedback
// ==========================
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Feedback string `json:"feedback" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, "Please provide name, email and feedback", http.StatusBadRequest)
		return
	}

	if _, err := h.Store.Add(r.Context(), input.Name, input.Email, input.Feedback); err != nil {
		slog.Error("save feedback", "err", err)
		JSONError(w, "Failed to save feedback", http.StatusInternalServerError)
		return
	}

	JSONSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Feedback saved successfully",
	})
}

// ==========================
// Subscribe
// ==========================
func (h *FeedbackHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, "Please provide an email address", http.StatusBadRequest)
		return
	}

	if _, err := h.Store.AddSubscriber(r.Context(), input.Email); err != nil {
		slog.Error("save subscriber", "err", err)
		JSONError(w, "Failed to save subscriber", http.StatusInternalServerError)
		return
	}

	JSONSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Thank you for subscribing to our newsletter!",
	})
}
