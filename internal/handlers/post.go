package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/inkpress/blog-api/internal/metrics"
	"github.com/inkpress/blog-api/internal/middleware"
	"github.com/inkpress/blog-api/internal/models"
	"github.com/inkpress/blog-api/internal/repo"
)

// PostStore is the post persistence layer consumed by the post handlers.
type PostStore interface {
	Create(ctx context.Context, title, content, image string, authorID int, authorName string) (*models.Post, error)
	GetByID(ctx context.Context, id int) (*models.Post, error)
	ListApproved(ctx context.Context) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID int) ([]models.Post, error)
	ListPending(ctx context.Context) ([]models.Post, error)
	CountPending(ctx context.Context) (int, error)
	Update(ctx context.Context, id int, title, content, image *string) (*models.Post, error)
	Delete(ctx context.Context, id int) error
	Approve(ctx context.Context, id int) (*models.Post, error)
}

// ModerationStore records and lists moderation log entries.
type ModerationStore interface {
	Log(ctx context.Context, userID int, action string, postID int, details string) error
	List(ctx context.Context, limit, offset int) ([]models.ModerationEntry, error)
}

// ==========================
// PostHandler
// ==========================
type PostHandler struct {
	Posts  PostStore
	ModLog ModerationStore // optional; nil disables logging
}

// postList builds the list envelope fields. A nil slice still serializes as [].
func postList(posts []models.Post) map[string]interface{} {
	if posts == nil {
		posts = []models.Post{}
	}
	return map[string]interface{}{
		"results": len(posts),
		"data":    map[string]interface{}{"posts": posts},
	}
}

// ==========================
// List Posts (public: approved only, newest first)
// ==========================
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Posts.ListApproved(r.Context())
	if err != nil {
		slog.Error("list posts", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSONSuccess(w, http.StatusOK, postList(posts))
}

// ==========================
// Get Post
// ==========================
// Pending posts are visible to their author and to admins; everyone else gets
// 403 so drafts never leak through direct-id fetches.
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetchPost(w, r)
	if !ok {
		return
	}

	requester, _ := middleware.UserFrom(r.Context())
	if !post.VisibleTo(requester) {
		JSONError(w, "Post is awaiting approval", http.StatusForbidden)
		return
	}

	JSONSuccess(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{"post": post},
	})
}

// ==========================
// My Posts (all states, author only)
// ==========================
func (h *PostHandler) MyPosts(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		JSONError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	posts, err := h.Posts.ListByAuthor(r.Context(), user.ID)
	if err != nil {
		slog.Error("my posts", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSONSuccess(w, http.StatusOK, postList(posts))
}

// ==========================
// Create Post
// ==========================
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		JSONError(w, "You need to be logged in to create a post", http.StatusUnauthorized)
		return
	}

	var input struct {
		Title   string `json:"title" validate:"required,max=100"`
		Content string `json:"content" validate:"required"`
		Image   string `json:"image" validate:"omitempty,url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, "Please provide title and content", http.StatusBadRequest)
		return
	}

	post, err := h.Posts.Create(r.Context(), input.Title, input.Content, input.Image, user.ID, user.Name)
	if err != nil {
		slog.Error("create post", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.logModeration(r.Context(), user.ID, "create", post.ID, "")
	h.refreshPendingGauge(r.Context())

	JSONSuccess(w, http.StatusCreated, map[string]interface{}{
		"data": map[string]interface{}{"post": post},
	})
}

// ==========================
// Update Post (partial; author only)
// ==========================
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		JSONError(w, "You need to be logged in to update a post", http.StatusUnauthorized)
		return
	}

	post, ok := h.fetchPost(w, r)
	if !ok {
		return
	}
	if post.AuthorID != user.ID {
		JSONError(w, "You are not authorized to update this post", http.StatusForbidden)
		return
	}

	var input struct {
		Title   *string `json:"title" validate:"omitempty,min=1,max=100"`
		Content *string `json:"content" validate:"omitempty,min=1"`
		Image   *string `json:"image" validate:"omitempty,url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, validationFields(err))
		return
	}

	updated, err := h.Posts.Update(r.Context(), post.ID, input.Title, input.Content, input.Image)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "No post found with that ID", http.StatusNotFound)
			return
		}
		slog.Error("update post", "err", err, "post_id", post.ID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONSuccess(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{"post": updated},
	})
}

// ==========================
// Delete Post (author only)
// ==========================
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		JSONError(w, "You need to be logged in to delete a post", http.StatusUnauthorized)
		return
	}

	post, ok := h.fetchPost(w, r)
	if !ok {
		return
	}
	if post.AuthorID != user.ID {
		JSONError(w, "You are not authorized to delete this post", http.StatusForbidden)
		return
	}

	if err := h.Posts.Delete(r.Context(), post.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "No post found with that ID", http.StatusNotFound)
			return
		}
		slog.Error("delete post", "err", err, "post_id", post.ID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.logModeration(r.Context(), user.ID, "delete", post.ID, "")
	h.refreshPendingGauge(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

// ==========================
// Pending Posts (admin moderation queue)
// ==========================
func (h *PostHandler) PendingPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Posts.ListPending(r.Context())
	if err != nil {
		slog.Error("pending posts", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSONSuccess(w, http.StatusOK, postList(posts))
}

// ==========================
// Approve Post (admin; one-way)
// ==========================
func (h *PostHandler) ApprovePost(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		JSONError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		JSONError(w, "Invalid post id", http.StatusBadRequest)
		return
	}

	post, err := h.Posts.Approve(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "No post found with that ID", http.StatusNotFound)
			return
		}
		slog.Error("approve post", "err", err, "post_id", id)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.logModeration(r.Context(), user.ID, "approve", post.ID, "")
	metrics.IncPostApprovals()
	h.refreshPendingGauge(r.Context())

	JSONSuccess(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{"post": post},
	})
}

// ==========================
// Moderation Log (admin)
// ==========================
func (h *PostHandler) ListModerationLog(w http.ResponseWriter, r *http.Request) {
	if h.ModLog == nil {
		JSONSuccess(w, http.StatusOK, map[string]interface{}{
			"results": 0,
			"data":    map[string]interface{}{"entries": []models.ModerationEntry{}},
		})
		return
	}

	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 200 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	entries, err := h.ModLog.List(r.Context(), limit, offset)
	if err != nil {
		slog.Error("moderation log", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.ModerationEntry{}
	}
	JSONSuccess(w, http.StatusOK, map[string]interface{}{
		"results": len(entries),
		"data":    map[string]interface{}{"entries": entries},
	})
}

// fetchPost parses the id URL param and loads the post, writing the 400/404
// responses itself. The bool reports whether the caller may continue.
func (h *PostHandler) fetchPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		JSONError(w, "Invalid post id", http.StatusBadRequest)
		return nil, false
	}

	post, err := h.Posts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "No post found with that ID", http.StatusNotFound)
			return nil, false
		}
		slog.Error("get post", "err", err, "post_id", id)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return nil, false
	}
	return post, true
}

func (h *PostHandler) logModeration(ctx context.Context, userID int, action string, postID int, details string) {
	if h.ModLog == nil {
		return
	}
	if err := h.ModLog.Log(ctx, userID, action, postID, details); err != nil {
		slog.Error("moderation log write", "err", err, "action", action, "post_id", postID)
	}
}

func (h *PostHandler) refreshPendingGauge(ctx context.Context) {
	n, err := h.Posts.CountPending(ctx)
	if err != nil {
		slog.Error("count pending", "err", err)
		return
	}
	metrics.SetPostsPending(n)
}
