package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkpress/blog-api/internal/middleware"
	"github.com/inkpress/blog-api/internal/models"
	"github.com/inkpress/blog-api/internal/repo"
)

// dummyHash keeps login timing uniform when the email is unknown, so the
// response does not reveal whether the account exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserStore is the credential store consumed by the auth handlers.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	SetRole(ctx context.Context, id int, role string) (*models.User, error)
}

// TokenIssuer mints a signed bearer token for a user id.
type TokenIssuer interface {
	Issue(userID int) (string, error)
}

// ==========================
// AuthHandler
// ==========================
type AuthHandler struct {
	Users  UserStore
	Tokens TokenIssuer
}

// ==========================
// Register
// ==========================
// The role is always fixed to "user" server-side; any role in the request
// body is ignored. Elevation goes through the admin-only promote endpoint.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
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

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("register: hash password", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	user, err := h.Users.Create(r.Context(), input.Name, input.Email, string(hashed), models.RoleUser)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			JSONError(w, "User already exists", http.StatusBadRequest)
			return
		}
		slog.Error("register: create user", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		slog.Error("register: issue token", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONSuccess(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// ==========================
// Login
// ==========================
// Unknown email and wrong password produce the same response, and the bcrypt
// compare runs either way so timing does not separate the two cases.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
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

	user, lookupErr := h.Users.GetByEmail(r.Context(), input.Email)

	hash := dummyHash
	if lookupErr == nil {
		hash = user.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(input.Password))

	if lookupErr != nil || compareErr != nil {
		if lookupErr != nil && !errors.Is(lookupErr, repo.ErrNotFound) {
			slog.Error("login: lookup user", "err", lookupErr)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		JSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		slog.Error("login: issue token", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONSuccess(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// ==========================
// Me
// ==========================
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		JSONError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	JSONSuccess(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{"user": user},
	})
}

// validationFields flattens validator errors into field -> tag pairs for the
// error envelope.
func validationFields(err error) map[string]string {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return fields
}
