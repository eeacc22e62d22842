package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkpress/blog-api/internal/middleware"
	"github.com/inkpress/blog-api/internal/models"
	"github.com/inkpress/blog-api/internal/repo"
	"github.com/inkpress/blog-api/internal/token"
)

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return &AuthHandler{
		Users:  repo.NewUserRepo(db),
		Tokens: token.NewService([]byte("test-secret"), time.Hour),
	}, mock, db
}

func TestAuthHandler_Register(t *testing.T) {
	h, mock, db := newAuthHandler(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Alice", "alice@x.com", sqlmock.AnyArg(), "user").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role", "created_at"}).
			AddRow(1, "Alice", "alice@x.com", "user", time.Now()))

	body, _ := json.Marshal(map[string]string{"name": "Alice", "email": "alice@x.com", "password": "secret123"})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Register status: got %d, want 201 (body: %s)", rr.Code, rr.Body.String())
	}
	var out struct {
		Status string      `json:"status"`
		Token  string      `json:"token"`
		User   models.User `json:"user"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Status != "success" || out.Token == "" || out.User.Email != "alice@x.com" {
		t.Errorf("unexpected response: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Register_NeverLeaksPasswordHash(t *testing.T) {
	h, mock, db := newAuthHandler(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Alice", "alice@x.com", sqlmock.AnyArg(), "user").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role", "created_at"}).
			AddRow(1, "Alice", "alice@x.com", "user", time.Now()))

	body, _ := json.Marshal(map[string]string{"name": "Alice", "email": "alice@x.com", "password": "secret123"})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if strings.Contains(rr.Body.String(), "password") || strings.Contains(rr.Body.String(), "$2a$") {
		t.Errorf("response leaks password material: %s", rr.Body.String())
	}
}

func TestAuthHandler_Register_IgnoresClientRole(t *testing.T) {
	h, mock, db := newAuthHandler(t)
	defer db.Close()

	// The INSERT must bind role "user" even though the client asked for admin.
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Eve", "eve@x.com", sqlmock.AnyArg(), "user").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role", "created_at"}).
			AddRow(3, "Eve", "eve@x.com", "user", time.Now()))

	body, _ := json.Marshal(map[string]string{
		"name": "Eve", "email": "eve@x.com", "password": "secret123", "role": "admin",
	})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Register status: got %d, want 201 (body: %s)", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	h, mock, db := newAuthHandler(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Alice", "alice@x.com", sqlmock.AnyArg(), "user").
		WillReturnError(&pq.Error{Code: "23505"})

	body, _ := json.Marshal(map[string]string{"name": "Alice", "email": "alice@x.com", "password": "secret123"})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Register status: got %d, want 400", rr.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["status"] != "error" || out["message"] != "User already exists" {
		t.Errorf("unexpected body: %v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	h, _, db := newAuthHandler(t)
	defer db.Close()

	body, _ := json.Marshal(map[string]string{"name": "Alice", "email": "alice@x.com", "password": "short"})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Register status: got %d, want 400", rr.Code)
	}
}

func userRow(t *testing.T, id int, name, email, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at"}).
		AddRow(id, name, email, string(hash), "user", time.Now())
}

func TestAuthHandler_Login(t *testing.T) {
	h, mock, db := newAuthHandler(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, email, password_hash, role, created_at`).
		WithArgs("alice@x.com").
		WillReturnRows(userRow(t, 1, "Alice", "alice@x.com", "secret123"))

	body, _ := json.Marshal(map[string]string{"email": "alice@x.com", "password": "secret123"})
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Login status: got %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Token == "" || out.User.ID != 1 {
		t.Errorf("unexpected response: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// Unknown email and wrong password must be indistinguishable in the response.
func TestAuthHandler_Login_UniformInvalidCredentials(t *testing.T) {
	h, mock, db := newAuthHandler(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, email, password_hash, role, created_at`).
		WithArgs("alice@x.com").
		WillReturnRows(userRow(t, 1, "Alice", "alice@x.com", "secret123"))
	mock.ExpectQuery(`SELECT id, name, email, password_hash, role, created_at`).
		WithArgs("ghost@x.com").
		WillReturnError(sql.ErrNoRows)

	var bodies []string
	for _, creds := range []map[string]string{
		{"email": "alice@x.com", "password": "wrongpass"},
		{"email": "ghost@x.com", "password": "whatever1"},
	} {
		body, _ := json.Marshal(creds)
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		h.Login(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("Login(%v) status: got %d, want 401", creds, rr.Code)
		}
		bodies = append(bodies, rr.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Errorf("response shape differs between unknown email and wrong password:\n%s\n%s", bodies[0], bodies[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h, _, db := newAuthHandler(t)
	defer db.Close()

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: 1, Name: "Alice", Email: "alice@x.com", Role: "user"}))
	rr := httptest.NewRecorder()
	h.Me(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Me status: got %d, want 200", rr.Code)
	}
	var out struct {
		Data struct {
			User models.User `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Data.User.ID != 1 || out.Data.User.Email != "alice@x.com" {
		t.Errorf("unexpected user: %+v", out.Data.User)
	}
}

func TestAuthHandler_Me_NoIdentity(t *testing.T) {
	h, _, db := newAuthHandler(t)
	defer db.Close()

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	rr := httptest.NewRecorder()
	h.Me(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Me status: got %d, want 401", rr.Code)
	}
}
