package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"

	"github.com/inkpress/blog-api/internal/repo"
)

func setRoleRequest(t *testing.T, id, role string) *http.Request {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"role": role})
	req := httptest.NewRequest("PATCH", "/api/auth/admin/users/"+id+"/role", bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestUserHandler_SetRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE users`).
		WithArgs("admin", 3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role", "created_at"}).
			AddRow(3, "Charlie", "charlie@x.com", "admin", time.Now()))

	h := &UserHandler{Users: repo.NewUserRepo(db)}
	rr := httptest.NewRecorder()
	h.SetRole(rr, setRoleRequest(t, "3", "admin"))

	if rr.Code != http.StatusOK {
		t.Fatalf("SetRole status: got %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	var out struct {
		Data struct {
			User struct {
				ID   int    `json:"id"`
				Role string `json:"role"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Data.User.ID != 3 || out.Data.User.Role != "admin" {
		t.Errorf("unexpected user: %+v", out.Data.User)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserHandler_SetRole_InvalidRole(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &UserHandler{Users: repo.NewUserRepo(db)}
	rr := httptest.NewRecorder()
	h.SetRole(rr, setRoleRequest(t, "3", "superuser"))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("SetRole status: got %d, want 400", rr.Code)
	}
}

func TestUserHandler_SetRole_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE users`).
		WithArgs("admin", 99).
		WillReturnError(sql.ErrNoRows)

	h := &UserHandler{Users: repo.NewUserRepo(db)}
	rr := httptest.NewRecorder()
	h.SetRole(rr, setRoleRequest(t, "99", "admin"))

	if rr.Code != http.StatusNotFound {
		t.Errorf("SetRole status: got %d, want 404", rr.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["message"] != "No user found with that ID" {
		t.Errorf("unexpected message: %q", out["message"])
	}
}
