package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkpress/blog-api/internal/config"
)

// TestAPI_LoginCreateAndModerate is an integration test: it builds the full
// router with a sqlmock-backed DB, logs in to get a JWT, creates a post with
// the token, then verifies an anonymous reader is turned away until approval.
func TestAPI_LoginCreateAndModerate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	now := time.Now()

	userCols := []string{"id", "name", "email", "password_hash", "role", "created_at"}
	postCols := []string{"id", "title", "content", "image", "author_id", "author_name", "approved", "created_at", "updated_at"}

	// 1) Login: GetByEmail
	mock.ExpectQuery(`SELECT id, name, email, password_hash, role, created_at`).
		WithArgs("writer@x.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "Writer", "writer@x.com", string(hash), "user", now))

	// 2) POST /api/posts: auth middleware loads the user, then the insert,
	// the moderation log entry and the pending-count refresh.
	mock.ExpectQuery(`SELECT id, name, email, password_hash, role, created_at`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "Writer", "writer@x.com", string(hash), "user", now))
	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs("Hello", "First post body", "", 1, "Writer").
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow(7, "Hello", "First post body", "", 1, "Writer", false, now, now))
	mock.ExpectExec(`INSERT INTO moderation_log`).
		WithArgs(1, "create", 7, "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM posts`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	// 3) Anonymous GET of the pending post
	mock.ExpectQuery(`SELECT id, title, content`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow(7, "Hello", "First post body", "", 1, "Writer", false, now, now))

	cfg := config.Config{
		JWTSecret:   "test-secret-for-integration",
		JWTTTLHours: 1,
	}
	srv := httptest.NewServer(newRouter(db, cfg))
	defer srv.Close()

	// 1) Login
	loginBody, _ := json.Marshal(map[string]string{"email": "writer@x.com", "password": "secret123"})
	loginResp, err := http.Post(srv.URL+"/api/auth/login", "application/json", bytes.NewReader(loginBody))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer loginResp.Body.Close()
	if loginResp.StatusCode != http.StatusOK {
		t.Fatalf("login status: got %d, want 200", loginResp.StatusCode)
	}
	var loginOut struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(loginResp.Body).Decode(&loginOut); err != nil || loginOut.Token == "" {
		t.Fatalf("login response: %v", err)
	}

	// 2) Create a post with the Bearer token
	postBody, _ := json.Marshal(map[string]string{"title": "Hello", "content": "First post body"})
	req, _ := http.NewRequest("POST", srv.URL+"/api/posts", bytes.NewReader(postBody))
	req.Header.Set("Authorization", "Bearer "+loginOut.Token)
	req.Header.Set("Content-Type", "application/json")
	createResp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	defer createResp.Body.Close()
	if createResp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /api/posts status: got %d, want 201", createResp.StatusCode)
	}
	var createOut struct {
		Data struct {
			Post struct {
				ID       int  `json:"id"`
				Approved bool `json:"approved"`
			} `json:"post"`
		} `json:"data"`
	}
	if err := json.NewDecoder(createResp.Body).Decode(&createOut); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if createOut.Data.Post.ID != 7 || createOut.Data.Post.Approved {
		t.Errorf("unexpected created post: %+v", createOut.Data.Post)
	}

	// 3) Anonymous read of the pending post is rejected
	getResp, err := http.Get(srv.URL + "/api/posts/7")
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusForbidden {
		t.Fatalf("GET /api/posts/7 status: got %d, want 403", getResp.StatusCode)
	}
	var getOut map[string]string
	if err := json.NewDecoder(getResp.Body).Decode(&getOut); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if getOut["message"] != "Post is awaiting approval" {
		t.Errorf("unexpected message: %q", getOut["message"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
