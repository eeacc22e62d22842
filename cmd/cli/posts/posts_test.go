package posts

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

// captureOutput helps capture stdout during command execution.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func TestListPosts_TableOutput(t *testing.T) {
	payload := map[string]interface{}{
		"status":  "success",
		"results": 2,
		"data": map[string]interface{}{
			"posts": []map[string]interface{}{
				{"id": 1, "title": "First", "authorName": "alice", "approved": true, "createdAt": "2026-08-01T10:00:00Z"},
				{"id": 2, "title": "Second", "authorName": "bob", "approved": true, "createdAt": "2026-08-02T10:00:00Z"},
			},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/posts" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	_ = os.Setenv("BLOG_API_URL", srv.URL)
	defer os.Unsetenv("BLOG_API_URL")

	cmd := listPostsCmd()
	out := captureOutput(t, func() {
		if err := cmd.RunE(cmd, nil); err != nil {
			t.Errorf("list command: %v", err)
		}
	})

	for _, want := range []string{"First", "Second", "alice", "bob", "2 post(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestListPosts_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"error","message":"Server error"}`))
	}))
	defer srv.Close()

	_ = os.Setenv("BLOG_API_URL", srv.URL)
	defer os.Unsetenv("BLOG_API_URL")

	cmd := listPostsCmd()
	if err := cmd.RunE(cmd, nil); err == nil {
		t.Error("expected an error for a 500 response")
	}
}
