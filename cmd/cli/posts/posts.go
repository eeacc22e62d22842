package posts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/inkpress/blog-api/cmd/cli/config"
	"github.com/inkpress/blog-api/cmd/cli/output"
)

type post struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	AuthorName string `json:"authorName"`
	Approved   bool   `json:"approved"`
	CreatedAt  string `json:"createdAt"`
}

type postList struct {
	Results int `json:"results"`
	Data    struct {
		Posts []post `json:"posts"`
	} `json:"data"`
}

// ==========================
// Init Posts
// ==========================
func InitPosts(rootCmd *cobra.Command) {

	postsCmd := &cobra.Command{
		Use:   "posts",
		Short: "Manage blog posts",
	}

	postsCmd.AddCommand(
		listPostsCmd(),
		pendingPostsCmd(),
		approvePostCmd(),
		createPostCmd(),
	)

	rootCmd.AddCommand(postsCmd)
}

// ==========================
// LIST
// ==========================
func listPostsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List approved posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out postList
			if err := apiGet("/api/posts", "", &out); err != nil {
				return err
			}
			renderPosts(out)
			return nil
		},
	}
}

// ==========================
// PENDING (admin)
// ==========================
func pendingPostsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List posts awaiting approval (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if err != nil {
				return err
			}
			var out postList
			if err := apiGet("/api/posts/admin/pending", token, &out); err != nil {
				return err
			}
			renderPosts(out)
			return nil
		},
	}
}

// ==========================
// APPROVE (admin)
// ==========================
func approvePostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve [id]",
		Short: "Approve a pending post (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if err != nil {
				return err
			}

			req, err := http.NewRequest("PATCH", config.APIURL()+"/api/posts/admin/"+args[0]+"/approve", nil)
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
			}

			fmt.Println("Post", args[0], "approved.")
			return nil
		},
	}
}

// ==========================
// CREATE
// ==========================
func createPostCmd() *cobra.Command {

	var title string
	var content string
	var image string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post (starts in the approval queue)",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if err != nil {
				return err
			}

			payload := map[string]string{
				"title":   title,
				"content": content,
			}
			if image != "" {
				payload["image"] = image
			}
			body, _ := json.Marshal(payload)

			req, err := http.NewRequest("POST", config.APIURL()+"/api/posts", bytes.NewBuffer(body))
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			respBody, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusCreated {
				return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
			}

			var out struct {
				Data struct {
					Post post `json:"post"`
				} `json:"data"`
			}
			if err := json.Unmarshal(respBody, &out); err != nil {
				return err
			}
			fmt.Println("Post created with id", out.Data.Post.ID, "(awaiting approval)")
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "post title")
	cmd.Flags().StringVar(&content, "content", "", "post content")
	cmd.Flags().StringVar(&image, "image", "", "post image URL")

	return cmd
}

func apiGet(path, token string, out interface{}) error {
	req, err := http.NewRequest("GET", config.APIURL()+path, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}

func renderPosts(list postList) {
	rows := make([][]interface{}, 0, len(list.Data.Posts))
	for _, p := range list.Data.Posts {
		status := "pending"
		if p.Approved {
			status = "approved"
		}
		rows = append(rows, []interface{}{p.ID, p.Title, p.AuthorName, status, p.CreatedAt})
	}
	output.RenderTable([]string{"ID", "Title", "Author", "Status", "Created"}, rows)
	fmt.Println(list.Results, "post(s)")
}
