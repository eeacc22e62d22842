package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/inkpress/blog-api/cmd/cli/config"
	"github.com/spf13/cobra"
)

// InitAuth registers auth-related CLI commands (login, logout) on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
}

// loginCmd creates a command that logs in a user and stores the JWT token locally.
func loginCmd() *cobra.Command {
	var email string
	var name string
	var register bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the blog platform API",
		Long:  "Authenticate with the blog platform API and store a JWT token for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("email is required")
			}

			var password string
			fmt.Print("Password: ")
			fmt.Scanln(&password)
			if password == "" {
				return fmt.Errorf("password is required")
			}

			client := http.DefaultClient

			var loginResp struct {
				Token string `json:"token"`
			}

			// Optionally register the user first; register already returns a token.
			if register {
				if name == "" {
					return fmt.Errorf("--name is required with --register")
				}
				payload := map[string]string{"name": name, "email": email, "password": password}
				if err := callJSONEndpoint(client, "/api/auth/register", payload, &loginResp); err != nil {
					return fmt.Errorf("failed to register user: %w", err)
				}
			} else {
				payload := map[string]string{"email": email, "password": password}
				if err := callJSONEndpoint(client, "/api/auth/login", payload, &loginResp); err != nil {
					return fmt.Errorf("failed to login: %w", err)
				}
			}
			if loginResp.Token == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}

			if err := config.SaveToken(loginResp.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Println("Login successful. Token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email to authenticate as")
	cmd.Flags().StringVar(&name, "name", "", "Display name (only with --register)")
	cmd.Flags().BoolVar(&register, "register", false, "Register the user before logging in")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the blog platform API",
		Long:  "Remove the locally stored JWT token.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.RemoveToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func callJSONEndpoint(client *http.Client, path string, payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", config.APIURL()+path, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return err
		}
	}

	return nil
}
