package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/inkpress/blog-api/cmd/cli/config"
)

// ==========================
// Init Users
// ==========================
func InitUsers(rootCmd *cobra.Command) {

	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users (admin)",
	}

	usersCmd.AddCommand(promoteUserCmd())

	rootCmd.AddCommand(usersCmd)
}

// ==========================
// PROMOTE (admin)
// ==========================
func promoteUserCmd() *cobra.Command {

	var role string

	cmd := &cobra.Command{
		Use:   "promote [id]",
		Short: "Change a user's role (admin)",
		Long:  "Set a user's role. Registration always assigns the user role, so admin accounts are granted through this command.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if err != nil {
				return err
			}

			payload := map[string]string{"role": role}
			body, _ := json.Marshal(payload)

			req, err := http.NewRequest("PATCH", config.APIURL()+"/api/auth/admin/users/"+args[0]+"/role", bytes.NewBuffer(body))
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
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
			}

			fmt.Println("User", args[0], "is now", role)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "admin", "role to assign (user or admin)")

	return cmd
}
