package main

import (
	"fmt"
	"os"

	"github.com/inkpress/blog-api/cmd/cli/auth"
	"github.com/inkpress/blog-api/cmd/cli/posts"
	"github.com/inkpress/blog-api/cmd/cli/root"
	"github.com/inkpress/blog-api/cmd/cli/users"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	posts.InitPosts(rootCmd)
	users.InitUsers(rootCmd)

	// Execute the root Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
