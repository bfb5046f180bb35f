package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillflow/quill/pkg/auth"
)

// tokenCmd issues development tokens signed with the configured secret.
var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue a signed access token for a user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if cfg.Auth.Secret == "" {
			fmt.Println("Error: auth.secret (or QUILL_AUTH_SECRET) is required to issue tokens")
			os.Exit(1)
		}

		admin, _ := cmd.Flags().GetBool("admin")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		perms, _ := cmd.Flags().GetStringSlice("perms")

		id := auth.Identity{UserID: args[0], Permissions: perms}
		if admin {
			id.Roles = append(id.Roles, auth.RoleAdmin)
		}

		gate := auth.NewGate([]byte(cfg.Auth.Secret), cfg.Auth.Issuer)
		token, err := gate.Issue(id, ttl)
		if err != nil {
			fmt.Printf("Error issuing token: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().Bool("admin", false, "Grant the admin role")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.Flags().StringSlice("perms", []string{
		auth.PermUpload, auth.PermContinue, auth.PermView,
	}, "Permission scopes to grant")
}
