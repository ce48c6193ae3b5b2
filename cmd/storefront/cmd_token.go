package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

var (
	tokenSubject string
	tokenRole    string
	tokenTTL     time.Duration
)

// storefront token:issue: mint a bearer token for the admin API.
var tokenIssueCmd = &cobra.Command{
	Use:   "token:issue",
	Short: "Issue a signed bearer token for /api/admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		token, err := auth.GenerateToken(tokenSubject, tokenRole, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenSubject, "subject", "admin", "token subject")
	tokenIssueCmd.Flags().StringVar(&tokenRole, "role", auth.RoleAdmin, "role claim")
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
