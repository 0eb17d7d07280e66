package main

import (
	"context"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/username/timeoff-tracker/internal/gist"
	"golang.org/x/term"
)

// readPassword is a seam for tests; prompts never echo the token.
var readPassword = term.ReadPassword

func authCmd() *cobra.Command {
	var gistID string
	var clear bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Store the GitHub token and gist id for remote sync",
		RunE: withApp(func(a *app, args []string) error {
			ctx := context.Background()

			if clear {
				if err := a.settings.SaveCredentials(ctx, "", ""); err != nil {
					return fmt.Errorf("failed to clear credentials: %w", err)
				}
				fmt.Println("Credentials cleared, using local storage")
				return nil
			}

			fmt.Print("GitHub token (input hidden): ")
			raw, err := readPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to read token: %w", err)
			}
			token := strings.TrimSpace(string(raw))
			if token == "" {
				return fmt.Errorf("token must not be empty")
			}

			client := gist.NewClient(a.cfg.Gist.APIEndpoint, token, gistID, logger)
			login, err := client.TestToken()
			if err != nil {
				return fmt.Errorf("token verification failed: %w", err)
			}
			fmt.Printf("Authenticated as %s\n", login)

			if err := a.settings.SaveCredentials(ctx, token, gistID); err != nil {
				return fmt.Errorf("failed to store credentials: %w", err)
			}
			if gistID != "" {
				fmt.Printf("Remote sync enabled with gist %s\n", gistID)
			} else {
				fmt.Println("Token stored. Set a gist id with --gist-id to enable remote sync")
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&gistID, "gist-id", "", "Gist id holding the holiday document")
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove stored credentials")

	return cmd
}
