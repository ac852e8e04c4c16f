package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty/internal/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and auth status",
		Long:  "Tests the connection to the server and checks if the stored token is valid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	serverURL := getServerURL()
	token := getToken()

	fmt.Printf("Server:  %s\n", serverURL)

	if token == "" {
		fmt.Println("Token:   not configured")
		fmt.Println("\nRun 'realty login' to authenticate.")
		return nil
	}

	prefix := token
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	fmt.Printf("Token:   %s…\n", prefix)

	if os.Getenv(envToken) == "" {
		if cfg := storedConfig(); cfg.tokenExpired(time.Now()) {
			fmt.Printf("Status:  ✗ token for %s expired %s\n", cfg.Email, cfg.ExpiresAt.Local().Format("2006-01-02 15:04"))
			fmt.Println("\nRun 'realty login' to re-authenticate.")
			return nil
		}
	}

	me, err := client.New(serverURL, token).Me()
	var apiErr *client.Error
	switch {
	case err == nil:
		fmt.Printf("Status:  ✓ connected as %s (%s)\n", me.Email, me.Role)
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		fmt.Println("Status:  ✗ invalid or expired token")
		fmt.Println("\nRun 'realty login' to re-authenticate.")
	case errors.As(err, &apiErr):
		fmt.Printf("Status:  ✗ unexpected response (%d)\n", apiErr.StatusCode)
	default:
		fmt.Printf("Status:  ✗ cannot reach server (%v)\n", err)
	}

	return nil
}
