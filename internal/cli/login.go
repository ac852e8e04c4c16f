package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty/internal/client"
)

func newLoginCmd() *cobra.Command {
	var email, password, server string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store a token",
		Long:  "Signs in with email and password and stores the returned bearer token for later commands. The password is read from stdin when not given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Print("Password: ")
				p, err := readPassword(os.Stdin)
				if err != nil {
					return err
				}
				password = p
			}
			return runLogin(email, password, server)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted if omitted)")
	cmd.Flags().StringVar(&server, "server", "", "server URL (default: from config or "+defaultServerURL+")")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// readPassword reads one line from r.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading input: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("no password provided")
	}
	return line, nil
}

func runLogin(email, password, serverFlag string) error {
	serverURL := serverFlag
	if serverURL == "" {
		serverURL = getServerURL()
	}

	resp, err := client.New(serverURL, "").Login(email, password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	cfg := storedConfig()
	cfg.Token = resp.Token
	cfg.Email = resp.User.Email
	cfg.ExpiresAt = resp.ExpiresAt.UTC()
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
	}

	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if isJSON() {
		return printJSON(resp.User)
	}
	fmt.Printf("✓ Logged in as %s (%s). Token expires %s.\n",
		resp.User.Email, resp.User.Role, resp.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}
