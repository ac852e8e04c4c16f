package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty/internal/account"
	"github.com/evcraddock/realty/internal/models"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts directly in the database",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

type userCreateOptions struct {
	email, password, first, last, phone, role string
}

func newUserCreateCmd() *cobra.Command {
	var opts userCreateOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long:  "Create a user with the given role (Admin, Agent or Client) without going through the API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserCreate(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "email address")
	cmd.Flags().StringVar(&opts.password, "password", "", "password")
	cmd.Flags().StringVar(&opts.first, "first", "", "first name")
	cmd.Flags().StringVar(&opts.last, "last", "", "last name")
	cmd.Flags().StringVar(&opts.phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&opts.role, "role", string(models.RoleClient), "role (Admin|Agent|Client)")
	for _, name := range []string{"email", "password", "first", "last"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runUserCreate(ctx context.Context, opts userCreateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	role, err := models.ParseRole(opts.role)
	if err != nil {
		return err
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	svc := account.NewService(account.NewRepository(database))
	u, err := svc.Create(ctx, account.CreateInput{
		RegisterInput: account.RegisterInput{
			Email:       opts.email,
			Password:    opts.password,
			FirstName:   opts.first,
			LastName:    opts.last,
			PhoneNumber: opts.phone,
		},
		Role: role,
	})
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	if isJSON() {
		return printJSON(u)
	}
	fmt.Printf("✓ Created %s %s (%s) with id %s.\n", u.Role, u.FullName, u.Email, u.ID)
	return nil
}
