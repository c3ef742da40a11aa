package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func getUserCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(getUserRegisterCmd(rt))
	return cmd
}

func getUserRegisterCmd(rt *runtime) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:     "register",
		Short:   "Create an account from --username, --password and --email",
		Example: `  mushroomctl user register -u mia -p secret1 --email mia@example.com`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rt.username == "" || rt.password == "" || email == "" {
				return errors.New("--username, --password and --email are required")
			}
			if len(rt.password) < 6 {
				return errors.New("password must be at least 6 characters long")
			}
			user, err := rt.app.Auth.Register(rt.ctx, rt.username, rt.password, email)
			if err != nil {
				return err
			}
			if rt.asJSON {
				// never print the stored hash
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"username":       user.Username,
					"email":          user.Email,
					"registeredDate": user.RegisteredDate,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s <%s>.\n", user.Username, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	return cmd
}
