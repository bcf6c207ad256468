package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Oniqq60/task_system_control/taskclient/internal/session"
)

func newLoginCmd(rt *runtime) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if password == "" {
				if password, err = rt.readLine(cmd, "Password: "); err != nil {
					return err
				}
			}
			user, err := rt.app.Session.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", displayName(user.Name, user.Email))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(rt *runtime) *cobra.Command {
	var creds session.Credentials
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if creds.Password == "" {
				if creds.Password, err = rt.readLine(cmd, "Password: "); err != nil {
					return err
				}
				if creds.ConfirmPassword, err = rt.readLine(cmd, "Confirm password: "); err != nil {
					return err
				}
			}
			if creds.ConfirmPassword == "" {
				creds.ConfirmPassword = creds.Password
			}
			user, err := rt.app.Session.SignUp(cmd.Context(), creds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created and signed in as %s\n", displayName(user.Name, user.Email))
			return nil
		},
	}
	cmd.Flags().StringVarP(&creds.Name, "name", "n", "", "full name")
	cmd.Flags().StringVarP(&creds.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "account password (read from stdin when omitted)")
	cmd.Flags().StringVar(&creds.ConfirmPassword, "confirm-password", "", "password confirmation (defaults to --password)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.app.Session.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Validate the session and print the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !rt.app.Session.SignedIn() {
				return session.ErrNotSignedIn
			}
			user, err := rt.app.Session.Validate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (user id %d)\n", displayName(user.Name, user.Email), rt.app.Session.UserID())
			return nil
		},
	}
}

// readLine prompts on stderr and reads one line from the command input.
func (rt *runtime) readLine(cmd *cobra.Command, prompt string) (string, error) {
	if rt.lines == nil {
		rt.lines = bufio.NewReader(cmd.InOrStdin())
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := rt.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func displayName(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
