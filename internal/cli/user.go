package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/gradebook/internal/auth"
	"github.com/spf13/cobra"
)

func userCmd(opts *options) *cobra.Command {
	c := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	c.AddCommand(userRegisterCmd(opts), userLoginCmd(opts))
	return c
}

func userRegisterCmd(opts *options) *cobra.Command {
	var nu auth.NewUser

	c := &cobra.Command{
		Use:   "register",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if nu.Password == "" {
				in := bufio.NewReader(cmd.InOrStdin())
				nu.Password = prompt(cmd.OutOrStdout(), in, "Password: ")
				nu.ConfirmPassword = prompt(cmd.OutOrStdout(), in, "Confirm password: ")
			} else if nu.ConfirmPassword == "" {
				nu.ConfirmPassword = nu.Password
			}

			return opts.withRuntime(cmd, true, func(rt *runtime) error {
				user, err := rt.users.Register(cmd.Context(), nu)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(
					fmt.Sprintf("Registered %s <%s>", user.Username, user.Email)))
				return nil
			})
		},
	}

	c.Flags().StringVar(&nu.Username, "username", "", "login name (required)")
	c.Flags().StringVar(&nu.Email, "email", "", "email address (required)")
	c.Flags().StringVar(&nu.FullName, "full-name", "", "display name (required)")
	c.Flags().StringVar(&nu.Password, "password", "", "password (prompted when omitted)")
	_ = c.MarkFlagRequired("username")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("full-name")
	return c
}

func userLoginCmd(opts *options) *cobra.Command {
	var creds auth.Credentials
	var format string

	c := &cobra.Command{
		Use:   "login",
		Short: "Check credentials and print a session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			if creds.Password == "" {
				creds.Password = prompt(cmd.OutOrStdout(), bufio.NewReader(cmd.InOrStdin()), "Password: ")
			}

			return opts.withRuntime(cmd, true, func(rt *runtime) error {
				session, err := rt.users.Login(cmd.Context(), creds)
				if err != nil {
					return err
				}
				if format == "json" {
					return writeJSON(cmd.OutOrStdout(), session)
				}
				w := cmd.OutOrStdout()
				fmt.Fprintln(w, okStyle.Render("Welcome, "+session.User.FullName))
				fmt.Fprintf(w, "Token:   %s\n", session.Token)
				fmt.Fprintf(w, "Expires: %s\n", session.ExpiresAt.Local().Format("2006-01-02 15:04"))
				return nil
			})
		},
	}

	c.Flags().StringVar(&creds.Username, "username", "", "login name (required)")
	c.Flags().StringVar(&creds.Password, "password", "", "password (prompted when omitted)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	_ = c.MarkFlagRequired("username")
	return c
}

// prompt writes label and reads one line from in.
func prompt(w io.Writer, in *bufio.Reader, label string) string {
	fmt.Fprint(w, label)
	line, _ := in.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
