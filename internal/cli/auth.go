package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/punchctl/internal/api"
	"github.com/roach88/punchctl/internal/punch"
	"github.com/roach88/punchctl/internal/route"
	"github.com/roach88/punchctl/internal/session"
)

type loginOptions struct {
	id       string
	password string
	clientID string
}

// loginView is the JSON result of login.
type loginView struct {
	User  session.Identity `json:"user"`
	Route route.Route      `json:"route"`
	Punch *punch.Record    `json:"punch,omitempty"`
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &loginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and find out where to go next",
		Long: `Sign in with a user id and password. The credential is kept in the
local session. Afterwards the open punch, if any, is looked up so the
next step (punch-in, punch-out or admin) can be shown.

Without --password the password is read from the first line of stdin.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				return runLogin(ctx, app, f, opts, cmd.InOrStdin())
			})
		},
	}

	cmd.Flags().StringVar(&opts.id, "id", "", "user id")
	cmd.Flags().StringVar(&opts.password, "password", "", "password (read from stdin when omitted)")
	cmd.Flags().StringVar(&opts.clientID, "client-id", "", "client id (defaults to the configured client_id)")

	return cmd
}

func runLogin(ctx context.Context, app *App, f *OutputFormatter, opts *loginOptions, stdin io.Reader) error {
	password := opts.password
	if password == "" {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	clientID := opts.clientID
	if clientID == "" {
		clientID = app.Config.ClientID
	}

	res, err := app.Client.Login(ctx, api.Credentials{ID: opts.id, Password: password, ClientID: clientID})
	if err != nil {
		return err
	}

	to, state := guard(ctx, app, "")
	view := loginView{User: res.User, Route: to}
	if state.Open {
		view.Punch = &state.Punch
	}

	return f.Render(view, func(w io.Writer) error {
		fmt.Fprintf(w, "Logged in as %s\n", res.User.ID)
		if state.Open {
			fmt.Fprintf(w, "Next: %s (open punch %s at %s)\n", to, state.Punch.ID, state.Punch.CustomerName)
		} else {
			fmt.Fprintf(w, "Next: %s\n", to)
		}
		return nil
	})
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "logout",
		Short:         "Forget the local session",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				if err := app.Client.Logout(ctx); err != nil {
					return err
				}
				return f.Success("Logged out")
			})
		},
	}
}

// NewPasswordCommand creates the password reset command group.
func NewPasswordCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Reset a forgotten password",
		Long: `Reset a forgotten password in three steps:

  punchctl password forgot --username U --email E   # emails an OTP
  punchctl password verify --username U --otp 123456 # prints a reset token
  punchctl password reset --token T --password P --confirm P`,
	}

	cmd.AddCommand(newPasswordForgotCommand(rootOpts))
	cmd.AddCommand(newPasswordVerifyCommand(rootOpts))
	cmd.AddCommand(newPasswordResetCommand(rootOpts))
	return cmd
}

type tokenView struct {
	Token string `json:"token,omitempty"`
}

func newPasswordForgotCommand(rootOpts *RootOptions) *cobra.Command {
	var username, email string
	cmd := &cobra.Command{
		Use:           "forgot",
		Short:         "Email a one-time password",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				token, err := app.Client.ForgotPassword(ctx, username, email)
				if err != nil {
					return err
				}
				return f.Render(tokenView{Token: token}, func(w io.Writer) error {
					fmt.Fprintln(w, "An OTP has been sent to your email")
					if token != "" {
						fmt.Fprintf(w, "Reset token: %s\n", token)
					}
					return nil
				})
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "user id")
	cmd.Flags().StringVar(&email, "email", "", "registered email address")
	return cmd
}

func newPasswordVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	var username, otp string
	cmd := &cobra.Command{
		Use:           "verify",
		Short:         "Exchange the emailed OTP for a reset token",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				token, err := app.Client.VerifyOTP(ctx, username, otp)
				if err != nil {
					return err
				}
				return f.Render(tokenView{Token: token}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Reset token: %s\n", token)
					return err
				})
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "user id")
	cmd.Flags().StringVar(&otp, "otp", "", "one-time password from the email")
	return cmd
}

func newPasswordResetCommand(rootOpts *RootOptions) *cobra.Command {
	var token, password, confirm string
	cmd := &cobra.Command{
		Use:           "reset",
		Short:         "Set a new password with a reset token",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				if err := app.Client.ResetPassword(ctx, token, password, confirm); err != nil {
					return err
				}
				return f.Success("Password updated")
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "reset token from verify")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	cmd.Flags().StringVar(&confirm, "confirm", "", "new password again")
	return cmd
}
