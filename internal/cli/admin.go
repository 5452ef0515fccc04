package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/punchctl/internal/admin"
	"github.com/roach88/punchctl/internal/route"
)

// NewAdminCommand creates the admin command group.
func NewAdminCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Read-only administrator views",
		Long: `Browse users, customers and punch logs, see the dashboard summary,
and export punch logs to a spreadsheet. Listings are searched
case-insensitively and paged.`,
	}

	cmd.AddCommand(newAdminUsersCommand(rootOpts))
	cmd.AddCommand(newAdminCustomersCommand(rootOpts))
	cmd.AddCommand(newAdminLogsCommand(rootOpts))
	cmd.AddCommand(newAdminSummaryCommand(rootOpts))
	cmd.AddCommand(newAdminExportCommand(rootOpts))
	cmd.AddCommand(newAdminProfileCommand(rootOpts))
	cmd.AddCommand(newAdminPasswordCommand(rootOpts))
	return cmd
}

// adminCommand builds an admin subcommand whose body runs only with a
// credential.
func adminCommand(rootOpts *RootOptions, use, short string, fn func(ctx context.Context, app *App, f *OutputFormatter) error) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				if to, _ := guard(ctx, app, route.Admin); to != route.Admin {
					return ErrNotLoggedIn
				}
				return fn(ctx, app, f)
			})
		},
	}
}

func newAdminUsersCommand(rootOpts *RootOptions) *cobra.Command {
	list := &listFlags{}
	cmd := adminCommand(rootOpts, "users", "List users", func(ctx context.Context, app *App, f *OutputFormatter) error {
		users, err := app.Client.Users(ctx)
		if err != nil {
			return err
		}
		return renderPage(f, app, list, admin.SearchUsers(users, list.search), admin.WriteUsers)
	})
	list.register(cmd, "filter by user id")
	return cmd
}

func newAdminCustomersCommand(rootOpts *RootOptions) *cobra.Command {
	list := &listFlags{}
	cmd := adminCommand(rootOpts, "customers", "List customer master data", func(ctx context.Context, app *App, f *OutputFormatter) error {
		customers, err := app.Client.Master(ctx)
		if err != nil {
			return err
		}
		return renderPage(f, app, list, admin.SearchCustomers(customers, list.search), admin.WriteCustomers)
	})
	list.register(cmd, "filter by customer name")
	return cmd
}

func newAdminLogsCommand(rootOpts *RootOptions) *cobra.Command {
	list := &listFlags{}
	cmd := adminCommand(rootOpts, "logs", "List punch logs", func(ctx context.Context, app *App, f *OutputFormatter) error {
		logs, err := app.Client.PunchRecords(ctx)
		if err != nil {
			return err
		}
		return renderPage(f, app, list, admin.SearchLogs(logs, list.search), admin.WriteLogs)
	})
	list.register(cmd, "filter by username or customer")
	return cmd
}

func newAdminSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return adminCommand(rootOpts, "summary", "Show the dashboard summary", func(ctx context.Context, app *App, f *OutputFormatter) error {
		users, err := app.Client.Users(ctx)
		if err != nil {
			return err
		}
		customers, err := app.Client.Master(ctx)
		if err != nil {
			return err
		}
		logs, err := app.Client.PunchRecords(ctx)
		if err != nil {
			return err
		}

		summary := admin.Summarize(users, customers, logs)
		summary.Admin = adminName(ctx, app)
		return f.Render(summary, func(w io.Writer) error {
			return admin.WriteSummary(w, summary)
		})
	})
}

// adminName returns the stored admin display name, fetching the profile
// once when none is stored yet. A failed lookup only loses the greeting.
func adminName(ctx context.Context, app *App) string {
	name, err := app.Session.AdminName(ctx)
	if err != nil {
		app.Log.Warn("read admin name", zap.Error(err))
	}
	if name != "" {
		return name
	}
	p, err := app.Client.AdminProfile(ctx)
	if err != nil {
		app.Log.Warn("admin profile lookup failed", zap.Error(err))
		return ""
	}
	return p.Name
}

// exportView is the JSON result of admin export.
type exportView struct {
	Path string `json:"path"`
	Rows int    `json:"rows"`
}

func newAdminExportCommand(rootOpts *RootOptions) *cobra.Command {
	var output, search string
	cmd := adminCommand(rootOpts, "export", "Export punch logs to an .xlsx file", func(ctx context.Context, app *App, f *OutputFormatter) error {
		logs, err := app.Client.PunchRecords(ctx)
		if err != nil {
			return err
		}
		logs = admin.SearchLogs(logs, search)

		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		if err := admin.Export(file, logs); err != nil {
			file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("close %s: %w", output, err)
		}

		view := exportView{Path: output, Rows: len(logs)}
		return f.Render(view, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Exported %d punch log(s) to %s\n", view.Rows, view.Path)
			return err
		})
	})
	cmd.Flags().StringVarP(&output, "output", "o", "punch-logs.xlsx", "file to write")
	cmd.Flags().StringVarP(&search, "search", "s", "", "export only logs matching username or customer")
	return cmd
}

func newAdminProfileCommand(rootOpts *RootOptions) *cobra.Command {
	return adminCommand(rootOpts, "profile", "Show the signed-in admin", func(ctx context.Context, app *App, f *OutputFormatter) error {
		p, err := app.Client.AdminProfile(ctx)
		if err != nil {
			return err
		}
		return f.Render(p, func(w io.Writer) error {
			fmt.Fprintf(w, "Welcome, %s\n", p.Name)
			if p.Email != "" {
				fmt.Fprintf(w, "Email: %s\n", p.Email)
			}
			return nil
		})
	})
}

func newAdminPasswordCommand(rootOpts *RootOptions) *cobra.Command {
	var current, next string
	cmd := adminCommand(rootOpts, "password", "Change the admin password", func(ctx context.Context, app *App, f *OutputFormatter) error {
		if err := app.Client.UpdatePassword(ctx, current, next); err != nil {
			return err
		}
		return f.Success("Password updated")
	})
	cmd.Flags().StringVar(&current, "current", "", "current password")
	cmd.Flags().StringVar(&next, "new", "", "new password")
	return cmd
}
