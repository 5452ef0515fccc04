package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/punchctl/internal/admin"
	"github.com/roach88/punchctl/internal/api"
	"github.com/roach88/punchctl/internal/punch"
	"github.com/roach88/punchctl/internal/reconcile"
	"github.com/roach88/punchctl/internal/route"
)

// statusView is the JSON result of status.
type statusView struct {
	Route   route.Route      `json:"route"`
	User    string           `json:"user,omitempty"`
	Open    bool             `json:"open"`
	Source  reconcile.Source `json:"source,omitempty"`
	Punch   *punch.Record    `json:"punch,omitempty"`
	Elapsed string           `json:"elapsed,omitempty"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where you are: login, punch-in, punch-out or admin",
		Long: `Resolve the current screen the same way every protected command does:
without a credential it is login; otherwise the cached open punch is
trusted, and only when there is none is the backend asked.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(rootOpts, cmd, runStatus)
		},
	}
}

func runStatus(ctx context.Context, app *App, f *OutputFormatter) error {
	to, state := guard(ctx, app, "")

	view := statusView{Route: to, Open: state.Open, Source: state.Source}
	if user, ok, err := app.Session.User(ctx); err == nil && ok && to != route.Login {
		view.User = user.ID
	}
	if state.Open {
		view.Punch = &state.Punch
		if t, err := punch.ParseTime(state.Punch.PunchInTime); err == nil {
			view.Elapsed = punch.FormatElapsed(t, app.Now())
		}
	}

	return f.Render(view, func(w io.Writer) error {
		if to == route.Login {
			fmt.Fprintln(w, "Not logged in")
		} else {
			fmt.Fprintf(w, "Signed in as %s\n", view.User)
		}
		fmt.Fprintf(w, "Screen: %s\n", to)
		if !state.Open {
			return nil
		}

		p := state.Punch
		fmt.Fprintf(w, "Open punch %s at %s\n", p.ID, p.CustomerName)
		if view.Elapsed != "" {
			fmt.Fprintf(w, "  Punched in: %s (%s ago)\n", p.PunchInTime, view.Elapsed)
		} else if p.PunchInTime != "" {
			fmt.Fprintf(w, "  Punched in: %s\n", p.PunchInTime)
		}
		if p.PunchInLocation != "" {
			link, _ := punch.MapsURL(p.PunchInLocation)
			fmt.Fprintf(w, "  Location:   %s\n", link)
		}
		return nil
	})
}

type punchInOptions struct {
	customer string
	photo    string
	where    locationFlags
}

// NewPunchInCommand creates the punch-in command.
func NewPunchInCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &punchInOptions{}

	cmd := &cobra.Command{
		Use:   "punch-in",
		Short: "Open a punch at a customer site",
		Long: `Open a punch at a customer site with the current position and a photo.
Fails if you already have an open punch.`,
		Example:       `  punchctl punch-in --customer "Acme Corp" --location 10.52,76.21 --photo selfie.jpg`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				return runPunchIn(ctx, cmd, app, f, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.customer, "customer", "", "customer name (see `punchctl customers`)")
	cmd.Flags().StringVar(&opts.photo, "photo", "", "path of the photo to attach")
	opts.where.register(cmd)

	return cmd
}

func runPunchIn(ctx context.Context, cmd *cobra.Command, app *App, f *OutputFormatter, opts *punchInOptions) error {
	to, state := guard(ctx, app, route.PunchIn)
	switch to {
	case route.Login:
		return ErrNotLoggedIn
	case route.PunchOut:
		return fmt.Errorf("%w (punch %s at %s)", ErrAlreadyPunchedIn, state.Punch.ID, state.Punch.CustomerName)
	}

	location, err := opts.where.resolve(cmd)
	if err != nil {
		return err
	}

	req := punch.PunchIn{
		Location:     location,
		Time:         punch.FormatTime(app.Now(), app.Location),
		CustomerName: opts.customer,
		Photo:        opts.photo,
	}
	if err := punch.Validate(req); err != nil {
		return err
	}

	photo, err := os.Open(opts.photo)
	if err != nil {
		return fmt.Errorf("%w: photo: %w", ErrUsage, err)
	}
	defer photo.Close()

	rec, err := app.Client.PunchIn(ctx, req, photo)
	if err != nil {
		return err
	}

	return f.Render(rec, func(w io.Writer) error {
		if rec.ID == "" {
			_, err := fmt.Fprintf(w, "Punched in at %s\n", rec.CustomerName)
			return err
		}
		_, err := fmt.Fprintf(w, "Punched in at %s (punch %s)\n", rec.CustomerName, rec.ID)
		return err
	})
}

// punchOutView is the JSON result of punch-out.
type punchOutView struct {
	Punch     punch.Record `json:"punch"`
	TimeSpent string       `json:"time_spent,omitempty"`
}

// NewPunchOutCommand creates the punch-out command.
func NewPunchOutCommand(rootOpts *RootOptions) *cobra.Command {
	where := &locationFlags{}

	cmd := &cobra.Command{
		Use:           "punch-out",
		Short:         "Close the open punch",
		Example:       `  punchctl punch-out --lat 10.52 --lng 76.21`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				return runPunchOut(ctx, cmd, app, f, where)
			})
		},
	}
	where.register(cmd)

	return cmd
}

func runPunchOut(ctx context.Context, cmd *cobra.Command, app *App, f *OutputFormatter, where *locationFlags) error {
	to, state := guard(ctx, app, route.PunchOut)
	switch to {
	case route.Login:
		return ErrNotLoggedIn
	case route.PunchIn:
		return ErrNoOpenPunch
	}

	location, err := where.resolve(cmd)
	if err != nil {
		return err
	}

	now := app.Now()
	rec, err := app.Client.PunchOut(ctx, punch.PunchOut{
		ID:       state.Punch.ID,
		Time:     punch.FormatTime(now, app.Location),
		Location: location,
	})
	if err != nil {
		return err
	}
	if rec.CustomerName == "" {
		rec.CustomerName = state.Punch.CustomerName
	}

	view := punchOutView{Punch: rec}
	if in, err := punch.ParseTime(state.Punch.PunchInTime); err == nil {
		view.TimeSpent = punch.FormatDuration(int(now.Sub(in).Seconds()))
	}

	return f.Render(view, func(w io.Writer) error {
		if view.TimeSpent != "" {
			_, err := fmt.Fprintf(w, "Punched out of %s after %s (punch %s)\n", rec.CustomerName, view.TimeSpent, rec.ID)
			return err
		}
		_, err := fmt.Fprintf(w, "Punched out of %s (punch %s)\n", rec.CustomerName, rec.ID)
		return err
	})
}

// NewCustomersCommand creates the customers command.
func NewCustomersCommand(rootOpts *RootOptions) *cobra.Command {
	list := &listFlags{}

	cmd := &cobra.Command{
		Use:           "customers",
		Short:         "List the customer sites you can punch in at",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				if err := requireCredential(ctx, app); err != nil {
					return err
				}
				customers, err := app.Client.Customers(ctx)
				if err != nil {
					return err
				}
				return renderPage(f, app, list, admin.SearchCustomers(customers, list.search), admin.WriteCustomers)
			})
		},
	}
	list.register(cmd, "filter by customer name")

	return cmd
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List your recently completed punches",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				if err := requireCredential(ctx, app); err != nil {
					return err
				}
				records, err := app.Client.Completed(ctx, limit)
				if err != nil {
					return err
				}
				return f.Render(records, func(w io.Writer) error {
					return admin.WriteHistory(w, records)
				})
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", api.DefaultCompletedLimit, "number of punches to show")

	return cmd
}

// renderPage prints one page of items with its pager line.
func renderPage[T any](f *OutputFormatter, app *App, list *listFlags, items []T, table func(io.Writer, []T) error) error {
	rows, pages, current := admin.Page(items, list.page, app.Config.PageSize)
	view := pageView[T]{Items: rows, Page: current, Pages: pages, Total: len(items)}

	return f.Render(view, func(w io.Writer) error {
		if err := table(w, rows); err != nil {
			return err
		}
		admin.WritePager(w, current, pages)
		return nil
	})
}
