package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"jobtracker/tracker-service/internal/csvexport"
	"jobtracker/tracker-service/internal/deadline"
	"jobtracker/tracker-service/internal/tracker"
	"jobtracker/tracker-service/internal/views"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Apply the schema of the configured store",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema applied (%s).\n", rt.cfg.DatabaseDriver)
			return nil
		},
	}
}

// ─── export ──────────────────────────────────────────────────────────────────

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	User   string
	OutDir string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's applications to CSV",
		Long: `Write every application of --user to job_applications_<date>.csv in
--out. Nothing is written when the user has no applications.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts.RootOptions)
			if err != nil {
				return err
			}
			defer rt.Close()

			apps, err := rt.svc.List(cmd.Context(), opts.User)
			if err != nil {
				return err
			}
			data, err := csvexport.Export(apps)
			if errors.Is(err, csvexport.ErrNothingToExport) {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs to export.")
				return nil
			}
			if err != nil {
				return err
			}

			path := filepath.Join(opts.OutDir, csvexport.FileName(rt.svc.Now()))
			if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d jobs to %s\n", len(apps), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "owner id (required)")
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", ".", "output directory")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// ─── import ──────────────────────────────────────────────────────────────────

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create applications from a YAML list",
		Long: `Create one application per entry of a YAML list. Entries use the same
fields as the REST create body; tags may be a list or a comma separated string.

Example file:
  - company: Acme
    role: Backend Engineer
    status: interview
    tags: go, remote
    oaDeadline: 2024-06-12T18:00`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			var inputs []tracker.CreateInput
			if err := yaml.Unmarshal(raw, &inputs); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			rt, err := openRuntime(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer rt.Close()

			for i, in := range inputs {
				if _, err := rt.svc.Create(cmd.Context(), user, in); err != nil {
					return fmt.Errorf("entry %d (%s): %w", i+1, in.Company, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d jobs.\n", len(inputs))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "owner id (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// ─── move ────────────────────────────────────────────────────────────────────

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:          "move <id> <status>",
		Short:        "Move an application to another board column",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := tracker.ParseStatus(args[1])
			if err != nil {
				return err
			}

			rt, err := openRuntime(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer rt.Close()

			apps, err := rt.svc.ListForBoard(cmd.Context(), user)
			if err != nil {
				return err
			}
			board := views.NewBoard(apps, rt.svc.Now())
			err = board.Move(cmd.Context(), args[0], to, func(ctx context.Context, id string, st tracker.Status) error {
				_, err := rt.svc.UpdateStatus(ctx, user, id, st)
				return err
			})
			if errors.Is(err, views.ErrCardNotFound) {
				return fmt.Errorf("job %s not found", args[0])
			}
			if err != nil {
				return err
			}

			col := board.Column(to)
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s (%d in column).\n", args[0], to.Label(), len(col.Cards))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "owner id (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// ─── upcoming ────────────────────────────────────────────────────────────────

// NewUpcomingCommand creates the upcoming command.
func NewUpcomingCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		user   string
		format string
	)

	cmd := &cobra.Command{
		Use:          "upcoming",
		Short:        "List OA deadlines and interviews inside their reminder window",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("invalid format %q: must be text or json", format)
			}

			rt, err := openRuntime(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer rt.Close()

			apps, err := rt.svc.List(cmd.Context(), user)
			if err != nil {
				return err
			}
			reminders := deadline.Upcoming(apps, rt.svc.Now())

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(reminders)
			}
			writeReminders(cmd.OutOrStdout(), reminders)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "owner id (required)")
	cmd.Flags().StringVar(&format, "format", "text", "output format (json|text)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func writeReminders(w io.Writer, reminders []deadline.Reminder) {
	if len(reminders) == 0 {
		fmt.Fprintln(w, "No upcoming deadlines.")
		return
	}
	for _, r := range reminders {
		fmt.Fprintf(w, "%s / %s\n", r.Application.Company, r.Application.Role)
		for _, e := range r.Entries {
			fmt.Fprintf(w, "  %-9s %s  %s\n", e.Label, csvexport.Date(e.Date), describeDays(e.DaysLeft))
		}
	}
}

func describeDays(n int) string {
	switch {
	case n < 0:
		return "passed"
	case n == 0:
		return "today"
	case n == 1:
		return "in 1 day"
	default:
		return fmt.Sprintf("in %d days", n)
	}
}
