package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"annexcore/internal/core"
	"annexcore/pkg/domain"
)

type deleteFunc func(*core.Service, context.Context, string) (core.Result, error)

func (a *app) deleteCommand(entity, short string, del deleteFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
	}
	yes := confirmFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if !*yes {
			return errNotConfirmed
		}
		res, err := del(a.svc, cmd.Context(), args[0])
		if err != nil {
			return a.explain(err)
		}
		a.report(res)
		_, err = fmt.Fprintf(a.stdout, "deleted %s %s\n", entity, args[0])
		return err
	}
	return cmd
}

func (a *app) userCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage platform accounts"}

	var search, role, status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			users, err := a.svc.FilterUsers(core.Query{
				Search:     search,
				Categories: map[string]string{"role": role, "status": status},
			})
			if err != nil {
				return err
			}
			w := a.table()
			_, _ = fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tSTATUS\tREGISTERED")
			for _, u := range users {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					u.ID, u.Name, u.Email, u.Role, u.Status, u.RegisteredAt.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&search, "search", "", "search name and email")
	list.Flags().StringVar(&role, "role", core.AllFilter, "Student, Owner, Admin or All")
	list.Flags().StringVar(&status, "status", core.AllFilter, "Active, Suspended or All")

	setStatus := func(use string, to domain.UserStatus) *cobra.Command {
		return &cobra.Command{
			Use:   use + " ID",
			Short: fmt.Sprintf("Mark a user %s", strings.ToLower(string(to))),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, res, err := a.svc.SetUserStatus(cmd.Context(), args[0], to)
				if err != nil {
					return a.explain(err)
				}
				a.report(res)
				_, err = fmt.Fprintf(a.stdout, "%s is %s\n", u.ID, u.Status)
				return err
			},
		}
	}

	cmd.AddCommand(list,
		setStatus("suspend", domain.UserStatusSuspended),
		setStatus("activate", domain.UserStatusActive),
		a.deleteCommand("user", "Delete a user", (*core.Service).DeleteUser))
	return cmd
}

func (a *app) annexCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "annex", Short: "Moderate annex listings"}

	var search, status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List annexes",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			annexes, err := a.svc.FilterAnnexes(core.Query{
				Search:     search,
				Categories: map[string]string{"status": status},
			})
			if err != nil {
				return err
			}
			w := a.table()
			_, _ = fmt.Fprintln(w, "ID\tTITLE\tCAMPUS\tUNIVERSITY\tPRICE\tSTATUS")
			for _, an := range annexes {
				university := domain.NameUnavailable
				if an.UniversityID != nil {
					university = a.svc.ResolveUniversityName(*an.UniversityID)
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					an.ID, an.Title, an.Campus, university, an.Price, an.Status)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&search, "search", "", "search title, campus and contact name")
	list.Flags().StringVar(&status, "status", core.AllFilter, "Pending, Active, Rejected, Expired or All")

	moderate := func(use, short string, fn func(*core.Service, context.Context, string) (core.Annex, core.Result, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				an, res, err := fn(a.svc, cmd.Context(), args[0])
				if err != nil {
					return a.explain(err)
				}
				a.report(res)
				_, err = fmt.Fprintf(a.stdout, "%s is %s\n", an.ID, an.Status)
				return err
			},
		}
	}

	attach := &cobra.Command{
		Use:   "attach ID FILE",
		Short: "Upload an image for an annex",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(filepath.Clean(args[1]))
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			contentType := mime.TypeByExtension(filepath.Ext(args[1]))
			an, res, err := a.svc.AttachAnnexImage(cmd.Context(), args[0], filepath.Base(args[1]), f, contentType)
			if err != nil {
				return a.explain(err)
			}
			a.report(res)
			_, err = fmt.Fprintln(a.stdout, an.Images[len(an.Images)-1])
			return err
		},
	}

	url := &cobra.Command{
		Use:   "url REF",
		Short: "Resolve an image reference to a fetchable URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.svc.AttachmentURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, u)
			return err
		},
	}

	cmd.AddCommand(list,
		moderate("approve", "Approve a pending annex", (*core.Service).ApproveAnnex),
		moderate("reject", "Reject a pending annex", (*core.Service).RejectAnnex),
		attach, url,
		a.deleteCommand("annex", "Delete an annex and its images", (*core.Service).DeleteAnnex))
	return cmd
}

func (a *app) analyticsCommand() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Print dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := a.svc.Analytics(cmd.Context(), top)
			if err != nil {
				return err
			}
			w := a.table()
			_, _ = fmt.Fprintf(w, "users\t%d\n", stats.TotalUsers)
			_, _ = fmt.Fprintf(w, "annexes\t%d\n", stats.TotalAnnexes)
			_, _ = fmt.Fprintf(w, "announcements\t%d\n", stats.TotalAnnouncements)
			section := func(title string, counts []core.NamedCount) {
				_, _ = fmt.Fprintf(w, "\n%s\n", title)
				for _, c := range counts {
					_, _ = fmt.Fprintf(w, "  %s\t%d\n", c.Name, c.Count)
				}
			}
			section("annex status", stats.AnnexStatus)
			section("annexes per university", stats.AnnexesPerUniversity)
			section("annexes per district", stats.AnnexesPerDistrict)
			_, _ = fmt.Fprintln(w, "\nnew users per month")
			for _, m := range stats.MonthlyNewUsers {
				_, _ = fmt.Fprintf(w, "  %s\t%d\n", m.Month, m.Users)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&top, "top", 5, "entries per ranking, 0 for all")
	return cmd
}

func (a *app) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "snapshot", Short: "Export or import the full store as JSON"}

	export := &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write the store snapshot to FILE or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			snap, err := a.svc.ExportSnapshot()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return core.EncodeSnapshot(a.stdout, snap)
			}
			f, err := os.Create(filepath.Clean(args[0]))
			if err != nil {
				return err
			}
			if err := core.EncodeSnapshot(f, snap); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the store contents with a snapshot",
		Args:  cobra.ExactArgs(1),
	}
	yes := confirmFlag(importCmd)
	importCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if !*yes {
			return errNotConfirmed
		}
		f, err := os.Open(filepath.Clean(args[0]))
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		snap, err := core.DecodeSnapshot(f)
		if err != nil {
			return err
		}
		if err := a.svc.ImportSnapshot(cmd.Context(), snap); err != nil {
			return err
		}
		_, err = fmt.Fprintf(a.stdout, "imported %d annexes, %d users\n", len(a.svc.ListAnnexes()), len(a.svc.ListUsers()))
		return err
	}

	cmd.AddCommand(export, importCmd)
	return cmd
}
