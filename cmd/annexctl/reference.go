package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"annexcore/internal/core"
)

func (a *app) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample catalogue into an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.svc.Seed(cmd.Context())
			if err != nil {
				return a.explain(err)
			}
			a.report(res)
			_, err = fmt.Fprintf(a.stdout, "seeded %d provinces, %d districts, %d universities\n",
				len(a.svc.ListProvinces()), len(a.svc.ListDistricts()), len(a.svc.ListUniversities()))
			return err
		},
	}
}

func (a *app) provinceCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "province", Short: "Manage provinces"}

	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List provinces",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			provinces, err := a.svc.FilterProvinces(core.Query{Search: search})
			if err != nil {
				return err
			}
			w := a.table()
			_, _ = fmt.Fprintln(w, "ID\tNAME")
			for _, p := range provinces {
				_, _ = fmt.Fprintf(w, "%s\t%s\n", p.ID, p.Name)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&search, "search", "", "case-insensitive name search")

	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a province",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, res, err := a.svc.AddProvince(cmd.Context(), args[0])
			return a.created(p.ID, res, err)
		},
	}

	rename := &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a province",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, res, err := a.svc.UpdateProvince(cmd.Context(), args[0], args[1])
			return a.updated(p.ID, res, err)
		},
	}

	cmd.AddCommand(list, add, rename, a.deleteCommand("province", "Delete a province with its districts and universities", (*core.Service).DeleteProvince))
	return cmd
}

func (a *app) districtCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "district", Short: "Manage districts"}

	var province string
	list := &cobra.Command{
		Use:   "list",
		Short: "List districts, optionally of one province",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			districts, err := a.svc.FilterDistricts(core.Query{Categories: map[string]string{"province": province}})
			if err != nil {
				return err
			}
			w := a.table()
			_, _ = fmt.Fprintln(w, "ID\tNAME\tPROVINCE")
			for _, d := range districts {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Name, a.svc.ResolveProvinceName(d.ProvinceID))
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&province, "province", core.AllFilter, "province id")

	add := &cobra.Command{
		Use:   "add NAME PROVINCE_ID",
		Short: "Create a district",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := a.svc.NewDistrictForm()
			form.SetName(args[0])
			form.SelectProvince(args[1])
			rec, res, err := form.Submit(cmd.Context())
			return a.created(rec.ID, res, err)
		},
	}

	cmd.AddCommand(list, add, a.deleteCommand("district", "Delete a district with its universities", (*core.Service).DeleteDistrict))
	return cmd
}

func (a *app) universityCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "university", Short: "Manage universities"}

	var district string
	list := &cobra.Command{
		Use:   "list",
		Short: "List universities, optionally of one district",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			universities, err := a.svc.FilterUniversities(core.Query{Categories: map[string]string{"district": district}})
			if err != nil {
				return err
			}
			w := a.table()
			_, _ = fmt.Fprintln(w, "ID\tNAME\tDISTRICT")
			for _, u := range universities {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Name, a.svc.ResolveDistrictName(u.DistrictID))
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&district, "district", core.AllFilter, "district id")

	add := &cobra.Command{
		Use:   "add NAME PROVINCE_ID DISTRICT_ID",
		Short: "Create a university through the province and district selector",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := a.svc.NewUniversityForm()
			form.SetName(args[0])
			form.SelectProvince(args[1])
			if err := form.SelectDistrict(args[2]); err != nil {
				return err
			}
			rec, res, err := form.Submit(cmd.Context())
			return a.created(rec.ID, res, err)
		},
	}

	cmd.AddCommand(list, add, a.deleteCommand("university", "Delete a university", (*core.Service).DeleteUniversity))
	return cmd
}

func (a *app) created(id string, res core.Result, err error) error {
	if err != nil {
		return a.explain(err)
	}
	a.report(res)
	_, err = fmt.Fprintf(a.stdout, "created %s\n", id)
	return err
}

func (a *app) updated(id string, res core.Result, err error) error {
	if err != nil {
		return a.explain(err)
	}
	a.report(res)
	_, err = fmt.Fprintf(a.stdout, "updated %s\n", id)
	return err
}
