package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sakif/mushroom-tracker/internal/model"
)

func getSpeciesCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "species",
		Short: "List, search and show catalogue species",
	}
	cmd.AddCommand(
		getSpeciesListCmd(rt),
		getSpeciesSearchCmd(rt),
		getSpeciesShowCmd(rt),
	)
	return cmd
}

func getSpeciesListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every species with its specimen counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.loginIfGiven(); err != nil {
				return err
			}
			views, err := rt.app.Aggregator.GetAllWithUserData(rt.ctx)
			if err != nil {
				return err
			}
			return printSpecies(cmd.OutOrStdout(), views, rt.asJSON)
		},
	}
}

func getSpeciesSearchCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Find species by name, scientific name, edibility, habitat or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.loginIfGiven(); err != nil {
				return err
			}
			views, err := rt.app.Aggregator.SearchAll(rt.ctx, args[0])
			if err != nil {
				return err
			}
			return printSpecies(cmd.OutOrStdout(), views, rt.asJSON)
		},
	}
}

func getSpeciesShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one species and the specimens you can see",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid species id %q", args[0])
			}
			if err := rt.loginIfGiven(); err != nil {
				return err
			}
			view, err := rt.app.Aggregator.GetSpeciesWithUserData(rt.ctx, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if rt.asJSON {
				return writeJSON(out, view)
			}
			return printSpeciesDetail(out, view)
		},
	}
}

func printSpecies(out io.Writer, views []model.SpeciesView, asJSON bool) error {
	if asJSON {
		return writeJSON(out, views)
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSCIENTIFIC NAME\tEDIBILITY\tPUBLIC\tPRIVATE")
	for _, v := range views {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\n",
			v.ID, v.Title, v.ScientificName, v.Edibility,
			len(v.PublicSpecimens), len(v.PrivateSpecimens))
	}
	return w.Flush()
}

func printSpeciesDetail(out io.Writer, v *model.SpeciesView) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%d\n", v.ID)
	fmt.Fprintf(w, "Title:\t%s\n", v.Title)
	fmt.Fprintf(w, "Scientific name:\t%s\n", v.ScientificName)
	fmt.Fprintf(w, "Edibility:\t%s\n", v.Edibility)
	fmt.Fprintf(w, "Habitat:\t%s\n", v.Habitat)
	if v.ContributedBy != "" {
		fmt.Fprintf(w, "Contributed by:\t%s\n", v.ContributedBy)
	}
	fmt.Fprintf(w, "Specimens:\t%d public, %d private\n", len(v.PublicSpecimens), len(v.PrivateSpecimens))
	if err := w.Flush(); err != nil {
		return err
	}
	if len(v.AllSpecimens) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	return printSpecimens(out, v.AllSpecimens)
}
