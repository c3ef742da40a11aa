package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sakif/mushroom-tracker/internal/auth"
	"github.com/sakif/mushroom-tracker/internal/model"
	"github.com/sakif/mushroom-tracker/internal/service"
)

func getSpecimenCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "specimen",
		Short: "Record and list specimens",
	}
	cmd.AddCommand(getSpecimenAddCmd(rt), getSpecimenListCmd(rt))
	return cmd
}

func getSpecimenAddCmd(rt *runtime) *cobra.Command {
	var in service.SpecimenSubmission

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a specimen of a catalogued (or new) species",
		Long: `Record a specimen.

Private specimens (the default) and new species need --username and
--password. Anonymous users may add public specimens of known species.`,
		Example: `  mushroomctl specimen add -u demo -p password \
    --name Chanterelle --scientific-name "Cantharellus cibarius" \
    --location "Oak forest" --date 2024-05-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.loginIfGiven(); err != nil {
				return err
			}
			res, err := rt.app.Submission.Submit(rt.ctx, in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if rt.asJSON {
				return writeJSON(out, res)
			}
			fmt.Fprintln(out, res.Message)
			fmt.Fprintf(out, "Specimen %d saved under species %d (%s).\n", res.Specimen.ID, res.SpeciesID, res.SpeciesTitle)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "common name of the species (required)")
	f.StringVar(&in.ScientificName, "scientific-name", "", "scientific name of the species")
	f.BoolVar(&in.NewSpecies, "new-species", false, "add the species to the catalogue first")
	f.StringVar(&in.Location, "location", "", "where it was found (required)")
	f.StringVar(&in.Date, "date", "", "date found, YYYY-MM-DD (required)")
	f.StringVar(&in.Notes, "notes", "", "free-text notes")
	f.StringVar(&in.ImageURL, "image", "", "image URL")
	f.StringVar(&in.Latitude, "lat", "", "latitude, -90..90")
	f.StringVar(&in.Longitude, "lng", "", "longitude, -180..180")
	f.BoolVar(&in.Geocode, "geocode", false, "look up coordinates for --location")
	f.StringVar(&in.Privacy, "privacy", "private", "private or public")
	f.StringVar((*string)(&in.Species.Edibility), "edibility", "", "edibility of a new species")
	f.StringVar(&in.Species.Habitat, "habitat", "", "habitat of a new species")
	f.StringVar(&in.Species.Description, "description", "", "description of a new species")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func getSpecimenListCmd(rt *runtime) *cobra.Command {
	var (
		addedBy string
		mine    bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List visible specimens across all species, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if mine {
				if err := rt.login(); err != nil {
					return err
				}
				// AddedBy holds the registered spelling, not what was typed
				session, _ := auth.SessionFromContext(rt.ctx)
				addedBy = session.Username
			} else if err := rt.loginIfGiven(); err != nil {
				return err
			}

			list, err := rt.app.Aggregator.GetAllUserSpecimens(rt.ctx, addedBy)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if rt.asJSON {
				return writeJSON(out, list)
			}
			return printUserSpecimens(out, list)
		},
	}
	cmd.Flags().StringVar(&addedBy, "added-by", "", "only specimens added by this user")
	cmd.Flags().BoolVar(&mine, "mine", false, "only your own specimens (needs --username)")
	return cmd
}

func printUserSpecimens(out io.Writer, list []model.UserSpecimen) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSPECIES\tDATE\tLOCATION\tPRIVACY\tADDED BY")
	for _, s := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.MushroomTitle, s.Date, s.Location, s.Privacy, s.AddedBy)
	}
	return w.Flush()
}

func printSpecimens(out io.Writer, list []model.Specimen) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tLOCATION\tPRIVACY\tADDED BY")
	for _, s := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Date, s.Location, s.Privacy, s.AddedBy)
	}
	return w.Flush()
}
