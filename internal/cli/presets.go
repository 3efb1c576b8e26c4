package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/SeamNest/internal/model"
	"github.com/piwi3910/SeamNest/internal/project"
)

func newPresetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List fabric and cutter presets and cutter profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := loadInventory(a)
			if err != nil {
				return err
			}
			custom, err := project.LoadCustomProfiles(a.profilesPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "FABRICS:")
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "  Name\tWidth (mm)\tRoll (m)\tMaterial\tDirectional\tPrice/m\n")
			for _, f := range inv.Fabrics {
				fmt.Fprintf(w, "  %s\t%.0f\t%.1f\t%s\t%v\t%.2f\n", f.Name, f.Width, f.RollLength/1000, f.Material, f.Directional, f.PricePerMetre)
			}
			w.Flush()

			fmt.Fprintln(out)
			fmt.Fprintln(out, "CUTTERS:")
			w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "  Name\tProfile\tFeed\tPlunge\tSafe Z\tCut Z\n")
			for _, c := range inv.Cutters {
				fmt.Fprintf(w, "  %s\t%s\t%.0f\t%.0f\t%.1f\t%.1f\n", c.Name, c.Profile, c.FeedRate, c.PlungeRate, c.SafeZ, c.CutZ)
			}
			w.Flush()

			names := model.GetCutterProfileNames()
			for _, p := range custom {
				names = append(names, p.Name+" (custom)")
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "PROFILES: %s\n", strings.Join(names, ", "))
			return nil
		},
	}

	var profileName string
	addProfile := &cobra.Command{
		Use:   "add-profile <file.json>",
		Short: "Import a cutter profile into the custom profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.ImportProfile(args[0])
			if err != nil {
				return err
			}
			if profileName != "" {
				p.Name = profileName
			}
			custom, err := project.LoadCustomProfiles(a.profilesPath)
			if err != nil {
				return err
			}
			replaced := false
			for i := range custom {
				if custom[i].Name == p.Name {
					custom[i] = p
					replaced = true
				}
			}
			if !replaced {
				custom = append(custom, p)
			}
			if err := project.SaveCustomProfiles(a.profilesPath, custom); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile %q saved\n", p.Name)
			return nil
		},
	}
	addProfile.Flags().StringVar(&profileName, "name", "", "Store the profile under this name")

	cmd.AddCommand(addProfile, &cobra.Command{
		Use:   "export-profile <name> <file.json>",
		Short: "Write a built-in or custom cutter profile to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			custom, err := project.LoadCustomProfiles(a.profilesPath)
			if err != nil {
				return err
			}
			return project.ExportProfile(args[1], project.ResolveProfile(args[0], custom))
		},
	})
	return cmd
}

func loadInventory(a *app) (model.Inventory, error) {
	return project.LoadInventory(a.inventoryPath)
}
