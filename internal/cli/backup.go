package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/SeamNest/internal/project"
)

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore app config, inventory and cutter profiles",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "export <file.json>",
		Short: "Write all application data to a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := loadInventory(a)
			if err != nil {
				return err
			}
			profiles, err := project.LoadCustomProfiles(a.profilesPath)
			if err != nil {
				return err
			}
			if err := project.ExportAllData(args[0], a.config, inv, profiles); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.json>",
		Short: "Restore application data from a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			if err := project.SaveAppConfig(a.appConfigPath, backup.Config); err != nil {
				return err
			}
			inv, err := loadInventory(a)
			if err != nil {
				return err
			}
			merged := project.MergeInventory(inv, backup.Inventory)
			if err := project.SaveInventory(a.inventoryPath, merged); err != nil {
				return err
			}
			if len(backup.CutterProfiles) > 0 {
				if err := project.SaveCustomProfiles(a.profilesPath, backup.CutterProfiles); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored backup from %s (created %s)\n", args[0], backup.CreatedAt)
			return nil
		},
	})
	return cmd
}
