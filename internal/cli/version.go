package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/SeamNest/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of seamnest",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "seamnest v%s\n", version.Version)
			fmt.Fprintf(out, "Built %s from %s\n", version.BuildTime, version.GitCommit)
		},
	}
}
