package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/piwi3910/SeamNest/internal/project"
	"github.com/piwi3910/SeamNest/internal/store"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		dbPath string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded nesting runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.NewDB(a.historyPath(dbPath))
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := (&store.RunRepo{}).List(cmd.Context(), db, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ID\tDate\tSource\tFabric\tSheets\tPlaced\tLength (mm)\tEfficiency\tStatus\n")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d/%d\t%.1f\t%.1f%%\t%s\n",
					r.ID, time.Unix(r.CreatedAt, 0).Format("2006-01-02 15:04"), r.Source, r.Fabric,
					r.Sheets, r.Placed, r.Placed+r.Unplaced, r.TotalLength, r.Efficiency, r.Status)
			}
			return w.Flush()
		},
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "History database (default from app config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 = all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the placements of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.NewDB(a.historyPath(dbPath))
			if err != nil {
				return err
			}
			defer db.Close()

			repo := &store.RunRepo{}
			run, err := repo.Get(cmd.Context(), db, args[0])
			if err != nil {
				return err
			}
			placements, err := repo.Placements(cmd.Context(), db, run.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s: %s, %d sheet(s), %.1f mm, %s\n", run.ID, run.Source, run.Sheets, run.TotalLength, run.Status)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Sheet\t#\tPiece\tX\tY\tAngle\tMirrored\n")
			for _, p := range placements {
				off := p.Transform
				fmt.Fprintf(w, "%d\t%d\t%s\t%.1f\t%.1f\t%.0f\t%v\n",
					p.SheetIndex+1, p.SeqNo+1, p.Label, off.C, off.F, p.Angle, p.Mirrored)
			}
			return w.Flush()
		},
	})
	return cmd
}

func (a *app) historyPath(flag string) string {
	switch {
	case flag != "":
		return flag
	case a.config.HistoryPath != "":
		return a.config.HistoryPath
	default:
		return project.DefaultHistoryPath()
	}
}
