package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/SeamNest/internal/model"
)

type estimateOptions struct {
	file   string
	fabric string
	width  float64
	shift  float64
	waste  float64
	price  float64
}

func newEstimateCmd(a *app) *cobra.Command {
	o := &estimateOptions{}
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate how much fabric to buy for a piece list",
		Long: `Estimate the fabric length needed for a piece list without nesting it.

The estimate grows every piece by half the spacing margin around its
perimeter, divides the total by the fabric width and adds a waste factor.

Examples:
  seamnest estimate -f shirt.dxf --width 1450 --waste 20 --price 12.5
  seamnest estimate -f pieces.csv --fabric "Denim 145"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEstimate(cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "Pieces file [required]")
	f.StringVar(&o.fabric, "fabric", "", "Fabric preset name (width and price)")
	f.Float64Var(&o.width, "width", 0, "Fabric width in mm (default from app config)")
	f.Float64Var(&o.shift, "shift", -1, "Gap between pieces in mm (default from app config)")
	f.Float64Var(&o.waste, "waste", 15, "Waste allowance in percent")
	f.Float64Var(&o.price, "price", -1, "Price per metre")
	cmd.MarkFlagRequired("file")

	return cmd
}

func (a *app) runEstimate(cmd *cobra.Command, o *estimateOptions) error {
	pieces, err := a.loadPieces(o.file)
	if err != nil {
		return err
	}

	width, shift, price := a.config.DefaultSheetWidth, a.config.DefaultShift, 0.0
	if o.fabric != "" {
		inv, err := loadInventory(a)
		if err != nil {
			return err
		}
		fp := inv.FindFabricByName(o.fabric)
		if fp == nil {
			return fmt.Errorf("unknown fabric preset %q", o.fabric)
		}
		width, price = fp.Width, fp.PricePerMetre
	}
	if o.width > 0 {
		width = o.width
	}
	if o.shift >= 0 {
		shift = o.shift
	}
	if o.price >= 0 {
		price = o.price
	}
	if width <= 0 {
		return fmt.Errorf("fabric width must be positive, got %g", width)
	}

	est := model.EstimateFabric(pieces, width, shift, o.waste, price)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "FABRIC ESTIMATE:")
	fmt.Fprintln(out, "───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Pieces:\t%d\n", countPieces(pieces))
	fmt.Fprintf(w, "  Piece area:\t%.2f m²\n", est.TotalPieceArea/1e6)
	fmt.Fprintf(w, "  Fabric width:\t%.0f mm\n", est.FabricWidth)
	fmt.Fprintf(w, "  Minimum length:\t%.0f mm\n", est.MinimumLength)
	fmt.Fprintf(w, "  Recommended (+%.0f%%):\t%.0f mm\n", est.WastePercent, est.RecommendedLength)
	if est.PricePerMetre > 0 {
		fmt.Fprintf(w, "  Estimated cost:\t%.2f\n", est.EstimatedCost)
	}
	w.Flush()
	fmt.Fprintln(out)
	return nil
}

func countPieces(pieces []model.Piece) int {
	n := 0
	for _, p := range pieces {
		if p.Quantity < 1 {
			n++
			continue
		}
		n += p.Quantity
	}
	return n
}
