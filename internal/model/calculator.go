package model

import "math"

// FabricEstimate holds the result of a fabric purchasing calculation.
type FabricEstimate struct {
	TotalPieceArea    float64 `json:"total_piece_area"`    // Total outline area of all pieces (sq mm)
	FabricWidth       float64 `json:"fabric_width"`        // Roll width used (mm)
	MinimumLength     float64 `json:"minimum_length"`      // Length if pieces tiled perfectly (mm)
	RecommendedLength float64 `json:"recommended_length"`  // Including waste, rounded up to whole 10 cm
	WastePercent      float64 `json:"waste_percent"`       // Waste factor applied (e.g. 20 for 20%)
	PricePerMetre     float64 `json:"price_per_metre"`     // Price used for estimation
	EstimatedCost     float64 `json:"estimated_cost"`      // Recommended length times price
	LongestPieceSpan  float64 `json:"longest_piece_span"`  // Smallest bounding side of the largest piece (mm)
}

// EstimateFabric computes how much fabric to buy for a piece list.
// Piece areas are grown by the spacing margin around their perimeter and
// an additional waste percentage is applied.
func EstimateFabric(pieces []Piece, fabricWidth, shift, wastePercent, pricePerMetre float64) FabricEstimate {
	var totalArea, span float64
	for _, p := range pieces {
		qty := p.Quantity
		if qty < 1 {
			qty = 1
		}
		area := p.Area() + p.Outline.Perimeter()*shift/2
		totalArea += area * float64(qty)

		min, max := p.Outline.BoundingBox()
		if s := math.Min(max.X-min.X, max.Y-min.Y); s > span {
			span = s
		}
	}

	est := FabricEstimate{
		TotalPieceArea:   totalArea,
		FabricWidth:      fabricWidth,
		WastePercent:     wastePercent,
		PricePerMetre:    pricePerMetre,
		LongestPieceSpan: span,
	}
	if fabricWidth <= 0 {
		return est
	}

	est.MinimumLength = math.Max(totalArea/fabricWidth, span)
	withWaste := est.MinimumLength * (1.0 + wastePercent/100.0)
	est.RecommendedLength = math.Ceil(withWaste/100.0) * 100.0
	est.EstimatedCost = est.RecommendedLength / 1000.0 * pricePerMetre
	return est
}
