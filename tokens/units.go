package tokens

// WordprocessingML measures almost everything in its own units: twentieths of
// a point for spacing and indentation, half-points for font sizes and eighths
// of a point for border widths. The twip is our internal length unit.

// TwipsPerCm is the fixed conversion factor between centimeters and twips.
const TwipsPerCm = 567

// PtToTwips converts points to twips rounding to the nearest unit.
func PtToTwips(pt float64) int {
	return round(pt * 20)
}

// CmToTwips converts centimeters to twips rounding to the nearest unit.
func CmToTwips(cm float64) int {
	return round(cm * TwipsPerCm)
}

// PtToHalfPoints converts points to half-points (font sizes).
func PtToHalfPoints(pt float64) int {
	return round(pt * 2)
}

// PtToEighths converts points to eighths of a point (border widths).
func PtToEighths(pt float64) int {
	return round(pt * 8)
}

func round(v float64) int {
	if v < 0 {
		return -int(-v + 0.5)
	}
	return int(v + 0.5)
}
