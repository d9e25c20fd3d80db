package asset

// Purpose selects the fit policy for an inserted asset.
type Purpose int

const (
	PurposeImage Purpose = iota
	PurposeSticker
)

func (p Purpose) String() string {
	if p == PurposeSticker {
		return "sticker"
	}
	return "image"
}

// Fraction of the canvas's minor dimension an asset is fitted into.
func (p Purpose) Fraction() float64 {
	if p == PurposeSticker {
		return 0.3
	}
	return 0.8
}

// FitScale is the uniform scale that fits a srcW x srcH asset within
// Fraction of the canvas's minor dimension. The longer source side is
// matched to the target. Images are never scaled up; stickers may be.
func FitScale(p Purpose, srcW, srcH, canvasW, canvasH int) float64 {
	if srcW <= 0 || srcH <= 0 {
		if p == PurposeSticker {
			return p.Fraction()
		}
		return 1
	}
	target := float64(min(canvasW, canvasH)) * p.Fraction()
	var scale float64
	if srcW > srcH {
		scale = target / float64(srcW)
	} else {
		scale = target / float64(srcH)
	}
	if p == PurposeImage && scale > 1 {
		scale = 1
	}
	return scale
}
