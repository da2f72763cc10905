package segment

import "image"

// histogram builds a 256-bin intensity histogram of a grayscale image.
func histogram(img *image.Gray) (hist [256]int, total int) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[img.GrayAt(x, y).Y]++
			total++
		}
	}
	return hist, total
}

// otsuLevel computes the threshold maximizing between-class variance
// over a 256-bin histogram. Intensities <= the returned level belong
// to the background class; foreground starts at level+1. For a
// degenerate histogram (all mass in one bin, or an empty image) the
// returned level is 0, leaving no foreground above it.
func otsuLevel(hist [256]int, total int) uint8 {
	if total == 0 {
		return 0
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var (
		sumBack    float64
		weightBack int
		bestVar    float64
		bestLevel  uint8
	)
	for i := 0; i < 256; i++ {
		weightBack += hist[i]
		if weightBack == 0 {
			continue
		}
		weightFore := total - weightBack
		if weightFore == 0 {
			break
		}
		sumBack += float64(i) * float64(hist[i])

		meanBack := sumBack / float64(weightBack)
		meanFore := (sum - sumBack) / float64(weightFore)
		diff := meanBack - meanFore
		between := float64(weightBack) * float64(weightFore) * diff * diff

		if between > bestVar {
			bestVar = between
			bestLevel = uint8(i)
		}
	}
	return bestLevel
}
