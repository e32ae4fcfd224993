package evaluator

import "math"

// Judge composes the verdict direction and magnitude. The percent difference
// is always non-negative; direction is carried solely by the boolean. Equal
// prices are not cheaper. The caller guarantees averagePrice > 0.
func Judge(inputPrice, averagePrice int) (percentDiff float64, isCheaper bool) {
	diff := math.Abs(float64(averagePrice-inputPrice)) / float64(averagePrice) * 100
	return math.Round(diff*10) / 10, inputPrice < averagePrice
}
