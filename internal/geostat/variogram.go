package geostat

import (
	"fmt"
	"math"
)

// EmpiricalVariogram holds binned semivariances over great-circle distance.
type EmpiricalVariogram struct {
	Centers []float64 // bin centers, km
	Gammas  []float64 // semivariance per bin
	Counts  []int     // pairs per bin
}

// EstimateVariogram bins squared value differences of all observation pairs
// by great-circle distance up to maxDist (km) and returns the semivariance
// per bin. Empty bins are dropped. nBins <= 0 selects the bin count by
// Sturges' rule over the sample size.
func EstimateVariogram(lats, lons, vals []float64, maxDist float64, nBins int) (EmpiricalVariogram, error) {
	n := len(vals)
	if len(lats) != n || len(lons) != n {
		return EmpiricalVariogram{}, fmt.Errorf("variogram: coordinate/value length mismatch")
	}
	if n < 2 {
		return EmpiricalVariogram{}, fmt.Errorf("variogram: need at least 2 observations, got %d", n)
	}
	if maxDist <= 0 {
		return EmpiricalVariogram{}, fmt.Errorf("variogram: max distance must be positive, got %g", maxDist)
	}
	if nBins <= 0 {
		nBins = 1 + int(math.Ceil(math.Log2(float64(n))))
	}

	width := maxDist / float64(nBins)
	sums := make([]float64, nBins)
	counts := make([]int, nBins)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			h := GreatCircle(lats[i], lons[i], lats[j], lons[j])
			if h >= maxDist {
				continue
			}
			bin := int(h / width)
			if bin >= nBins {
				bin = nBins - 1
			}
			d := vals[i] - vals[j]
			sums[bin] += 0.5 * d * d
			counts[bin]++
		}
	}

	ev := EmpiricalVariogram{}
	for b := 0; b < nBins; b++ {
		if counts[b] == 0 {
			continue
		}
		ev.Centers = append(ev.Centers, (float64(b)+0.5)*width)
		ev.Gammas = append(ev.Gammas, sums[b]/float64(counts[b]))
		ev.Counts = append(ev.Counts, counts[b])
	}
	if len(ev.Centers) == 0 {
		return EmpiricalVariogram{}, fmt.Errorf("variogram: no observation pairs within %g km", maxDist)
	}
	return ev, nil
}
