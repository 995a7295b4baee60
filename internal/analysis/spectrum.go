package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the DFT of
// samples after removing their mean. Any length is accepted.
func PowerSpectrum(samples []float64) []float64 {
	if len(samples) < 2 {
		return nil
	}
	centered := make([]float64, len(samples))
	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))
	for i, v := range samples {
		centered[i] = v - mean
	}

	spec := fft.FFTReal(centered)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantFrequency finds the strongest non-zero bin of samples taken every
// dt seconds. It returns zero frequency for a flat or too short signal.
func DominantFrequency(samples []float64, dt float64) (freq, power float64) {
	ps := PowerSpectrum(samples)
	if len(ps) < 2 || dt <= 0 {
		return 0, 0
	}
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if ps[best] < 1e-12 {
		return 0, 0
	}
	return float64(best) / (float64(len(samples)) * dt), ps[best]
}
