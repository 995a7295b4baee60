package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func sine(freq, dt float64, n int) ([]float64, []float64) {
	samples := make([]float64, n)
	times := make([]float64, n)
	for i := range samples {
		times[i] = float64(i) * dt
		samples[i] = 1 + math.Sin(2*math.Pi*freq*times[i])
	}
	return samples, times
}

func TestDominantFrequency(t *testing.T) {
	samples, _ := sine(2, 0.01, 200)
	freq, power := DominantFrequency(samples, 0.01)
	if math.Abs(freq-2) > 1e-9 {
		t.Errorf("freq = %v, want 2", freq)
	}
	if power <= 0 {
		t.Errorf("power = %v", power)
	}

	if f, _ := DominantFrequency([]float64{3, 3, 3, 3}, 0.01); f != 0 {
		t.Errorf("flat signal freq = %v", f)
	}
	if f, _ := DominantFrequency([]float64{1}, 0.01); f != 0 {
		t.Errorf("single sample freq = %v", f)
	}
}

func TestPowerSpectrumOddLength(t *testing.T) {
	samples, _ := sine(1, 0.1, 21)
	if got := len(PowerSpectrum(samples)); got != 10 {
		t.Errorf("len = %d, want 10", got)
	}
}

func TestNodePhase(t *testing.T) {
	heights, times := sine(0.5, 0.01, 101)
	snaps := make([][]mgl64.Vec3, len(heights))
	for i, h := range heights {
		snaps[i] = []mgl64.Vec3{{0, 0, 0}, {1, h, 0}}
	}

	if got := NodeHeights(snaps, 1); got[10] != heights[10] {
		t.Errorf("height = %v, want %v", got[10], heights[10])
	}
	if NodeHeights(snaps, 2) != nil {
		t.Error("out of range node should give nil")
	}

	portrait := NodePhase(snaps, times, 1)
	if portrait == nil || len(portrait.Points) != 99 {
		t.Fatalf("portrait = %+v", portrait)
	}
	// Near t=0 the velocity of 1+sin(pi t) is pi.
	if v := portrait.Points[0].Y; math.Abs(v-math.Pi) > 0.01 {
		t.Errorf("velocity = %v, want about pi", v)
	}
	if NodePhase(snaps[:2], times[:2], 1) != nil {
		t.Error("two snapshots should be too few")
	}

	art := PhasePortraitToASCII(portrait, 40, 10)
	if lines := strings.Split(strings.TrimRight(art, "\n"), "\n"); len(lines) != 10 {
		t.Errorf("got %d lines", len(lines))
	}
	if !strings.Contains(art, "•") {
		t.Error("no points drawn")
	}
}

func TestCrossings(t *testing.T) {
	samples, times := sine(1, 0.01, 281)
	got := Crossings(samples, times, 1)
	// Upward crossings of the mean at t = 1 and 2; t = 0 starts on the level.
	if len(got) != 2 {
		t.Fatalf("crossings = %v", got)
	}
	for i, want := range []float64{1, 2} {
		if math.Abs(got[i]-want) > 1e-3 {
			t.Errorf("crossing %d = %v, want %v", i, got[i], want)
		}
	}
}
