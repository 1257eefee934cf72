// SPDX-License-Identifier: MIT
package analyzer

import (
	"math"
	"testing"
)

func sineBuffer(size, rate int, freq float64) *SampleBuffer {
	b := NewSampleBuffer(size, rate)
	frames := make([]Sample, size)
	for i := range frames {
		v := math.Sin(2 * math.Pi * freq * float64(i) / float64(rate))
		frames[i] = Sample{v, v}
	}
	b.Push(frames)
	return b
}

func TestPlanFourier_Derivation(t *testing.T) {
	t.Parallel()
	fa := PlanFourier(FourierConfig{Length: 512, Downsample: 5, Rate: 8000})

	if fa.Length() != 512 {
		t.Errorf("expected length 512, got %d", fa.Length())
	}
	if fa.Buckets() != 256 {
		t.Errorf("expected 256 buckets, got %d", fa.Buckets())
	}
	// Downsampled rate 1600 Hz: resolution 1600/512, ceiling 800.
	if want := 1600.0 / 512; fa.Lowest() != want {
		t.Errorf("expected lowest %g Hz, got %g", want, fa.Lowest())
	}
	if fa.Highest() != 800 {
		t.Errorf("expected highest 800 Hz, got %g", fa.Highest())
	}
}

func TestPlanFourier_NonPowerOfTwoPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non power of 2 length")
		}
	}()
	PlanFourier(FourierConfig{Length: 500, Downsample: 1, Rate: 8000})
}

func TestFourierAnalyzer_SinePeak(t *testing.T) {
	t.Parallel()
	const (
		rate   = 8000
		length = 512
		freq   = 500 // lands exactly on FFT bin 32
	)

	fa := PlanFourier(FourierConfig{Length: length, Downsample: 1, Rate: rate})
	buf := sineBuffer(length, rate, freq)

	spectra := fa.Analyze(buf)

	wantBin := freq * length / rate
	for ch, spec := range spectra {
		maxBin, maxVal := 0, SignalStrength(0)
		for i := 0; i < spec.Len(); i++ {
			if spec.At(i) > maxVal {
				maxBin, maxVal = i, spec.At(i)
			}
		}
		if maxBin != wantBin {
			t.Errorf("channel %d: expected peak in bucket %d, got %d", ch, wantBin, maxBin)
		}
		if maxVal <= 0 {
			t.Errorf("channel %d: peak amplitude not positive", ch)
		}
	}

	// Identical channels: the average equals either side.
	avg := fa.Average()
	if math.Abs(avg.At(wantBin)-spectra[0].At(wantBin)) > 1e-9 {
		t.Error("average spectrum differs from identical channel spectra")
	}
}

func TestFourierAnalyzer_RateMismatchPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("expected panic for mismatched rates")
		}
	}()
	fa := PlanFourier(FourierConfig{Length: 64, Downsample: 1, Rate: 8000})
	fa.Analyze(NewSampleBuffer(64, 44100))
}

func TestFourierAnalyzer_AnalyzeZeroAllocs(t *testing.T) {
	fa := PlanFourier(FourierConfig{Length: 512, Downsample: 1, Rate: 8000})
	buf := sineBuffer(1024, 8000, 500)

	// Warm-up call, then assert a clean hot path.
	fa.Analyze(buf)
	allocs := testing.AllocsPerRun(100, func() {
		fa.Analyze(buf)
		fa.Average()
	})
	if allocs > 0 {
		t.Errorf("expected zero allocations in Analyze, got %.1f", allocs)
	}
}

func TestParseWindowFunc(t *testing.T) {
	t.Parallel()
	for name, want := range map[string]WindowFunc{
		"none":       None,
		"sine":       Sine,
		"triangular": Triangular,
		"hann":       Hann,
		"hanning":    Hann,
		"hamming":    Hamming,
		"blackman":   Blackman,
		"nuttall":    Nuttall,
	} {
		got, err := ParseWindowFunc(name)
		if err != nil {
			t.Errorf("%q: unexpected error %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("%q: expected %v, got %v", name, want, got)
		}
	}

	if _, err := ParseWindowFunc("gaussian"); err == nil {
		t.Error("expected error for unknown window function")
	}
}

func TestMakeWindow_Shapes(t *testing.T) {
	t.Parallel()
	flat := makeWindow(16, None)
	for i, v := range flat {
		if v != 1 {
			t.Fatalf("rectangular window coefficient %d is %g", i, v)
		}
	}

	hann := makeWindow(16, Hann)
	if hann[0] >= hann[8] {
		t.Error("Hann window should rise toward the center")
	}
}

func BenchmarkAnalyze(b *testing.B) {
	fa := PlanFourier(FourierConfig{Length: 512, Downsample: 5, Rate: 8000})
	buf := sineBuffer(4096, 8000, 220)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		fa.Analyze(buf)
	}
}
