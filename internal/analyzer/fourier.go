// SPDX-License-Identifier: MIT
package analyzer

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	applog "viscore/internal/log"
	"viscore/pkg/bitint"
)

// WindowFunc selects the window function baked into a Fourier plan.
type WindowFunc int

const (
	None WindowFunc = iota // rectangular window, all coefficients 1
	Sine
	Triangular
	Hann
	Hamming
	Blackman
	Nuttall
)

func (w WindowFunc) String() string {
	switch w {
	case None:
		return "none"
	case Sine:
		return "sine"
	case Triangular:
		return "triangular"
	case Hann:
		return "hann"
	case Hamming:
		return "hamming"
	case Blackman:
		return "blackman"
	case Nuttall:
		return "nuttall"
	default:
		return "unknown"
	}
}

// ParseWindowFunc converts a name (case-insensitive) to a WindowFunc.
// Returns None and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "none", "rectangular":
		return None, nil
	case "sine":
		return Sine, nil
	case "triangular":
		return Triangular, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return None, fmt.Errorf("unknown window function name: %q", name)
	}
}

// makeWindow bakes the coefficient table for the given window function.
func makeWindow(length int, w WindowFunc) []float64 {
	coeffs := make([]float64, length)
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch w {
	case None:
		// Rectangular, leave as ones.
	case Sine:
		window.Sine(coeffs)
	case Triangular:
		window.Triangular(coeffs)
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		panic(fmt.Sprintf("analyzer: unknown window function %d", w))
	}
	return coeffs
}

// FourierConfig configures a FourierAnalyzer. Zero fields fall back to the
// defaults below.
type FourierConfig struct {
	Length     int        // transform length, power of 2 (default 512)
	Window     WindowFunc // default None
	Downsample int        // sample stride when reading the buffer (default 5)
	Rate       int        // sample rate of the buffers to analyze (default 8000)
}

func (c *FourierConfig) applyDefaults() {
	if c.Length == 0 {
		c.Length = 512
	}
	if c.Downsample == 0 {
		c.Downsample = 5
	}
	if c.Rate == 0 {
		c.Rate = 8000
	}
}

// FourierAnalyzer windows and Fourier-transforms a trailing, downsampled
// slice of a SampleBuffer into one spectrum per channel. The plan, window
// table, scratch buffers and output spectra are all allocated once at plan
// time; Analyze itself does not allocate.
type FourierAnalyzer struct {
	length     int
	buckets    int
	window     []float64
	downsample int
	rate       int

	lowest  Frequency
	highest Frequency

	fft    *fourier.FFT
	input  [2][]float64
	output []complex128

	spectra [2]Spectrum
	average Spectrum
}

// PlanFourier builds an analyzer for the given configuration. The transform
// length must be a power of 2; violating that is a configuration error and
// panics.
func PlanFourier(cfg FourierConfig) *FourierAnalyzer {
	cfg.applyDefaults()

	if !bitint.IsPowerOfTwo(cfg.Length) {
		panic(fmt.Sprintf("analyzer: fourier length must be a power of 2, got %d", cfg.Length))
	}

	buckets := cfg.Length / 2
	downsampledRate := Frequency(cfg.Rate) / Frequency(cfg.Downsample)
	lowest := downsampledRate / Frequency(cfg.Length)
	highest := downsampledRate / 2

	fa := &FourierAnalyzer{
		length:     cfg.Length,
		buckets:    buckets,
		window:     makeWindow(cfg.Length, cfg.Window),
		downsample: cfg.Downsample,
		rate:       cfg.Rate,
		lowest:     lowest,
		highest:    highest,

		fft:    fourier.NewFFT(cfg.Length),
		output: make([]complex128, cfg.Length/2+1),
	}
	fa.input[0] = make([]float64, cfg.Length)
	fa.input[1] = make([]float64, cfg.Length)
	fa.spectra[0] = NewSpectrum(make([]SignalStrength, buckets), lowest, highest)
	fa.spectra[1] = NewSpectrum(make([]SignalStrength, buckets), lowest, highest)
	fa.average = NewSpectrum(make([]SignalStrength, buckets), lowest, highest)

	applog.Debugf("Analyzer: planned FFT (length=%d buckets=%d window=%s rate=%g lowest=%.3fHz highest=%.3fHz)",
		cfg.Length, buckets, cfg.Window, downsampledRate, lowest, highest)

	return fa
}

// Length returns the transform length.
func (fa *FourierAnalyzer) Length() int { return fa.length }

// Buckets returns the number of output buckets per channel (length/2).
func (fa *FourierAnalyzer) Buckets() int { return fa.buckets }

// Downsample returns the configured read stride.
func (fa *FourierAnalyzer) Downsample() int { return fa.downsample }

// Lowest returns the frequency of the first output bucket.
func (fa *FourierAnalyzer) Lowest() Frequency { return fa.lowest }

// Highest returns the frequency of the last output bucket.
func (fa *FourierAnalyzer) Highest() Frequency { return fa.highest }

// Analyze transforms the trailing window of buf into the analyzer's two
// persistent channel spectra and returns borrowed views of them. The
// buffer's sample rate must match the plan's rate.
func (fa *FourierAnalyzer) Analyze(buf *SampleBuffer) [2]Spectrum {
	if buf.Rate() != fa.rate {
		panic(fmt.Sprintf("analyzer: buffer rate %d does not match plan rate %d",
			buf.Rate(), fa.rate))
	}

	it := buf.Iter(fa.length, fa.downsample)
	for i := 0; i < fa.length; i++ {
		s, ok := it.Next()
		if !ok {
			break
		}
		fa.input[0][i] = s[0] * fa.window[i]
		fa.input[1][i] = s[1] * fa.window[i]
	}
	it.Close()

	for ch := 0; ch < 2; ch++ {
		fa.fft.Coefficients(fa.output, fa.input[ch])
		dst := fa.spectra[ch].buckets
		for i := range dst {
			c := fa.output[i]
			dst[i] = real(c)*real(c) + imag(c)*imag(c)
		}
	}

	return [2]Spectrum{fa.spectra[0], fa.spectra[1]}
}

// Left returns a borrowed view of the most recent left-channel spectrum.
func (fa *FourierAnalyzer) Left() Spectrum { return fa.spectra[0] }

// Right returns a borrowed view of the most recent right-channel spectrum.
func (fa *FourierAnalyzer) Right() Spectrum { return fa.spectra[1] }

// Average recomputes the element-wise mean of both channel spectra into the
// analyzer's persistent average spectrum and returns a borrowed view of it.
func (fa *FourierAnalyzer) Average() Spectrum {
	AverageSpectrum(&fa.average, fa.spectra[:])
	return fa.average
}
