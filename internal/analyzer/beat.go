// SPDX-License-Identifier: MIT
package analyzer

// BeatConfig configures a BeatDetector. Zero fields fall back to the
// defaults below.
type BeatConfig struct {
	// Decay is the baseline decay constant D; the adaptive threshold is
	// multiplied by 1-1/D every cycle so quieter beats become detectable
	// again over time. Default 1000.
	Decay SignalStrength
	// Trigger is the fraction of the decayed baseline a peak-to-valley
	// swing must exceed to count as a beat. Default 0.5.
	Trigger SignalStrength
	// Low and High bound the frequency band whose mean energy is the
	// detector's volume measure. Defaults 50 and 100 Hz.
	Low  Frequency
	High Frequency
	// FourierLength, Downsample and Rate configure the private analyzer
	// used when detecting from raw samples. Defaults 16, 10 and 8000.
	FourierLength int
	Downsample    int
	Rate          int
}

func (c *BeatConfig) applyDefaults() {
	if c.Decay == 0 {
		c.Decay = 1000
	}
	if c.Trigger == 0 {
		c.Trigger = 0.5
	}
	if c.Low == 0 && c.High == 0 {
		c.Low, c.High = 50, 100
	}
	if c.FourierLength == 0 {
		c.FourierLength = 16
	}
	if c.Downsample == 0 {
		c.Downsample = 10
	}
	if c.Rate == 0 {
		c.Rate = 8000
	}
}

// BeatDetector emits beat onsets by comparing peak-to-valley volume swings
// against a decaying adaptive baseline. Volume is the mean energy of a
// configured frequency band, measured either through the detector's own
// small Fourier analyzer (Detect) or on a caller-supplied spectrum
// (DetectSpectrum). State is a single previous cycle; there is no history.
type BeatDetector struct {
	decay   SignalStrength // multiplicative, 1 - 1/D
	trigger SignalStrength
	low     Frequency
	high    Frequency

	lastVolume    SignalStrength
	lastDelta     SignalStrength
	lastBeatDelta SignalStrength
	lastPeak      SignalStrength
	lastValley    SignalStrength

	analyzer *FourierAnalyzer
}

// NewBeatDetector builds a detector for the given configuration.
func NewBeatDetector(cfg BeatConfig) *BeatDetector {
	cfg.applyDefaults()

	return &BeatDetector{
		decay:   1 - 1/cfg.Decay,
		trigger: cfg.Trigger,
		low:     cfg.Low,
		high:    cfg.High,

		analyzer: PlanFourier(FourierConfig{
			Length:     cfg.FourierLength,
			Window:     Nuttall,
			Downsample: cfg.Downsample,
			Rate:       cfg.Rate,
		}),
	}
}

// Detect runs the private analyzer over the buffer and reports whether this
// cycle is a beat.
func (d *BeatDetector) Detect(buf *SampleBuffer) bool {
	d.analyzer.Analyze(buf)
	volume := d.analyzer.Average().Slice(d.low, d.high).Mean()
	return d.step(volume)
}

// DetectSpectrum evaluates a precomputed spectrum instead of raw samples.
// The spectrum must span the detector's configured band.
func (d *BeatDetector) DetectSpectrum(spec Spectrum) bool {
	return d.step(spec.Slice(d.low, d.high).Mean())
}

// LastVolume returns the volume measured by the most recent detection cycle.
func (d *BeatDetector) LastVolume() SignalStrength { return d.lastVolume }

// step advances the peak/valley state machine by one volume measurement.
func (d *BeatDetector) step(volume SignalStrength) bool {
	// Decay the baseline so quieter beats can be detected again.
	d.lastBeatDelta *= d.decay
	delta := volume - d.lastVolume

	isbeat := false
	switch {
	case delta < 0 && d.lastDelta > 0:
		// Falling after rising: the previous volume was a peak.
		d.lastPeak = d.lastVolume
		beatDelta := d.lastPeak - d.lastValley

		if beatDelta > d.lastBeatDelta*d.trigger {
			if beatDelta > d.lastBeatDelta {
				d.lastBeatDelta = beatDelta
			}
			isbeat = true
		}
	case delta > 0 && d.lastDelta < 0:
		// Rising after falling: the previous volume was a valley.
		d.lastValley = d.lastVolume
	}

	d.lastVolume = volume
	// Keep the previous sign memory across exact plateaus.
	if delta != 0 {
		d.lastDelta = delta
	}

	return isbeat
}
