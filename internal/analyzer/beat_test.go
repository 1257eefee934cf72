// SPDX-License-Identifier: MIT
package analyzer

import (
	"testing"
)

// bandSpectrum builds a spectrum spanning the default 50-100 Hz detection
// band with every bucket set to v, so the band mean is exactly v.
func bandSpectrum(v SignalStrength) Spectrum {
	data := make([]SignalStrength, 11)
	for i := range data {
		data[i] = v
	}
	return NewSpectrum(data, 50, 100)
}

// feed runs the detector over a volume sequence and returns the beat flags.
func feed(d *BeatDetector, volumes []SignalStrength) []bool {
	beats := make([]bool, len(volumes))
	for i, v := range volumes {
		beats[i] = d.DetectSpectrum(bandSpectrum(v))
	}
	return beats
}

func TestBeatDetector_RisingNeverBeats(t *testing.T) {
	t.Parallel()
	d := NewBeatDetector(BeatConfig{})

	for i, beat := range feed(d, []SignalStrength{1, 2, 3, 4, 5, 6, 7, 8}) {
		if beat {
			t.Errorf("cycle %d: beat on monotonically rising volume", i)
		}
	}
}

func TestBeatDetector_PeakTriggersBeat(t *testing.T) {
	t.Parallel()
	d := NewBeatDetector(BeatConfig{})

	beats := feed(d, []SignalStrength{1, 2, 3, 2})
	want := []bool{false, false, false, true}
	for i := range want {
		if beats[i] != want[i] {
			t.Errorf("cycle %d: expected beat=%v, got %v", i, want[i], beats[i])
		}
	}
	if d.LastVolume() != 2 {
		t.Errorf("expected last volume 2, got %g", d.LastVolume())
	}
}

func TestBeatDetector_PlateauKeepsPeak(t *testing.T) {
	t.Parallel()
	d := NewBeatDetector(BeatConfig{})

	// A flat stretch between rise and fall must not erase the rising state.
	beats := feed(d, []SignalStrength{0, 2, 2, 2, 1})
	if !beats[4] {
		t.Error("expected beat after plateau followed by a fall")
	}
}

func TestBeatDetector_AdaptiveThresholdSuppressesSmallSwings(t *testing.T) {
	t.Parallel()
	d := NewBeatDetector(BeatConfig{})

	// A large swing sets the baseline.
	beats := feed(d, []SignalStrength{0, 10, 5})
	if !beats[2] {
		t.Fatal("expected beat on the initial large swing")
	}

	// A much smaller swing shortly after must stay below baseline*trigger.
	beats = feed(d, []SignalStrength{4, 5, 4})
	if beats[2] {
		t.Error("small swing beat through the adaptive threshold")
	}
}

func TestBeatDetector_BaselineDecayRecovers(t *testing.T) {
	t.Parallel()
	// Decay constant 2 halves the baseline every cycle, so a quieter beat
	// becomes detectable again quickly.
	d := NewBeatDetector(BeatConfig{Decay: 2})

	if beats := feed(d, []SignalStrength{0, 10, 5}); !beats[2] {
		t.Fatal("expected beat on the initial swing")
	}

	// Idle cycles let the baseline decay away.
	feed(d, []SignalStrength{5, 5, 5, 5, 5, 5})

	if beats := feed(d, []SignalStrength{4, 6, 4}); !beats[2] {
		t.Error("expected quieter beat after the baseline decayed")
	}
}

func TestBeatDetector_DetectFromSamples(t *testing.T) {
	t.Parallel()
	d := NewBeatDetector(BeatConfig{})
	buf := NewSampleBuffer(16000, 8000)

	// Silence carries no swings; the detector must stay quiet.
	for i := 0; i < 8; i++ {
		if d.Detect(buf) {
			t.Fatalf("cycle %d: beat detected in silence", i)
		}
	}
	if d.LastVolume() != 0 {
		t.Errorf("expected zero volume in silence, got %g", d.LastVolume())
	}
}
