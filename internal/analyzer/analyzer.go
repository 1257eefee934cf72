// SPDX-License-Identifier: MIT
/*
Package analyzer implements the real-time audio analysis core:

- A fixed-capacity, mutex-synchronized stereo sample ring buffer
- A windowed FFT analyzer producing per-channel and averaged spectra
- A frequency-indexed spectrum container with slicing and re-binning
- A beat-onset detector with an adaptive peak/valley threshold

All contract violations (rate mismatches, out-of-range frequencies,
oversized iteration windows) panic: they indicate static misconfiguration,
not runtime conditions.
*/
package analyzer

// Frequency is a frequency in Hz.
type Frequency = float64

// SignalStrength is the energy of a signal or of a single frequency bucket.
type SignalStrength = float64

// Sample is one stereo frame, left channel first.
type Sample = [2]float64
