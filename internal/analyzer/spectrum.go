// SPDX-License-Identifier: MIT
package analyzer

import (
	"fmt"
	"math"
	"sort"
)

// Maximum is one local maximum found in a spectrum.
type Maximum struct {
	Frequency Frequency
	Amplitude SignalStrength
}

// Spectrum is an ordered sequence of signal strengths whose buckets are
// evenly spaced in frequency between Lowest and Highest. A Spectrum does not
// own its bucket storage exclusively: Slice and the analyzer accessors
// return spectra whose bucket slice aliases the parent's backing array,
// which makes borrowed sub-spectra free of allocation.
type Spectrum struct {
	buckets []SignalStrength
	width   Frequency
	lowest  Frequency
	highest Frequency
}

// NewSpectrum wraps a bucket slice, potentially prefilled with spectral
// data, associating the first bucket with low and the last with high.
func NewSpectrum(data []SignalStrength, low, high Frequency) Spectrum {
	return Spectrum{
		buckets: data,
		width:   (high - low) / Frequency(len(data)-1),
		lowest:  low,
		highest: high,
	}
}

// Len returns the number of buckets.
func (s Spectrum) Len() int { return len(s.buckets) }

// Lowest returns the frequency of the first bucket.
func (s Spectrum) Lowest() Frequency { return s.lowest }

// Highest returns the frequency of the last bucket.
func (s Spectrum) Highest() Frequency { return s.highest }

// Width returns the frequency spacing between adjacent buckets.
func (s Spectrum) Width() Frequency { return s.width }

// At returns the value of bucket i.
func (s Spectrum) At(i int) SignalStrength { return s.buckets[i] }

// SetAt sets the value of bucket i.
func (s Spectrum) SetAt(i int, v SignalStrength) { s.buckets[i] = v }

// AtFreq returns the value of the bucket associated with frequency f.
func (s Spectrum) AtFreq(f Frequency) SignalStrength { return s.buckets[s.FreqToID(f)] }

// Buckets returns the live bucket slice. Mutating it mutates the spectrum.
func (s Spectrum) Buckets() []SignalStrength { return s.buckets }

// respan recomputes the bucket width for new bounds. Use with care.
func (s *Spectrum) respan(low, high Frequency) {
	s.width = (high - low) / Frequency(len(s.buckets)-1)
	s.lowest = low
	s.highest = high
}

// FreqToID returns the index of the bucket associated with frequency f.
// Panics if f falls outside the spectrum's span.
func (s Spectrum) FreqToID(f Frequency) int {
	x := (f - s.lowest) / s.width
	if x < 0 {
		panic(fmt.Sprintf("analyzer: frequency %v below spectrum start %v", f, s.lowest))
	}
	i := int(math.Round(x))
	if i >= len(s.buckets) {
		panic(fmt.Sprintf("analyzer: frequency %v beyond spectrum end %v", f, s.highest))
	}
	return i
}

// IDToFreq returns the center frequency of bucket i.
func (s Spectrum) IDToFreq(i int) Frequency {
	if i >= len(s.buckets) {
		panic(fmt.Sprintf("analyzer: bucket %d out of range %d", i, len(s.buckets)))
	}
	return Frequency(i)*s.width + s.lowest
}

// Max returns the strongest bucket value.
func (s Spectrum) Max() SignalStrength {
	max := s.buckets[0]
	for _, v := range s.buckets[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Mean returns the average bucket value.
func (s Spectrum) Mean() SignalStrength {
	var sum SignalStrength
	for _, v := range s.buckets {
		sum += v
	}
	return sum / SignalStrength(len(s.buckets))
}

// Slice returns the sub-spectrum between the buckets associated with low
// and high, inclusive. No allocation: the result aliases this spectrum's
// storage. Its bounds are recomputed from the selected bucket indices and
// may differ from the requested frequencies by up to one bucket width; the
// bucket width itself is unchanged.
func (s Spectrum) Slice(low, high Frequency) Spectrum {
	start := s.FreqToID(low)
	end := s.FreqToID(high)

	return Spectrum{
		buckets: s.buckets[start : end+1],
		width:   s.width,
		lowest:  s.lowest + Frequency(start)*s.width,
		highest: s.lowest + Frequency(end)*s.width,
	}
}

// FillBuckets re-bins this spectrum into the pre-sized dst slice by adding
// each source bucket into dst[i*len(dst)/len(src)]. The merge preserves the
// total signal sum, not the average. Returns the resulting spectrum wrapping
// dst with this spectrum's bounds.
func (s Spectrum) FillBuckets(dst []SignalStrength) Spectrum {
	for i := range dst {
		dst[i] = 0
	}
	for i, v := range s.buckets {
		dst[i*len(dst)/len(s.buckets)] += v
	}

	return Spectrum{
		buckets: dst,
		width:   (s.highest - s.lowest) / Frequency(len(dst)-1),
		lowest:  s.lowest,
		highest: s.highest,
	}
}

// FillSpectrum re-bins this spectrum into other and respans other to this
// spectrum's bounds.
func (s Spectrum) FillSpectrum(other *Spectrum) *Spectrum {
	s.FillBuckets(other.buckets)
	other.respan(s.lowest, s.highest)
	return other
}

// FillFrom copies the buckets and bounds of other into this spectrum.
// Both must have the same length.
func (s *Spectrum) FillFrom(other Spectrum) {
	if len(s.buckets) != len(other.buckets) {
		panic(fmt.Sprintf("analyzer: spectrum sizes differ: %d != %d",
			len(s.buckets), len(other.buckets)))
	}
	s.width = other.width
	s.lowest = other.lowest
	s.highest = other.highest
	copy(s.buckets, other.buckets)
}

// FindMaxima locates local maxima (first-derivative sign flips from
// positive to negative) and fills buffer with up to len(buffer) of them in
// discovery order, ascending by frequency, before sorting that prefix
// descending by amplitude. Returns the number of maxima written.
//
// If the spectrum contains more maxima than buffer can hold, the retained
// subset is the lowest-frequency ones. That truncation is defined behavior,
// not an error.
func (s Spectrum) FindMaxima(buffer []Maximum) int {
	num := 0
	for i := 0; i+2 < len(s.buckets) && num < len(buffer); i++ {
		d0 := s.buckets[i+1] - s.buckets[i]
		d1 := s.buckets[i+2] - s.buckets[i+1]
		if d0 > 0 && d1 < 0 {
			buffer[num] = Maximum{
				Frequency: s.IDToFreq(i + 1),
				Amplitude: s.buckets[i+1],
			}
			num++
		}
	}

	sort.Slice(buffer[:num], func(a, b int) bool {
		return buffer[a].Amplitude > buffer[b].Amplitude
	})

	return num
}

// AverageSpectrum computes the element-wise mean of the given spectra into
// out and respans out to their common bounds. All inputs must share length
// and bounds with each other and length with out.
func AverageSpectrum(out *Spectrum, spectra []Spectrum) *Spectrum {
	if len(spectra) == 0 {
		panic("analyzer: averaging zero spectra")
	}

	lowest := spectra[0].lowest
	highest := spectra[0].highest

	for i := range out.buckets {
		out.buckets[i] = 0
	}
	for _, s := range spectra {
		if len(s.buckets) != len(out.buckets) {
			panic(fmt.Sprintf("analyzer: spectrum sizes differ: %d != %d",
				len(s.buckets), len(out.buckets)))
		}
		for i, v := range s.buckets {
			out.buckets[i] += v
		}
	}

	n := SignalStrength(len(spectra))
	for i := range out.buckets {
		out.buckets[i] /= n
	}

	out.respan(lowest, highest)
	return out
}
