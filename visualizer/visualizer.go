// Package visualizer turns mono sample chunks into smoothed display
// state: logarithmically binned spectrum bars with falling peak markers,
// or an averaged waveform. It is stateful but single-owner; the UI loop
// feeds it chunks and reads its fields directly.
package visualizer

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// NumBands is the fixed spectrum band count.
	NumBands = 64
	// WaveformWidth is the fixed waveform point count.
	WaveformWidth = 200

	fftSize   = 2048
	smoothing = 0.35

	barDecay  = 0.85
	peakDecay = 0.92
)

// Mode selects the analysis the visualizer runs.
type Mode int

const (
	ModeFrequencyBars Mode = iota
	ModeWaveform
	ModeOff
)

// Cycle advances FrequencyBars → Waveform → Off → FrequencyBars.
// Accumulated bar/peak state deliberately survives the switch so bars
// ease out instead of snapping when a mode comes back.
func (m Mode) Cycle() Mode {
	switch m {
	case ModeFrequencyBars:
		return ModeWaveform
	case ModeWaveform:
		return ModeOff
	default:
		return ModeFrequencyBars
	}
}

func (m Mode) String() string {
	switch m {
	case ModeFrequencyBars:
		return "Spectrum"
	case ModeWaveform:
		return "Waveform"
	default:
		return "Off"
	}
}

// Visualizer holds the live display state. Bars, LeftBars, RightBars and
// PeakBars are normalized magnitudes in [0,1] with fixed cardinality
// NumBands; Waveform holds WaveformWidth samples in roughly [-1,1].
type Visualizer struct {
	Mode      Mode
	Bars      []float64
	LeftBars  []float64
	RightBars []float64
	PeakBars  []float64
	Waveform  []float64

	fft     *fourier.FFT
	window  []float64
	history []float64

	prevBars  []float64
	prevLeft  []float64
	prevRight []float64

	windowed []float64
	coeffs   []complex128
}

func New() *Visualizer {
	window := make([]float64, fftSize)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}

	return &Visualizer{
		Mode:      ModeFrequencyBars,
		Bars:      make([]float64, NumBands),
		LeftBars:  make([]float64, NumBands),
		RightBars: make([]float64, NumBands),
		PeakBars:  make([]float64, NumBands),
		Waveform:  make([]float64, WaveformWidth),
		fft:       fourier.NewFFT(fftSize),
		window:    window,
		history:   make([]float64, 0, fftSize),
		prevBars:  make([]float64, NumBands),
		prevLeft:  make([]float64, NumBands),
		prevRight: make([]float64, NumBands),
		windowed:  make([]float64, fftSize),
		coeffs:    make([]complex128, fftSize/2+1),
	}
}

// ProcessSamples routes a chunk to the active analysis. No-op when the
// visualizer is off.
func (v *Visualizer) ProcessSamples(chunk []float64) {
	switch v.Mode {
	case ModeFrequencyBars:
		v.processFFT(chunk)
	case ModeWaveform:
		v.processWaveform(chunk)
	}
}

// processFFT analyzes the trailing fftSize samples of the cumulative
// signal. Chunks are appended to a retained history so bursts shorter
// than the window analyze against the prior tail; until enough history
// exists the front is zero-padded.
func (v *Visualizer) processFFT(chunk []float64) {
	v.history = append(v.history, chunk...)
	if n := len(v.history); n > fftSize {
		v.history = append(v.history[:0], v.history[n-fftSize:]...)
	}

	pad := fftSize - len(v.history)
	for i := 0; i < pad; i++ {
		v.windowed[i] = 0
	}
	for i, s := range v.history {
		v.windowed[pad+i] = s * v.window[pad+i]
	}

	v.fft.Coefficients(v.coeffs, v.windowed)

	half := fftSize / 2
	magnitudes := make([]float64, half)
	for i := 0; i < half; i++ {
		magnitudes[i] = cmplx.Abs(v.coeffs[i]) / float64(half)
	}

	var newBars [NumBands]float64
	for band := 0; band < NumBands; band++ {
		lo := logBinStart(band, NumBands, half)
		if lo > half-1 {
			lo = half - 1
		}
		hi := logBinStart(band+1, NumBands, half)
		if hi > half || band == NumBands-1 {
			hi = half // top band always reaches the last bin
		}
		if hi <= lo {
			hi = lo + 1 // minimum band width of one bin
		}

		sum := 0.0
		for i := lo; i < hi; i++ {
			sum += magnitudes[i]
		}
		newBars[band] = sum / float64(hi-lo)
	}

	for i := 0; i < NumBands; i++ {
		v.Bars[i] = v.prevBars[i]*(1-smoothing) + newBars[i]*smoothing
	}
	copy(v.prevBars, v.Bars)

	// Normalize by the current maximum; skipped near silence so noise
	// is not amplified into full-scale bars.
	max := 0.0
	for _, b := range v.Bars {
		if b > max {
			max = b
		}
	}
	if max > 0.001 {
		for i := range v.Bars {
			v.Bars[i] = math.Min(v.Bars[i]/max, 1)
		}
	}

	v.updateStereoSplit()
	v.updatePeaks()
}

// updateStereoSplit derives left/right bar sets from the main spectrum,
// weighting lows into the left set and highs into the right, with their
// own smoothing. Used by the wide mirrored spectrum rendering.
func (v *Visualizer) updateStereoSplit() {
	for i := 0; i < NumBands; i++ {
		t := float64(i) / float64(NumBands)
		newLeft := v.Bars[i] * (1 - t*0.3)
		newRight := v.Bars[i] * (0.7 + t*0.3)
		v.LeftBars[i] = v.prevLeft[i]*0.7 + newLeft*0.3
		v.RightBars[i] = v.prevRight[i]*0.7 + newRight*0.3
	}
	copy(v.prevLeft, v.LeftBars)
	copy(v.prevRight, v.RightBars)
}

func (v *Visualizer) updatePeaks() {
	for i, bar := range v.Bars {
		if bar > v.PeakBars[i] {
			v.PeakBars[i] = bar
		}
	}
}

// processWaveform downsamples the chunk into WaveformWidth points by
// averaging float-stepped windows.
func (v *Visualizer) processWaveform(chunk []float64) {
	if len(chunk) == 0 {
		for i := range v.Waveform {
			v.Waveform[i] = 0
		}
		return
	}

	step := float64(len(chunk)) / float64(WaveformWidth)
	for i := 0; i < WaveformWidth; i++ {
		start := int(float64(i) * step)
		end := int(float64(i+1) * step)
		if end > len(chunk) {
			end = len(chunk)
		}
		if start >= len(chunk) {
			continue
		}
		count := end - start
		if count < 1 {
			count = 1
		}
		sum := 0.0
		for _, s := range chunk[start:end] {
			sum += s
		}
		v.Waveform[i] = sum / float64(count)
	}
}

// Decay eases all display state toward zero. Called once per UI tick
// when no fresh chunk arrived (paused or quiescent engine). Peaks decay
// slower than bars so the markers visibly fall; this is the only place
// peak values shrink.
func (v *Visualizer) Decay() {
	for i := range v.Bars {
		v.Bars[i] *= barDecay
	}
	for i := range v.LeftBars {
		v.LeftBars[i] *= barDecay
	}
	for i := range v.RightBars {
		v.RightBars[i] *= barDecay
	}
	for i := range v.PeakBars {
		v.PeakBars[i] *= peakDecay
	}
	for i := range v.Waveform {
		v.Waveform[i] *= barDecay
	}
	copy(v.prevBars, v.Bars)
	copy(v.prevLeft, v.LeftBars)
	copy(v.prevRight, v.RightBars)
}

// logBinStart computes the first FFT bin of a band under logarithmic
// spacing. Band 0 starts at bin 1, skipping DC.
func logBinStart(band, numBands, numBins int) int {
	if band == 0 {
		return 1
	}
	logMax := math.Log(float64(numBins))
	return int(math.Exp(logMax * float64(band) / float64(numBands)))
}
