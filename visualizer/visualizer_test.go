package visualizer

import (
	"math"
	"testing"
)

func sineChunk(n int, freq, rate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / rate)
	}
	return out
}

func TestSilentInputSettlesToZero(t *testing.T) {
	v := New()
	silence := make([]float64, 1500)

	for i := 0; i < 50; i++ {
		v.ProcessSamples(silence)
	}

	for i, b := range v.Bars {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			t.Fatalf("bar %d corrupted: %v", i, b)
		}
		if b != 0 {
			t.Fatalf("bar %d = %v, want 0 for silent input", i, b)
		}
	}
}

func TestFrequencyBarsNormalized(t *testing.T) {
	v := New()
	chunk := sineChunk(4096, 440, 44100)

	for i := 0; i < 10; i++ {
		v.ProcessSamples(chunk)
	}

	max := 0.0
	for i, b := range v.Bars {
		if b < 0 || b > 1 {
			t.Fatalf("bar %d = %v, want within [0,1]", i, b)
		}
		if b > max {
			max = b
		}
	}
	if max < 0.99 {
		t.Fatalf("max bar = %v, want ~1 after normalization", max)
	}
}

func TestPeaksHoldAboveBars(t *testing.T) {
	v := New()
	loud := sineChunk(4096, 440, 44100)
	quiet := make([]float64, 4096)
	for i, s := range loud {
		quiet[i] = s * 0.05
	}

	for i := 0; i < 10; i++ {
		v.ProcessSamples(loud)
	}
	for i := 0; i < 3; i++ {
		v.ProcessSamples(quiet)
	}

	for i := range v.Bars {
		if v.PeakBars[i] < v.Bars[i]-1e-9 {
			t.Fatalf("peak %d = %v fell below bar %v without Decay", i, v.PeakBars[i], v.Bars[i])
		}
	}
}

func TestDecayMonotone(t *testing.T) {
	v := New()
	v.ProcessSamples(sineChunk(4096, 440, 44100))
	v.Mode = ModeWaveform
	v.ProcessSamples(sineChunk(1500, 440, 44100))

	snapshot := func() [][]float64 {
		return [][]float64{
			append([]float64(nil), v.Bars...),
			append([]float64(nil), v.LeftBars...),
			append([]float64(nil), v.RightBars...),
			append([]float64(nil), v.PeakBars...),
			append([]float64(nil), v.Waveform...),
		}
	}

	prev := snapshot()
	for step := 0; step < 100; step++ {
		v.Decay()
		cur := snapshot()
		for g, group := range cur {
			for i, val := range group {
				if math.Abs(val) > math.Abs(prev[g][i])+1e-12 {
					t.Fatalf("decay step %d increased value group %d index %d: %v -> %v", step, g, i, prev[g][i], val)
				}
			}
		}
		for _, b := range cur[3] {
			if b < 0 {
				t.Fatalf("peak went negative: %v", b)
			}
		}
		prev = cur
	}

	for _, group := range prev {
		for _, val := range group {
			if math.Abs(val) > 0.01 {
				t.Fatalf("value %v did not approach zero after 100 decays", val)
			}
		}
	}
}

func TestModeCyclePreservesState(t *testing.T) {
	v := New()
	v.ProcessSamples(sineChunk(4096, 440, 44100))

	before := append([]float64(nil), v.Bars...)

	v.Mode = v.Mode.Cycle()
	if v.Mode != ModeWaveform {
		t.Fatalf("cycle from FrequencyBars = %v, want Waveform", v.Mode)
	}
	v.Mode = v.Mode.Cycle()
	if v.Mode != ModeOff {
		t.Fatalf("cycle from Waveform = %v, want Off", v.Mode)
	}

	// Off mode ignores samples and keeps stale bars for continuity.
	v.ProcessSamples(sineChunk(4096, 880, 44100))
	for i := range before {
		if v.Bars[i] != before[i] {
			t.Fatalf("bar %d changed across mode cycle: %v -> %v", i, before[i], v.Bars[i])
		}
	}

	v.Mode = v.Mode.Cycle()
	if v.Mode != ModeFrequencyBars {
		t.Fatalf("cycle from Off = %v, want FrequencyBars", v.Mode)
	}
}

func TestWaveformAveragesWindows(t *testing.T) {
	v := New()
	v.Mode = ModeWaveform

	// 400 samples, pairs averaging to their index parity.
	chunk := make([]float64, 2*WaveformWidth)
	for i := 0; i < WaveformWidth; i++ {
		chunk[2*i] = 1
		chunk[2*i+1] = 3
	}
	v.ProcessSamples(chunk)

	if len(v.Waveform) != WaveformWidth {
		t.Fatalf("waveform length = %d, want %d", len(v.Waveform), WaveformWidth)
	}
	for i, w := range v.Waveform {
		if w != 2 {
			t.Fatalf("waveform[%d] = %v, want window average 2", i, w)
		}
	}
}

func TestWaveformShortChunk(t *testing.T) {
	v := New()
	v.Mode = ModeWaveform

	v.ProcessSamples(sineChunk(100, 440, 44100))
	if len(v.Waveform) != WaveformWidth {
		t.Fatalf("waveform resized to %d, want fixed %d", len(v.Waveform), WaveformWidth)
	}
	for i, w := range v.Waveform {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			t.Fatalf("waveform[%d] corrupted: %v", i, w)
		}
	}

	v.ProcessSamples(nil)
	for i, w := range v.Waveform {
		if w != 0 {
			t.Fatalf("waveform[%d] = %v, want 0 after empty chunk", i, w)
		}
	}
}

func TestHistoryRetainsTrailingWindow(t *testing.T) {
	v := New()
	chunk := sineChunk(1500, 440, 44100)

	v.ProcessSamples(chunk)
	if len(v.history) != 1500 {
		t.Fatalf("history = %d samples, want 1500", len(v.history))
	}
	v.ProcessSamples(chunk)
	if len(v.history) != fftSize {
		t.Fatalf("history = %d samples, want capped at %d", len(v.history), fftSize)
	}
}

func TestLogBandCoverage(t *testing.T) {
	half := fftSize / 2

	prevLo := 0
	covered := 1 // bin 0 (DC) is deliberately excluded
	for band := 0; band < NumBands; band++ {
		lo := logBinStart(band, NumBands, half)
		if lo > half-1 {
			lo = half - 1
		}
		hi := logBinStart(band+1, NumBands, half)
		if hi > half || band == NumBands-1 {
			hi = half
		}
		if hi <= lo {
			hi = lo + 1
		}

		if lo < prevLo {
			t.Fatalf("band %d start %d is before band %d start %d", band, lo, band-1, prevLo)
		}
		if hi-lo < 1 {
			t.Fatalf("band %d is empty", band)
		}
		if lo > covered {
			t.Fatalf("gap before band %d: bins [%d,%d) uncovered", band, covered, lo)
		}
		if hi > covered {
			covered = hi
		}
		prevLo = lo
	}
	if covered < half {
		t.Fatalf("bands cover bins up to %d, want %d", covered, half)
	}
}
