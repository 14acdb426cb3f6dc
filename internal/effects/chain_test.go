package effects

import (
	"math"
	"strings"
	"testing"

	"github.com/Mavwarf/soundboard/internal/audio"
)

func TestProcessBypassIsExactCopy(t *testing.T) {
	in := toneBuffer(440, 0.5)
	orig := append([]float64(nil), in.Samples...)

	out := NewChain(discardLogger()).Process(in, Snapshot{})
	if out == in {
		t.Fatal("Process returned the input buffer, want a copy")
	}
	if len(out.Samples) != len(orig) {
		t.Fatalf("len = %d, want %d", len(out.Samples), len(orig))
	}
	for i := range orig {
		if math.Float64bits(out.Samples[i]) != math.Float64bits(orig[i]) {
			t.Fatalf("sample %d = %v, want %v", i, out.Samples[i], orig[i])
		}
	}
	if &out.Samples[0] == &in.Samples[0] {
		t.Error("output shares backing array with input")
	}
	if out.SampleRate != in.SampleRate || out.Channels != in.Channels || out.Name != in.Name {
		t.Errorf("metadata = %+v, want %+v", out, in)
	}
}

func TestProcessDoesNotModifyInput(t *testing.T) {
	in := toneBuffer(440, 0.5)
	orig := append([]float64(nil), in.Samples...)

	NewChain(discardLogger()).Process(in, Snapshot{PitchCorrection: 100, Echo: 30, Reverb: 20, Distortion: 50})
	for i := range orig {
		if in.Samples[i] != orig[i] {
			t.Fatalf("input sample %d changed from %v to %v", i, orig[i], in.Samples[i])
		}
	}
}

func TestProcessEchoOnTone(t *testing.T) {
	in := toneBuffer(440, 1.0)
	out := NewChain(discardLogger()).Process(in, Snapshot{Echo: 50})

	delay := audio.DeviceRate / 2
	for i := 0; i < delay; i++ {
		if out.Samples[i] != in.Samples[i] {
			t.Fatalf("sample %d = %v before the echo, want %v", i, out.Samples[i], in.Samples[i])
		}
	}
	for i := delay; i < len(in.Samples); i++ {
		want := in.Samples[i] + 0.6*in.Samples[i-delay]
		if math.Abs(out.Samples[i]-want) > 1e-12 {
			t.Fatalf("sample %d = %v, want %v", i, out.Samples[i], want)
		}
	}
}

func TestProcessOrder(t *testing.T) {
	in := toneBuffer(300, 0.25)
	out := NewChain(discardLogger()).Process(in, Snapshot{Echo: 10, Distortion: 40})

	echoed, err := echo(in.Samples, in.SampleRate, 1, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := distort(echoed, in.SampleRate, 1, 0.4)
	for i := range want {
		if math.Abs(out.Samples[i]-want[i]) > 1e-12 {
			t.Fatalf("sample %d = %v, want echo then distortion %v", i, out.Samples[i], want[i])
		}
	}
}

func TestProcessFullDistortionStaysInRange(t *testing.T) {
	in := &audio.Buffer{
		Samples:    sine(200, audio.DeviceRate, 0.2, 3.0),
		SampleRate: audio.DeviceRate,
		Channels:   1,
	}
	out := NewChain(discardLogger()).Process(in, Snapshot{Distortion: 100})
	for i, v := range out.Samples {
		if v > 1 || v < -1 {
			t.Fatalf("sample %d = %v, outside [-1, 1]", i, v)
		}
	}
}

func TestProcessStereo(t *testing.T) {
	left := sine(440, 1000, 1, 0.5)
	in := &audio.Buffer{SampleRate: 1000, Channels: 2}
	for _, v := range left {
		in.Samples = append(in.Samples, v, 0)
	}
	out := NewChain(discardLogger()).Process(in, Snapshot{Echo: 10})

	// 100 frame delay, the silent right channel must stay silent.
	for i := 0; i < out.Frames(); i++ {
		if r := out.Samples[i*2+1]; r != 0 {
			t.Fatalf("right sample %d = %v, want 0", i, r)
		}
	}
	assertClose(t, "left[150]", out.Samples[300], left[150]+0.6*left[50], 1e-12)
}

func TestStageErrorPassesInputThrough(t *testing.T) {
	// At 50 Hz an echo of 10ms rounds to zero frames.
	in := &audio.Buffer{Name: "tiny", Samples: []float64{0.1, 0.2, 0.3, 0.4}, SampleRate: 50, Channels: 1}
	log, logs := captureLogger()

	out := NewChain(log).Process(in, Snapshot{Echo: 1})
	for i := range in.Samples {
		if out.Samples[i] != in.Samples[i] {
			t.Errorf("sample %d = %v, want %v", i, out.Samples[i], in.Samples[i])
		}
	}
	if !strings.Contains(logs.String(), ErrProcessing.Error()) {
		t.Errorf("log = %q, want it to mention %q", logs.String(), ErrProcessing)
	}
	if !strings.Contains(logs.String(), "effect=echo") {
		t.Errorf("log = %q, want effect=echo", logs.String())
	}
}

func TestStagePanicPassesInputThrough(t *testing.T) {
	saved := stages[Reverb]
	defer func() { stages[Reverb] = saved }()
	stages[Reverb] = func(x []float64, _, _ int, _ float64) ([]float64, error) {
		panic("boom")
	}

	in := toneBuffer(440, 0.1)
	log, logs := captureLogger()
	out := NewChain(log).Process(in, Snapshot{Reverb: 50, Distortion: 20})

	want, _ := distort(in.Samples, in.SampleRate, 1, 0.2)
	for i := range want {
		if out.Samples[i] != want[i] {
			t.Fatalf("sample %d = %v, want distortion of the dry input %v", i, out.Samples[i], want[i])
		}
	}
	if !strings.Contains(logs.String(), "boom") {
		t.Errorf("log = %q, want the panic value", logs.String())
	}
}

func TestStageNonFiniteOutputRejected(t *testing.T) {
	saved := stages[Echo]
	defer func() { stages[Echo] = saved }()
	stages[Echo] = func(x []float64, _, _ int, _ float64) ([]float64, error) {
		out := make([]float64, len(x))
		out[0] = math.NaN()
		return out, nil
	}

	in := &audio.Buffer{Samples: []float64{0.5, 0.5}, SampleRate: 100, Channels: 1}
	out := NewChain(discardLogger()).Process(in, Snapshot{Echo: 50})
	if out.Samples[0] != 0.5 {
		t.Errorf("sample 0 = %v, want 0.5", out.Samples[0])
	}
}

func TestCheckOutput(t *testing.T) {
	if err := checkOutput([]float64{0, 1}, 2); err != nil {
		t.Errorf("checkOutput(valid) = %v, want nil", err)
	}
	if err := checkOutput([]float64{0}, 2); err == nil {
		t.Error("checkOutput(short) = nil, want error")
	}
	if err := checkOutput([]float64{math.Inf(1), 0}, 2); err == nil {
		t.Error("checkOutput(inf) = nil, want error")
	}
}

func TestInterleaveRoundTrip(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	chans := deinterleave(x, 3)
	if len(chans) != 3 || chans[1][0] != 2 || chans[2][1] != 6 {
		t.Fatalf("deinterleave = %v", chans)
	}
	back := interleave(chans)
	for i := range x {
		if back[i] != x[i] {
			t.Errorf("interleave[%d] = %v, want %v", i, back[i], x[i])
		}
	}
}
