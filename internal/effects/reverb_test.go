package effects

import (
	"math"
	"testing"
)

func TestImpulseResponse(t *testing.T) {
	ir := impulseResponse(0.3, 1000)
	if len(ir) != 300 {
		t.Fatalf("len = %d, want 300", len(ir))
	}
	if ir[0] != 1 {
		t.Errorf("ir[0] = %v, want 1", ir[0])
	}
	assertClose(t, "ir[last]", ir[299], math.Exp(-0.3), 1e-12)
	for i := 1; i < len(ir); i++ {
		if ir[i] >= ir[i-1] {
			t.Fatalf("ir not decaying at %d: %v >= %v", i, ir[i], ir[i-1])
		}
	}
	if got := impulseResponse(0, 1000); got != nil {
		t.Errorf("impulseResponse(0) = %v, want nil", got)
	}
}

func TestReverbOnImpulse(t *testing.T) {
	x := make([]float64, 1000)
	x[0] = 1
	out, err := reverb(x, 1000, 1, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	ir := impulseResponse(0.1*maxReverbSeconds, 1000)

	assertClose(t, "out[0]", out[0], 0.9+0.1*ir[0], 1e-9)
	for i := 1; i < len(ir); i++ {
		assertClose(t, "tail", out[i], 0.1*ir[i], 1e-9)
	}
	for i := len(ir); i < len(out); i++ {
		assertClose(t, "after tail", out[i], 0, 1e-9)
	}
}

func TestReverbKeepsLength(t *testing.T) {
	x := sine(220, 8000, 0.5, 0.5)
	out, err := reverb(x, 8000, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(x) {
		t.Errorf("len = %d, want %d", len(out), len(x))
	}
}

func TestReverbEmptyIR(t *testing.T) {
	if _, err := reverb([]float64{1, 2}, 10, 1, 0.01); err == nil {
		t.Error("reverb with a zero-length impulse response returned nil error")
	}
}
