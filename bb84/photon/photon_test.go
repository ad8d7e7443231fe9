package photon

import (
	"fmt"
	"math/rand"
	"testing"
)

// A scriptSource replays a fixed sequence of bits and records how many were
// consumed.
type scriptSource struct {
	bits  []bool
	drawn int
}

func (s *scriptSource) Bit() bool {
	b := s.bits[s.drawn]
	s.drawn++
	return b
}

// A failSource fails the test on any draw, for asserting that a measurement
// is deterministic.
type failSource struct {
	t *testing.T
}

func (s failSource) Bit() bool {
	s.t.Fatalf("random bit drawn during a deterministic measurement")
	return false
}

func TestMeasureMatchingBases(t *testing.T) {
	for _, basis := range []Basis{Rectilinear, Diagonal} {
		for _, bit := range []bool{false, true} {
			t.Run(fmt.Sprintf("%v/%t", basis, bit), func(t *testing.T) {
				if got := Measure(bit, basis, basis, failSource{t}); got != bit {
					t.Errorf("Measure(%t, %v, %v) == %t, want %t", bit, basis, basis, got, bit)
				}
			})
		}
	}
}

func TestMeasureMismatchDrawsOneBit(t *testing.T) {
	for _, want := range []bool{false, true} {
		src := &scriptSource{bits: []bool{want}}
		if got := Measure(true, Rectilinear, Diagonal, src); got != want {
			t.Errorf("Measure() == %t, want the drawn bit %t", got, want)
		}
		if src.drawn != 1 {
			t.Errorf("mismatched-basis measurement drew %d bits, want 1", src.drawn)
		}
	}
}

func TestMeasureMismatchUniform(t *testing.T) {
	src := RandSource(rand.New(rand.NewSource(42)))
	const n = 20000
	ones := 0
	for i := 0; i < n; i++ {
		if Measure(false, Rectilinear, Diagonal, src) {
			ones++
		}
	}
	frac := float64(ones) / n
	if frac < 0.45 || frac > 0.55 {
		t.Errorf("mismatched-basis outcomes %v of the time, want about 0.5", frac)
	}
}

func TestInterceptAgreeingEveIsInvisible(t *testing.T) {
	// When Eve happens to choose the preparation basis her resend is a
	// faithful copy, so a basis-matched receiver sees no disturbance and no
	// randomness is consumed.
	for _, basis := range []Basis{Rectilinear, Diagonal} {
		for _, bit := range []bool{false, true} {
			if got := Intercept(bit, basis, basis, basis, failSource{t}); got != bit {
				t.Errorf("Intercept(%t, %v, %v, %v) == %t, want %t", bit, basis, basis, basis, got, bit)
			}
		}
	}
}

func TestInterceptDrawOrder(t *testing.T) {
	// Alice prepares in +, Eve measures in x (one draw), resends in x, Bob
	// measures in + (a second draw). The first scripted bit must become
	// Eve's outcome, the second Bob's.
	src := &scriptSource{bits: []bool{false, true}}
	got := Intercept(false, Rectilinear, Diagonal, Rectilinear, src)
	if !got {
		t.Errorf("Intercept() == false, want Bob's draw (true)")
	}
	if src.drawn != 2 {
		t.Errorf("intercepted photon drew %d bits, want 2", src.drawn)
	}
}

func TestInterceptErrorSignature(t *testing.T) {
	// Over random Eve bases, a basis-matched receiver disagrees with the
	// sender a quarter of the time.
	r := rand.New(rand.NewSource(7))
	src := RandSource(r)
	const n = 40000
	errs := 0
	for i := 0; i < n; i++ {
		bit := r.Int63()&1 == 1
		eve := FromBit(r.Int63()&1 == 1)
		if Intercept(bit, Rectilinear, eve, Rectilinear, src) != bit {
			errs++
		}
	}
	frac := float64(errs) / n
	if frac < 0.22 || frac > 0.28 {
		t.Errorf("intercepted error rate %v, want about 0.25", frac)
	}
}

func TestBasisString(t *testing.T) {
	if got := Rectilinear.String(); got != "+" {
		t.Errorf("Rectilinear.String() == %q, want +", got)
	}
	if got := Diagonal.String(); got != "x" {
		t.Errorf("Diagonal.String() == %q, want x", got)
	}
}

func TestFromBit(t *testing.T) {
	if FromBit(false) != Rectilinear || FromBit(true) != Diagonal {
		t.Errorf("FromBit does not round-trip the packed basis representation")
	}
}
