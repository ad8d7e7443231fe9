// Package photon models the quantum layer of a BB84 exchange: polarization
// bases, single-photon measurement, and the intercept-resend attack.
package photon

import "math/rand"

// A Basis is one of the two mutually unbiased bases used to encode a bit in a
// photon's polarization. Measuring in the preparation basis recovers the
// encoded bit with certainty; measuring in the other basis yields a uniformly
// random outcome.
type Basis byte

const (
	// Rectilinear is the + basis (horizontal/vertical polarization).
	Rectilinear Basis = iota
	// Diagonal is the x basis (45/135-degree polarization).
	Diagonal
)

// String returns the conventional single-character name of b.
func (b Basis) String() string {
	if b == Diagonal {
		return "x"
	}
	return "+"
}

// FromBit maps the packed representation of a basis choice to a Basis, with 0
// standing for Rectilinear and 1 for Diagonal.
func FromBit(bit bool) Basis {
	if bit {
		return Diagonal
	}
	return Rectilinear
}

// A BitSource yields independent uniform random bits. Measurement consumes
// one bit per basis mismatch and none otherwise.
type BitSource interface {
	Bit() bool
}

// RandSource adapts r into a BitSource. This may use pRNG for experiments
// and/or testing; simulations needing unpredictable outcomes must seed from
// real entropy.
func RandSource(r *rand.Rand) BitSource {
	return randSource{r}
}

type randSource struct {
	r *rand.Rand
}

func (s randSource) Bit() bool {
	return s.r.Int63()&1 == 1
}

// Measure observes a photon carrying bit in the prep basis with an analyzer
// oriented along the meas basis. If the bases match the encoded bit is
// returned exactly; otherwise the state collapses to a uniformly random
// outcome drawn from src.
func Measure(bit bool, prep, meas Basis, src BitSource) bool {
	if prep == meas {
		return bit
	}
	return src.Bit()
}

// Intercept models an intercept-resend attack on a single photon. The
// eavesdropper measures the photon in her own basis, destroying the original
// state, then forwards a fresh photon carrying her outcome in her basis. The
// returned value is the receiver's measurement of the forwarded photon.
//
// When the eavesdropper's basis disagrees with prep her resend is wrong half
// the time, so even positions where sender and receiver bases match show an
// error with probability 1/4. That elevated error rate is the attack's
// signature.
func Intercept(bit bool, prep, eve, meas Basis, src BitSource) bool {
	stolen := Measure(bit, prep, eve, src)
	return Measure(stolen, eve, meas, src)
}
