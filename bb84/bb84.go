// Package bb84 simulates the BB84 quantum key distribution protocol between
// two honest parties, with an optional intercept-resend eavesdropper.
//
// The simulation runs entirely in-process: photons are abstract
// (prepare+measure collapses to a probabilistic rule, see package photon),
// there is no classical channel, and a run is a pure function of its options
// and its random source.
package bb84

import (
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/mohanachagaleti/bb84sim/bb84/bitarray"
	"github.com/mohanachagaleti/bb84sim/bb84/photon"
)

// DefaultSampleProportion is the fraction of sifted bits sacrificed for error
// estimation when SimOpts.SampleProportion is left zero.
var DefaultSampleProportion = 0.25

var (
	// ErrInvalidPhotonCount is returned when a run is requested with a
	// negative number of photons.
	ErrInvalidPhotonCount = errors.New("photon count must be non-negative")

	// ErrInvalidSampleProportion is returned when the requested error
	// estimation sample falls outside [0, 1].
	ErrInvalidSampleProportion = errors.New("sample proportion must lie in [0, 1]")
)

// A SimOpts packages together the arguments necessary to run a BB84
// simulation. The zero value of every field other than Photons has a
// reasonable default.
type SimOpts struct {
	// Photons is the number of qubits Alice prepares and sends. Must be
	// non-negative; zero yields an empty run.
	Photons int

	// Eve subjects every photon to an intercept-resend attack.
	Eve bool

	// Rand provides the randomness driving the run. Two runs built from
	// identically-seeded sources produce identical results. If nil, a fresh
	// time-seeded source is used.
	Rand *rand.Rand

	// SampleProportion specifies the proportion of sifted bits sacrificed
	// during error rate estimation. Defaults to DefaultSampleProportion.
	SampleProportion float64

	// Workers bounds the number of goroutines measuring photons
	// concurrently. Defaults to GOMAXPROCS. Results do not depend on the
	// worker count.
	Workers int
}

// Stats packages together a collection of potentially interesting metrics
// pertaining to a single simulated run.
type Stats struct {
	Photons int
	Sifted  int
	Sampled int
	Errors  int
	KeyBits int
	QBER    float64
}

// A RunResult aggregates every sequence produced during one run. It is
// read-only output data: the engine never retains or mutates a RunResult
// after returning it.
type RunResult struct {
	// Per-photon sequences, each of length Photons. Basis sequences pack one
	// bit per photon: 0 for the rectilinear basis, 1 for the diagonal.
	AliceBits  bitarray.Dense
	AliceBases bitarray.Dense
	BobBases   bitarray.Dense
	BobBits    bitarray.Dense

	// EveBases is empty unless Eavesdropped is set.
	EveBases     bitarray.Dense
	Eavesdropped bool

	// SiftedIdx holds the positions where Alice's and Bob's bases matched,
	// ascending. SampleIdx is the prefix of SiftedIdx sacrificed for error
	// estimation; KeyIdx is the remainder.
	SiftedIdx []int
	SampleIdx []int
	KeyIdx    []int

	// QBER is the observed error rate over the sampled positions, or 0 when
	// nothing was sampled.
	QBER float64

	// The final keys, read from KeyIdx. AliceKey comes from Alice's prepared
	// bits, BobKey from Bob's measurements; absent eavesdropping and noise
	// the two agree exactly.
	AliceKey bitarray.Dense
	BobKey   bitarray.Dense

	Stats Stats
}

// A PhotonRecord is the per-photon tuple of everything that happened at one
// index of a run.
type PhotonRecord struct {
	AliceBit   bool
	AliceBasis photon.Basis
	BobBasis   photon.Basis
	BobBit     bool

	// EveBasis is meaningful only when Intercepted is set.
	EveBasis    photon.Basis
	Intercepted bool
}

// Record returns the per-photon tuple at index i.
func (r *RunResult) Record(i int) PhotonRecord {
	return PhotonRecord{
		AliceBit:    r.AliceBits.Get(i),
		AliceBasis:  photon.FromBit(r.AliceBases.Get(i)),
		BobBasis:    photon.FromBit(r.BobBases.Get(i)),
		BobBit:      r.BobBits.Get(i),
		EveBasis:    photon.FromBit(r.EveBases.Get(i)),
		Intercepted: r.Eavesdropped,
	}
}

// Simulate performs one BB84 run configured by opts, or returns an error if
// the options are nonsensical. No randomness is consumed on the error path.
func Simulate(opts SimOpts) (*RunResult, error) {
	if opts.Photons < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPhotonCount, opts.Photons)
	}
	if opts.SampleProportion < 0 || opts.SampleProportion > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleProportion, opts.SampleProportion)
	}
	sampleProp := opts.SampleProportion
	if sampleProp == 0 {
		sampleProp = DefaultSampleProportion
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &simulation{
		photons:    opts.Photons,
		eve:        opts.Eve,
		rand:       rnd,
		sampleProp: sampleProp,
		workers:    workers,
	}
	return s.run()
}

// Run performs a BB84 run of n photons with a deterministic seed. Each call
// builds a fresh random source, so concurrent runs never interfere and equal
// (n, eve, seed) triples produce byte-identical results.
func Run(n int, eve bool, seed int64) (*RunResult, error) {
	return Simulate(SimOpts{
		Photons: n,
		Eve:     eve,
		Rand:    rand.New(rand.NewSource(seed)),
	})
}
