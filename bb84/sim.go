package bb84

import (
	"math/rand"
	"sync"

	"github.com/mohanachagaleti/bb84sim/bb84/bitarray"
	"github.com/mohanachagaleti/bb84sim/bb84/photon"
)

// chunkBits is the number of photons measured per unit of parallel work. It
// must be a multiple of 8 so that concurrent chunks write to disjoint bytes
// of the result array.
const chunkBits = 2048

// A simulation drives a single end-to-end BB84 run. It is built fresh per
// Simulate call and discarded afterwards; there is no state shared between
// runs.
type simulation struct {
	photons    int
	eve        bool
	rand       *rand.Rand
	sampleProp float64
	workers    int

	// Test hooks. When non-nil these replace the corresponding random
	// generation step, pinning a run to known sequences.
	bitsFunc  func(n int) bitarray.Dense
	basisFunc func(n int) bitarray.Dense
	source    photon.BitSource
}

func (s *simulation) run() (*RunResult, error) {
	n := s.photons

	// Draw order is fixed: Alice's bits, Alice's bases, Bob's bases, Eve's
	// bases, then per-chunk measurement seeds. Reproducibility for a given
	// source depends on it.
	aliceBits := s.randomBits(s.bitsFunc, n)
	aliceBases := s.randomBits(s.basisFunc, n)
	bobBases := s.randomBits(s.basisFunc, n)
	eveBases := bitarray.Empty()
	if s.eve {
		eveBases = s.randomBits(s.basisFunc, n)
	}

	bobBits := s.transmit(aliceBits, aliceBases, bobBases, eveBases)

	// Sifting: keep exactly the positions where Alice and Bob chose the same
	// basis.
	siftMask, err := bitarray.XNor(aliceBases, bobBases)
	if err != nil {
		return nil, err
	}
	siftedIdx := siftMask.Ones()
	aliceSifted := bitarray.Select(aliceBits, siftMask)
	bobSifted := bitarray.Select(bobBits, siftMask)

	// Error estimation over a prefix of the sifted positions. At least one
	// bit is sampled whenever any survived sifting.
	k := 0
	if len(siftedIdx) > 0 {
		k = int(s.sampleProp * float64(len(siftedIdx)))
		if k < 1 {
			k = 1
		}
	}
	aliceSample, err := bitarray.Slice(aliceSifted, 0, k)
	if err != nil {
		return nil, err
	}
	bobSample, err := bitarray.Slice(bobSifted, 0, k)
	if err != nil {
		return nil, err
	}
	mismatches := bitarray.CountOnes(bitarray.XOr(aliceSample, bobSample))
	qber := 0.0
	if k > 0 {
		qber = float64(mismatches) / float64(k)
	}

	// The remaining sifted bits become the keys.
	aliceKey, err := bitarray.Slice(aliceSifted, k, len(siftedIdx))
	if err != nil {
		return nil, err
	}
	bobKey, err := bitarray.Slice(bobSifted, k, len(siftedIdx))
	if err != nil {
		return nil, err
	}

	return &RunResult{
		AliceBits:    aliceBits,
		AliceBases:   aliceBases,
		BobBases:     bobBases,
		BobBits:      bobBits,
		EveBases:     eveBases,
		Eavesdropped: s.eve,
		SiftedIdx:    siftedIdx,
		SampleIdx:    siftedIdx[:k],
		KeyIdx:       siftedIdx[k:],
		QBER:         qber,
		AliceKey:     aliceKey,
		BobKey:       bobKey,
		Stats: Stats{
			Photons: n,
			Sifted:  len(siftedIdx),
			Sampled: k,
			Errors:  mismatches,
			KeyBits: aliceKey.Size(),
			QBER:    qber,
		},
	}, nil
}

// randomBits produces n uniform random bits from the run's source, unless a
// test hook overrides generation.
func (s *simulation) randomBits(hook func(n int) bitarray.Dense, n int) bitarray.Dense {
	if hook != nil {
		return hook(n)
	}
	buf := make([]byte, bitarray.BytesFor(n))
	s.rand.Read(buf)
	return bitarray.NewDense(buf, n)
}

// transmit pushes every photon through the channel, optionally via the
// eavesdropper, and returns Bob's measured bits.
//
// Photons are mutually independent, so they are measured in byte-aligned
// chunks spread across s.workers goroutines. Each chunk draws from its own
// source, seeded up front from the run's source, which keeps results
// byte-identical regardless of worker count or scheduling.
func (s *simulation) transmit(aliceBits, aliceBases, bobBases, eveBases bitarray.Dense) bitarray.Dense {
	n := s.photons
	out := make([]byte, bitarray.BytesFor(n))
	if s.source != nil {
		s.measureRange(out, 0, n, s.source, aliceBits, aliceBases, bobBases, eveBases)
		return bitarray.NewDense(out, n)
	}

	chunks := (n + chunkBits - 1) / chunkBits
	seeds := make([]int64, chunks)
	for i := range seeds {
		seeds[i] = s.rand.Int63()
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)
	for c := 0; c < chunks; c++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(c int) {
			defer wg.Done()
			defer func() { <-sem }()
			lo := c * chunkBits
			hi := lo + chunkBits
			if hi > n {
				hi = n
			}
			src := photon.RandSource(rand.New(rand.NewSource(seeds[c])))
			s.measureRange(out, lo, hi, src, aliceBits, aliceBases, bobBases, eveBases)
		}(c)
	}
	wg.Wait()
	return bitarray.NewDense(out, n)
}

// measureRange measures photons [lo, hi), writing Bob's outcomes into the
// corresponding bits of out. Callers must ensure ranges handed to concurrent
// invocations do not share bytes.
func (s *simulation) measureRange(out []byte, lo, hi int, src photon.BitSource, aliceBits, aliceBases, bobBases, eveBases bitarray.Dense) {
	for i := lo; i < hi; i++ {
		bit := aliceBits.Get(i)
		prep := photon.FromBit(aliceBases.Get(i))
		meas := photon.FromBit(bobBases.Get(i))
		var got bool
		if s.eve {
			got = photon.Intercept(bit, prep, photon.FromBit(eveBases.Get(i)), meas, src)
		} else {
			got = photon.Measure(bit, prep, meas, src)
		}
		if got {
			out[i/8] |= 1 << (i % 8)
		}
	}
}
