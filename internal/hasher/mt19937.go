package hasher

import "math"

// mt19937 is a 32-bit Mersenne Twister, seeded deterministically from a
// single uint32. It backs the Integer hasher's per-hid coefficient draws.
// This is the reference algorithm (Matsumoto & Nishimura, 1998) — kept
// self-contained so index files stay portable across reimplementations of
// this rewrite, per the determinism requirement in the design notes.
type mt19937 struct {
	state [624]uint32
	index int
}

const (
	mtN32        = 624
	mtM32        = 397
	mtMatrixA32  = 0x9908b0df
	mtUpperMask32 = 0x80000000
	mtLowerMask32 = 0x7fffffff
)

func newMT19937(seed uint32) *mt19937 {
	m := &mt19937{}
	m.seed(seed)
	return m
}

func (m *mt19937) seed(seed uint32) {
	m.state[0] = seed
	for i := 1; i < mtN32; i++ {
		prev := m.state[i-1]
		m.state[i] = 1812433253*(prev^(prev>>30)) + uint32(i)
	}
	m.index = mtN32
}

func (m *mt19937) generate() {
	for i := 0; i < mtN32; i++ {
		y := (m.state[i] & mtUpperMask32) | (m.state[(i+1)%mtN32] & mtLowerMask32)
		next := m.state[(i+mtM32)%mtN32] ^ (y >> 1)
		if y&1 != 0 {
			next ^= mtMatrixA32
		}
		m.state[i] = next
	}
	m.index = 0
}

// Uint32 returns the next tempered 32-bit draw.
func (m *mt19937) Uint32() uint32 {
	if m.index >= mtN32 {
		m.generate()
	}
	y := m.state[m.index]
	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	m.index++
	return y
}

// uniformInt draws from [lo, hi] inclusive using modulo reduction. With a
// span near p = 998244353 over a 32-bit draw, the lowest residues are
// about 25% more likely than the rest; this is not security sensitive, and
// determinism, not uniformity, is what index-file portability requires.
func (m *mt19937) uniformInt(lo, hi int) int {
	span := uint32(hi - lo + 1)
	return lo + int(m.Uint32()%span)
}

// mt19937_64 is the 64-bit Mersenne Twister variant, used to derive the CWS
// Gamma/Uniform draws for the Real hasher.
type mt19937_64 struct {
	state [312]uint64
	index int
}

const (
	mtN64        = 312
	mtM64        = 156
	mtMatrixA64  = 0xB5026F5AA96619E9
	mtUpperMask64 = 0xFFFFFFFF80000000
	mtLowerMask64 = 0x7FFFFFFF
)

func newMT19937_64(seed uint64) *mt19937_64 {
	m := &mt19937_64{}
	m.seed(seed)
	return m
}

func (m *mt19937_64) seed(seed uint64) {
	m.state[0] = seed
	for i := 1; i < mtN64; i++ {
		prev := m.state[i-1]
		m.state[i] = 6364136223846793005*(prev^(prev>>62)) + uint64(i)
	}
	m.index = mtN64
}

func (m *mt19937_64) generate() {
	for i := 0; i < mtN64; i++ {
		y := (m.state[i] & mtUpperMask64) | (m.state[(i+1)%mtN64] & mtLowerMask64)
		next := m.state[(i+mtM64)%mtN64] ^ (y >> 1)
		if y&1 != 0 {
			next ^= mtMatrixA64
		}
		m.state[i] = next
	}
	m.index = 0
}

// Uint64 returns the next tempered 64-bit draw.
func (m *mt19937_64) Uint64() uint64 {
	if m.index >= mtN64 {
		m.generate()
	}
	x := m.state[m.index]
	x ^= (x >> 29) & 0x5555555555555555
	x ^= (x << 17) & 0x71D67FFFEDA60000
	x ^= (x << 37) & 0xFFF7EEE000000000
	x ^= x >> 43
	m.index++
	return x
}

// uniform01 draws a float64 in [0,1) using the standard 53-bit technique.
func (m *mt19937_64) uniform01() float64 {
	return float64(m.Uint64()>>11) * (1.0 / 9007199254740992.0)
}

// exponential1 draws an Exponential(1) variate via inverse CDF, guarding
// against log(0) by excluding zero from the uniform draw.
func (m *mt19937_64) exponential1() float64 {
	u := m.uniform01()
	for u == 0 {
		u = m.uniform01()
	}
	return -math.Log(u)
}

// gamma2 draws a Gamma(shape=2, scale=1) variate. For integer shape 2 this
// is exactly the sum of two independent Exponential(1) draws — no general
// Marsaglia-Tsang rejection sampler is needed, and the draw count per call
// (two raw Uint64 draws) is fixed and documented, which is what the
// cross-implementation reproducibility requirement in the design notes
// asks for.
func (m *mt19937_64) gamma2() float64 {
	return m.exponential1() + m.exponential1()
}
