// Package hasher implements the Integer and Real (Consistent Weighted
// Sampling) hash families used to score a (hash-function id, token, weight)
// triple, plus the shared serialized hasher state (§4.2, §6 of the sketch
// index spec).
package hasher

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	lru "github.com/hashicorp/golang-lru"

	"ragalign/internal/tf"
)

// P is the prime modulus of the Integer linear hash.
const P = 998244353

// Precision distinguishes the Integer fast path from the Real (CWS) path.
// It is implied by (tf_mode, use_idf), never stored independently.
type Precision int

const (
	Integer Precision = iota
	Real
)

func (p Precision) String() string {
	if p == Integer {
		return "INT_OPTIMIZED"
	}
	return "DOUBLE_PRECISION_CWS"
}

// State is the hasher's serialized configuration, shared between the
// Integer and Real precisions. It round-trips through the index file's
// hasher block exactly as §6 specifies.
type State struct {
	K        int
	TokenNum int
	Seed     uint64
	TFMode   tf.Mode
	UseIDF   bool
	IDF      []float64 // len == TokenNum when UseIDF; the Real hasher also fills an all-1.0 default otherwise
}

// Precision derives Integer iff TFMode == Raw and IDF is disabled.
func (s *State) Precision() Precision {
	if s.TFMode == tf.Raw && !s.UseIDF {
		return Integer
	}
	return Real
}

// WriteState writes the hasher block in on-disk order: k, tokenNum, use_idf,
// tf_mode, seed, and (if use_idf) tokenNum float64 idf values.
func WriteState(w io.Writer, s *State) error {
	if err := binary.Write(w, binary.LittleEndian, int32(s.K)); err != nil {
		return fmt.Errorf("hasher: write k: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, int32(s.TokenNum)); err != nil {
		return fmt.Errorf("hasher: write tokenNum: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, s.UseIDF); err != nil {
		return fmt.Errorf("hasher: write use_idf: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, int32(s.TFMode)); err != nil {
		return fmt.Errorf("hasher: write tf_mode: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, s.Seed); err != nil {
		return fmt.Errorf("hasher: write seed: %w", err)
	}
	if s.UseIDF {
		for _, v := range s.IDF {
			if err := binary.Write(w, binary.LittleEndian, v); err != nil {
				return fmt.Errorf("hasher: write idf: %w", err)
			}
		}
	}
	return nil
}

// ReadState reads the hasher block written by WriteState.
func ReadState(r io.Reader) (*State, error) {
	s := &State{}
	var k, tokenNum int32
	if err := binary.Read(r, binary.LittleEndian, &k); err != nil {
		return nil, fmt.Errorf("hasher: read k: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &tokenNum); err != nil {
		return nil, fmt.Errorf("hasher: read tokenNum: %w", err)
	}
	s.K, s.TokenNum = int(k), int(tokenNum)
	if err := binary.Read(r, binary.LittleEndian, &s.UseIDF); err != nil {
		return nil, fmt.Errorf("hasher: read use_idf: %w", err)
	}
	var mode int32
	if err := binary.Read(r, binary.LittleEndian, &mode); err != nil {
		return nil, fmt.Errorf("hasher: read tf_mode: %w", err)
	}
	s.TFMode = tf.Mode(mode)
	if err := binary.Read(r, binary.LittleEndian, &s.Seed); err != nil {
		return nil, fmt.Errorf("hasher: read seed: %w", err)
	}
	if s.UseIDF {
		s.IDF = make([]float64, s.TokenNum)
		br := bufio.NewReaderSize(r, 1<<16)
		for i := range s.IDF {
			if err := binary.Read(br, binary.LittleEndian, &s.IDF[i]); err != nil {
				return nil, fmt.Errorf("hasher: read idf[%d]: %w", i, err)
			}
		}
	}
	return s, nil
}

func defaultIDF(tokenNum int) []float64 {
	idf := make([]float64, tokenNum)
	for i := range idf {
		idf[i] = 1.0
	}
	return idf
}

// IntHasher evaluates the Integer linear hash h(hid, token, w) = (A*token +
// B*w + C) mod P. Coefficients are derived once per hid and cached.
type IntHasher struct {
	state  *State
	coeffs []intCoeff
	have   []bool
}

type intCoeff struct{ a, b, c int }

// NewIntHasher constructs an Integer hasher. TF mode must be Raw and IDF
// must be disabled; the caller (ragalign-build's precision selection)
// enforces that invariant before reaching here.
func NewIntHasher(k, tokenNum int, seed uint64) *IntHasher {
	return &IntHasher{
		state:  &State{K: k, TokenNum: tokenNum, Seed: seed, TFMode: tf.Raw, UseIDF: false},
		coeffs: make([]intCoeff, k),
		have:   make([]bool, k),
	}
}

// NewIntHasherFromState reconstructs an Integer hasher from a loaded State.
func NewIntHasherFromState(s *State) *IntHasher {
	return &IntHasher{state: s, coeffs: make([]intCoeff, s.K), have: make([]bool, s.K)}
}

func (h *IntHasher) coeff(hid int) intCoeff {
	if h.have[hid] {
		return h.coeffs[hid]
	}
	rng := newMT19937(uint32(h.state.Seed) ^ uint32(hid))
	c := intCoeff{
		a: rng.uniformInt(1, P-1),
		b: rng.uniformInt(1, P-1),
		c: rng.uniformInt(0, P-1),
	}
	h.coeffs[hid] = c
	h.have[hid] = true
	return c
}

// Eval computes the Integer hash for (hid, token, weight).
func (h *IntHasher) Eval(hid, token, weight int) int {
	c := h.coeff(hid)
	v := (int64(token)*int64(c.a) + int64(weight)*int64(c.b) + int64(c.c)) % P
	if v < 0 {
		v += P
	}
	return int(v)
}

func (h *IntHasher) State() *State    { return h.state }
func (h *IntHasher) K() int           { return h.state.K }
func (h *IntHasher) TokenNum() int    { return h.state.TokenNum }
func (h *IntHasher) TFMode() tf.Mode  { return h.state.TFMode }
func (h *IntHasher) UseIDF() bool     { return h.state.UseIDF }
func (h *IntHasher) Info() string {
	return fmt.Sprintf("Hasher Mode: %s\nIDF Enabled: No\nTF Strategy: %s", Integer, h.state.TFMode)
}

// gammaDraw is the (r, c, beta) triple a CWS draw depends on; it is a
// function of (seed, hid, token) alone, never of the call's weight.
type gammaDraw struct{ r, c, beta float64 }

// RealHasher evaluates the Consistent Weighted Sampling hash (Ioffe, 2010).
// Per-(hid,token) Gamma/Uniform draws are cached in a bounded LRU: eval is
// called on the order of trillions of times over a build, and the draws
// that feed it don't depend on the call's weight, so a token seen 50 times
// in a document pays the Mersenne Twister reseed cost once instead of 50
// times.
type RealHasher struct {
	state *State
	cache *lru.Cache
}

// NewRealHasher constructs a Real hasher. idf may be nil (defaults to all
// 1.0) when useIDF is false.
func NewRealHasher(k, tokenNum int, seed uint64, mode tf.Mode, useIDF bool, idf []float64, cacheSize int) (*RealHasher, error) {
	if useIDF && len(idf) != tokenNum {
		return nil, fmt.Errorf("hasher: idf vector length %d does not match tokenNum %d", len(idf), tokenNum)
	}
	if !useIDF {
		idf = defaultIDF(tokenNum)
	}
	if cacheSize <= 0 {
		cacheSize = 1 << 16
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("hasher: creating draw cache: %w", err)
	}
	return &RealHasher{
		state: &State{K: k, TokenNum: tokenNum, Seed: seed, TFMode: mode, UseIDF: useIDF, IDF: idf},
		cache: cache,
	}, nil
}

// NewRealHasherFromState reconstructs a Real hasher from a loaded State.
func NewRealHasherFromState(s *State, cacheSize int) (*RealHasher, error) {
	if !s.UseIDF {
		s.IDF = defaultIDF(s.TokenNum)
	}
	if cacheSize <= 0 {
		cacheSize = 1 << 16
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("hasher: creating draw cache: %w", err)
	}
	return &RealHasher{state: s, cache: cache}, nil
}

func (h *RealHasher) drawFor(hid, token int) gammaDraw {
	key := cacheKey(h.state.Seed, hid, token)
	if v, ok := h.cache.Get(key); ok {
		return v.(gammaDraw)
	}
	seed := h.state.Seed ^ (uint64(uint32(hid)) << 32) ^ uint64(uint32(token))
	rng := newMT19937_64(seed)
	r := rng.gamma2()
	c := rng.gamma2()
	beta := rng.uniform01()
	if r <= 0 {
		r = math.SmallestNonzeroFloat64
	}
	if beta <= 0 {
		beta = math.SmallestNonzeroFloat64
	}
	if beta >= 1 {
		beta = math.Nextafter(1, 0)
	}
	d := gammaDraw{r: r, c: c, beta: beta}
	h.cache.Add(key, d)
	return d
}

// Eval computes the CWS hash for (hid, token, weight). weight is the raw
// (pre-IDF) term-frequency weight; IDF scaling is applied internally.
func (h *RealHasher) Eval(hid, token int, weight float64) float64 {
	w := weight
	if h.state.UseIDF && token >= 0 && token < len(h.state.IDF) {
		w = weight * h.state.IDF[token]
	}
	if w <= 0 {
		return math.Inf(1)
	}
	d := h.drawFor(hid, token)
	logw := math.Log(w)
	t := math.Floor(logw/d.r + d.beta)
	y := math.Exp(d.r * (t - d.beta))
	return d.c / (y * math.Exp(d.r))
}

func (h *RealHasher) State() *State   { return h.state }
func (h *RealHasher) K() int          { return h.state.K }
func (h *RealHasher) TokenNum() int   { return h.state.TokenNum }
func (h *RealHasher) TFMode() tf.Mode { return h.state.TFMode }
func (h *RealHasher) UseIDF() bool    { return h.state.UseIDF }
func (h *RealHasher) Info() string {
	idfInfo := "No"
	if h.state.UseIDF {
		idfInfo = "Yes"
	}
	return fmt.Sprintf("Hasher Mode: %s\nIDF Enabled: %s\nTF Strategy: %s", Real, idfInfo, h.state.TFMode)
}
