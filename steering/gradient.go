// Package steering implements a context-steering gradient map: a ring of
// discretized directions holding interest and danger, smoothed with a
// gaussian over angular distance and resolved into a heading once per frame.
//
// A GradientMap is owned by exactly one agent and is not safe for concurrent
// use. The per-frame cycle is:
//
//	m.Clear()                 // frame boundary: decay by blending, drop heading
//	m.AddInterest(a, v) ...   // any number of signals
//	h := m.Heading()          // resolved once, memoized until the next Clear
package steering

import (
	"errors"
	"fmt"
	"math"
)

// Channel selects which signal of a slot an injection writes to.
type Channel int

const (
	Interest Channel = 0
	Danger   Channel = 1
)

func (c Channel) String() string {
	switch c {
	case Interest:
		return "interest"
	case Danger:
		return "danger"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

var (
	ErrResolution = errors.New("steering: resolution must be at least 1")
	ErrSigma      = errors.New("steering: sigma must be positive")
	ErrBlending   = errors.New("steering: blending must be within [0,1]")
)

// Sample is one slot of the gradient as exposed to callers.
type Sample struct {
	Angle    float32 `yaml:"angle"`
	Interest float32 `yaml:"interest"`
	Danger   float32 `yaml:"danger"`
}

// GradientMap holds per-direction interest and danger for one agent.
type GradientMap struct {
	angles   []float32
	slots    [][2]float32
	sigma    float32
	blending float32

	heading  Vec2
	resolved bool
}

// New allocates a map with resolution slots. sigma and blending are not
// validated: sigma must be > 0 and blending within [0,1], otherwise weights
// and decay become NaN or diverge. Use NewChecked to fail fast instead.
func New(resolution int, sigma, blending float32) *GradientMap {
	if resolution < 0 {
		resolution = 0
	}
	m := &GradientMap{
		angles:   make([]float32, resolution),
		slots:    make([][2]float32, resolution),
		sigma:    sigma,
		blending: blending,
	}
	for i := range m.angles {
		m.angles[i] = float32(i) / float32(resolution) * float32(twoPi)
	}
	return m
}

// NewChecked is New with the preconditions enforced. Valid parameters give
// a map identical to New.
func NewChecked(resolution int, sigma, blending float32) (*GradientMap, error) {
	if resolution < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrResolution, resolution)
	}
	if !(sigma > 0) || math.IsInf(float64(sigma), 0) {
		return nil, fmt.Errorf("%w: got %v", ErrSigma, sigma)
	}
	if !(blending >= 0 && blending <= 1) {
		return nil, fmt.Errorf("%w: got %v", ErrBlending, blending)
	}
	return New(resolution, sigma, blending), nil
}

func (m *GradientMap) Resolution() int {
	return len(m.angles)
}

func (m *GradientMap) Sigma() float32 {
	return m.sigma
}

func (m *GradientMap) Blending() float32 {
	return m.blending
}

// Angle returns the direction of slot i in radians.
func (m *GradientMap) Angle(i int) float32 {
	return m.angles[i]
}

// Gradient returns a copy of every slot as (angle, interest, danger).
func (m *GradientMap) Gradient() []Sample {
	return m.AppendGradient(make([]Sample, 0, len(m.slots)))
}

// AppendGradient appends every slot to dst and returns the extended slice.
// It does not allocate when dst has room for Resolution() samples.
func (m *GradientMap) AppendGradient(dst []Sample) []Sample {
	for i, s := range m.slots {
		dst = append(dst, Sample{Angle: m.angles[i], Interest: s[Interest], Danger: s[Danger]})
	}
	return dst
}

func (m *GradientMap) AddInterest(angle, value float32) {
	m.Add(Interest, angle, value)
}

func (m *GradientMap) AddDanger(angle, value float32) {
	m.Add(Danger, angle, value)
}

// Add spreads value, clamped to [0,1], around angle on channel ch. Every slot
// keeps the larger of its current value and the weighted signal, so repeated
// signals never accumulate past the strongest one. A resolved heading is
// left untouched until the next Clear.
func (m *GradientMap) Add(ch Channel, angle, value float32) {
	if ch != Interest && ch != Danger {
		return
	}
	value = clamp01(value)
	for i, a := range m.angles {
		v := value * Weight(m.sigma, a, angle)
		if v > m.slots[i][ch] {
			m.slots[i][ch] = v
		}
	}
}

// Heading resolves the steering vector: each slot's direction weighted by
// clamp(interest-danger, 0, 1), summed. The result is computed once and
// returned unchanged until Clear or Reset.
func (m *GradientMap) Heading() Vec2 {
	if m.resolved {
		return m.heading
	}
	var x, y float64
	for i, s := range m.slots {
		merged := float64(clamp01(s[Interest] - s[Danger]))
		if merged == 0 {
			continue
		}
		sin, cos := math.Sincos(float64(m.angles[i]))
		x += cos * merged
		y += sin * merged
	}
	m.heading = Vec2{X: float32(x), Y: float32(y)}
	m.resolved = true
	return m.heading
}

// CachedHeading reports the memoized heading without computing one.
func (m *GradientMap) CachedHeading() (Vec2, bool) {
	return m.heading, m.resolved
}

// Clear decays every slot by the blending factor and drops the memoized
// heading. Call it once per frame boundary.
func (m *GradientMap) Clear() {
	for i := range m.slots {
		m.slots[i][Interest] *= m.blending
		m.slots[i][Danger] *= m.blending
	}
	m.heading = Vec2{}
	m.resolved = false
}

// Reset zeroes the gradient regardless of blending.
func (m *GradientMap) Reset() {
	clear(m.slots)
	m.heading = Vec2{}
	m.resolved = false
}

// Peak returns the strongest slot on ch and its index, or -1 when the map
// has no slots.
func (m *GradientMap) Peak(ch Channel) (Sample, int) {
	if ch != Interest && ch != Danger {
		return Sample{}, -1
	}
	best := -1
	var bestV float32
	for i, s := range m.slots {
		if best < 0 || s[ch] > bestV {
			best = i
			bestV = s[ch]
		}
	}
	if best < 0 {
		return Sample{}, -1
	}
	s := m.slots[best]
	return Sample{Angle: m.angles[best], Interest: s[Interest], Danger: s[Danger]}, best
}
