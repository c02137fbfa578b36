package steering

import "math"

const twoPi = 2 * math.Pi

// ShortestArc returns the smallest angular distance between a and b in
// radians, in [0, π]. Inputs may lie outside [0, 2π).
func ShortestArc(a, b float32) float32 {
	d := math.Abs(float64(a) - float64(b))
	if d >= twoPi {
		d = math.Mod(d, twoPi)
	}
	return float32(math.Min(d, twoPi-d))
}

// Weight is the gaussian falloff of a signal centered at a, sampled at b.
// It is 1 at zero distance. A sigma <= 0 yields NaN or 0 and is not trapped.
func Weight(sigma, a, b float32) float32 {
	r := float64(ShortestArc(a, b)) / float64(sigma)
	return float32(math.Exp(-0.5 * r * r))
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
