package domain

import "fmt"

// Bounds of the value drawn by Randomize.
const (
	RandomMin = 0.02
	RandomMax = 0.2
)

// Modifier computes a new Manning's n from the current one.
type Modifier func(old float64) float64

// RandSource yields uniformly distributed values in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	Float64() float64
}

// Randomize returns a Modifier that ignores the old value and draws a new
// one uniformly from [RandomMin, RandomMax].
func Randomize(src RandSource) Modifier {
	return func(float64) float64 {
		v := RandomMin + (RandomMax-RandomMin)*src.Float64()
		// Clamp so rounding never leaves the interval.
		if v > RandomMax {
			return RandomMax
		}
		return v
	}
}

// Multiply returns a Modifier that scales the old value by factor.
func Multiply(factor float64) Modifier {
	return func(old float64) float64 {
		return old * factor
	}
}

// SelectModifier maps a numeric modifier choice to its Modifier and a
// human-readable description:
//   - 1: randomize within [RandomMin, RandomMax]
//   - 2: multiply by factor
func SelectModifier(choice int, factor float64, src RandSource) (Modifier, string, error) {
	switch choice {
	case 1:
		return Randomize(src), fmt.Sprintf("randomize [%g,%g]", RandomMin, RandomMax), nil
	case 2:
		return Multiply(factor), fmt.Sprintf("multiply by %g", factor), nil
	default:
		return nil, "", fmt.Errorf("%w: modifier %d (want 1 or 2)", ErrInvalidChoice, choice)
	}
}
