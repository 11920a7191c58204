package search

import (
	"fmt"
	"strings"
)

// Method selects the correction strategy used after a missed probe.
type Method int

const (
	// MethodInterpolationStep corrects with a linear walk (counter 0, 1, 2, ...).
	MethodInterpolationStep Method = iota + 1
	// MethodImprovedInterpolationStep corrects with a doubling walk (counter 1, 2, 4, ...).
	MethodImprovedInterpolationStep
)

// String returns the short name accepted by ParseMethod.
func (m Method) String() string {
	switch m {
	case MethodInterpolationStep:
		return "linear"
	case MethodImprovedInterpolationStep:
		return "improved"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod maps a method name to a Method. It accepts the short names
// "linear" and "improved" as well as the menu numbers "1" and "2".
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear", "bis", "1":
		return MethodInterpolationStep, nil
	case "improved", "ibis", "exponential", "2":
		return MethodImprovedInterpolationStep, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
}

func (m Method) counter() (stepCounter, error) {
	switch m {
	case MethodInterpolationStep:
		return linearCounter, nil
	case MethodImprovedInterpolationStep:
		return doublingCounter, nil
	default:
		return stepCounter{}, fmt.Errorf("%w: %d", ErrUnknownMethod, int(m))
	}
}
