package observation

import (
	"fmt"
	"strings"

	"github.com/macrocosme/time-domain-astronomy-sandbox/internal/errs"
)

// BoundsPolicy decides what happens when an injected signal reaches past
// either end of the buffer.
type BoundsPolicy int

const (
	// BoundsClamp writes the part of the signal that falls inside the
	// buffer and silently drops the rest.
	BoundsClamp BoundsPolicy = iota
	// BoundsWrap wraps sample indices around the buffer, matching the
	// circular rotation used by dedispersion.
	BoundsWrap
	// BoundsReject fails the injection before anything is written.
	BoundsReject
)

func (p BoundsPolicy) String() string {
	switch p {
	case BoundsClamp:
		return "clamp"
	case BoundsWrap:
		return "wrap"
	case BoundsReject:
		return "reject"
	default:
		return fmt.Sprintf("BoundsPolicy(%d)", int(p))
	}
}

// ParseBoundsPolicy converts a policy name, as returned by String, back to a
// BoundsPolicy.
func ParseBoundsPolicy(s string) (BoundsPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamp":
		return BoundsClamp, nil
	case "wrap":
		return BoundsWrap, nil
	case "reject":
		return BoundsReject, nil
	default:
		return 0, fmt.Errorf("%w: unknown bounds policy %q", errs.ErrInvalidArgument, s)
	}
}

func (p BoundsPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *BoundsPolicy) UnmarshalText(text []byte) error {
	v, err := ParseBoundsPolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// resolve maps sample index i into the buffer of n samples. ok is false when
// the sample must not be written.
func (p BoundsPolicy) resolve(i, n int) (idx int, ok bool) {
	if i >= 0 && i < n {
		return i, true
	}
	if p == BoundsWrap {
		return ((i % n) + n) % n, true
	}
	return 0, false
}
