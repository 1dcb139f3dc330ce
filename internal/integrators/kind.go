package integrators

import (
	"fmt"
	"strings"
)

// Kind selects the stepping method of an Integrator.
type Kind int

const (
	KindRK4 Kind = iota + 1
	KindRK5
	KindAdams4
	KindAdams5
)

var kindNames = map[Kind]string{
	KindRK4:    "rk4",
	KindRK5:    "rk5",
	KindAdams4: "adams4",
	KindAdams5: "adams5",
}

// Kinds lists every method in a stable order.
func Kinds() []Kind {
	return []Kind{KindRK4, KindRK5, KindAdams4, KindAdams5}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	if k == 0 {
		return "none"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Order is the order of accuracy of the method.
func (k Kind) Order() int {
	switch k {
	case KindRK4, KindAdams4:
		return 4
	case KindRK5, KindAdams5:
		return 5
	}
	return 0
}

// Multistep reports whether the method keeps a derivative history.
func (k Kind) Multistep() bool {
	return k == KindAdams4 || k == KindAdams5
}

// ParseKind accepts the names printed by String. "adams" is an alias for adams4.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "adams" {
		return KindAdams4, nil
	}
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}
