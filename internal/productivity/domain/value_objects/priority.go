package value_objects

import (
	"errors"
	"fmt"
	"strings"
)

// Priority is how much a task matters to its owner. Higher values are more
// important.
type Priority int

const (
	PriorityLowest Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

var ErrInvalidPriority = errors.New("invalid priority value")

var priorityNames = [...]string{"lowest", "medium", "high", "urgent"}

// priorityAliases are the synonyms older clients stored.
var priorityAliases = map[string]Priority{
	"low":      PriorityLowest,
	"none":     PriorityLowest,
	"normal":   PriorityMedium,
	"critical": PriorityUrgent,
	"top":      PriorityUrgent,
}

// Priorities lists every priority from least to most important.
func Priorities() []Priority {
	return []Priority{PriorityLowest, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// ParsePriority accepts a canonical name or an alias, in any case.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range priorityNames {
		if name == s {
			return Priority(p), nil
		}
	}
	if p, ok := priorityAliases[s]; ok {
		return p, nil
	}
	return PriorityLowest, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

// NormalizePriority resolves any stored value. Unknown or missing values
// become PriorityLowest.
func NormalizePriority(s string) Priority {
	p, _ := ParsePriority(s)
	return p
}

func (p Priority) String() string {
	if !p.IsValid() {
		return "unknown"
	}
	return priorityNames[p]
}

func (p Priority) IsValid() bool {
	return p >= PriorityLowest && p <= PriorityUrgent
}

// Rank is the ordinal used by the score model. Out-of-range values rank
// as PriorityLowest.
func (p Priority) Rank() int {
	if !p.IsValid() {
		return int(PriorityLowest)
	}
	return int(p)
}
