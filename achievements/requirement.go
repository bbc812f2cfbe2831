// Package achievements decides which catalog achievements a user has
// earned and grants them inside the caller's transaction.
package achievements

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"habitxp/models"
)

// Kind identifies a requirement predicate.
type Kind int

const (
	KindTotalCompletions Kind = iota + 1
	KindConsecutiveDays
	KindXPThreshold
	KindCompletionsOfType
)

func (k Kind) String() string {
	switch k {
	case KindTotalCompletions:
		return "total_completions"
	case KindConsecutiveDays:
		return "consecutive_days"
	case KindXPThreshold:
		return "xp_threshold"
	case KindCompletionsOfType:
		return "completions_of_type"
	default:
		return "unknown"
	}
}

// Requirement is a parsed catalog requirement. Type is only set for
// KindCompletionsOfType.
type Requirement struct {
	Kind Kind
	N    int
	Type string
}

func TotalCompletions(n int) Requirement { return Requirement{Kind: KindTotalCompletions, N: n} }

func ConsecutiveDays(n int) Requirement { return Requirement{Kind: KindConsecutiveDays, N: n} }

func XPThreshold(n int) Requirement { return Requirement{Kind: KindXPThreshold, N: n} }

func CompletionsOfType(n int, tipo string) Requirement {
	return Requirement{Kind: KindCompletionsOfType, N: n, Type: tipo}
}

func (r Requirement) String() string {
	if r.Kind == KindCompletionsOfType {
		return fmt.Sprintf("%s(%d, %q)", r.Kind, r.N, r.Type)
	}
	return fmt.Sprintf("%s(%d)", r.Kind, r.N)
}

// ErrUnknownRequirement is returned for requirement text that matches no
// known phrasing.
var ErrUnknownRequirement = errors.New("unknown requirement")

var firstNumber = regexp.MustCompile(`\d+`)

// ParseRequirement turns catalog text into a Requirement. Phrasings are
// checked in this order:
//
//	"... <n> desafios total ..."      TotalCompletions
//	"... <n> dias seguidos ..."       ConsecutiveDays
//	"Acumular <n> XP"                 XPThreshold
//	"... <n> desafios tipo <TYPE>"    CompletionsOfType
//
// n is the first integer in the text. TYPE is every token after "tipo",
// joined by single spaces.
func ParseRequirement(text string) (Requirement, error) {
	switch {
	case strings.Contains(text, "desafios total"):
		n, err := leadingCount(text)
		if err != nil {
			return Requirement{}, err
		}
		return TotalCompletions(n), nil

	case strings.Contains(text, "dias seguidos"):
		n, err := leadingCount(text)
		if err != nil {
			return Requirement{}, err
		}
		return ConsecutiveDays(n), nil

	case strings.Contains(text, "Acumular") && strings.Contains(text, "XP"):
		n, err := leadingCount(text)
		if err != nil {
			return Requirement{}, err
		}
		return XPThreshold(n), nil

	case strings.Contains(text, "desafios tipo"):
		n, err := leadingCount(text)
		if err != nil {
			return Requirement{}, err
		}
		tipo := typeAfterKeyword(text)
		if tipo == "" {
			return Requirement{}, fmt.Errorf("%w: missing type in %q", ErrUnknownRequirement, text)
		}
		return CompletionsOfType(n, tipo), nil
	}
	return Requirement{}, fmt.Errorf("%w: %q", ErrUnknownRequirement, text)
}

func leadingCount(text string) (int, error) {
	m := firstNumber.FindString(text)
	if m == "" {
		return 0, fmt.Errorf("%w: no count in %q", ErrUnknownRequirement, text)
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("%w: bad count in %q: %v", ErrUnknownRequirement, text, err)
	}
	return n, nil
}

func typeAfterKeyword(text string) string {
	fields := strings.Fields(text)
	for i, f := range fields {
		if f == "tipo" {
			return strings.Join(fields[i+1:], " ")
		}
	}
	return ""
}

// Definition is a catalog entry with its requirement already parsed.
type Definition struct {
	ID          uint
	Name        string
	Requirement Requirement
}

// InvalidDefinition is a catalog entry whose requirement text could not
// be parsed. It can never be granted.
type InvalidDefinition struct {
	ID   uint
	Name string
	Text string
	Err  error
}

// BuildCatalog parses every row, preserving row order.
func BuildCatalog(rows []models.Achievement) ([]Definition, []InvalidDefinition) {
	defs := make([]Definition, 0, len(rows))
	var invalid []InvalidDefinition
	for _, row := range rows {
		req, err := ParseRequirement(row.Requirement)
		if err != nil {
			invalid = append(invalid, InvalidDefinition{ID: row.ID, Name: row.Name, Text: row.Requirement, Err: err})
			continue
		}
		defs = append(defs, Definition{ID: row.ID, Name: row.Name, Requirement: req})
	}
	return defs, invalid
}
