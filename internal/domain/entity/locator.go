package entity

import "fmt"

type QueryKind string

const (
	QueryCSS   QueryKind = "css"
	QueryXPath QueryKind = "xpath"
	// QueryText matches a CSS selector whose text matches Pattern (JS regex).
	QueryText QueryKind = "text"
)

type Query struct {
	Kind    QueryKind `yaml:"kind"`
	Value   string    `yaml:"value"`
	Pattern string    `yaml:"pattern,omitempty"`
}

func (q Query) String() string {
	if q.Kind == QueryText {
		return fmt.Sprintf("%s(%s ~ /%s/)", q.Kind, q.Value, q.Pattern)
	}
	return fmt.Sprintf("%s(%s)", q.Kind, q.Value)
}

func (q Query) Validate() error {
	switch q.Kind {
	case QueryCSS, QueryXPath:
	case QueryText:
		if q.Pattern == "" {
			return fmt.Errorf("text query %q needs a pattern", q.Value)
		}
	default:
		return fmt.Errorf("unknown query kind %q", q.Kind)
	}
	if q.Value == "" {
		return fmt.Errorf("%s query has empty value", q.Kind)
	}
	return nil
}

// LocatorSpec is an ordered list of candidate queries for one logical
// target. Earlier candidates are preferred.
type LocatorSpec struct {
	Name       string  `yaml:"name"`
	Candidates []Query `yaml:"candidates"`
	// Visible rejects elements that are present but not rendered.
	Visible bool `yaml:"visible"`
}

func (s LocatorSpec) Validate() error {
	if len(s.Candidates) == 0 {
		return fmt.Errorf("locator %q has no candidates", s.Name)
	}
	for i, q := range s.Candidates {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("locator %q candidate %d: %w", s.Name, i, err)
		}
	}
	return nil
}
