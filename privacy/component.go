package privacy

import (
	"errors"
	"strings"
)

const (
	ComponentTypeBidder    = "bidder"
	ComponentTypeAnalytics = "analytics"
	ComponentTypeGeneral   = "general"
)

// Component describes who is requesting an activity. It is a pure
// matching value, never mutated by rule evaluation.
type Component struct {
	Type string
	Name string
}

func (c Component) MatchesName(v string) bool {
	return strings.EqualFold(c.Name, v)
}

func (c Component) MatchesType(v string) bool {
	return strings.EqualFold(c.Type, v)
}

// ParseComponent parses strings of the format "bidder.appnexus" where the
// type part is optional and defaults to bidder.
func ParseComponent(v string) (Component, error) {
	if v == "" {
		return Component{}, errors.New("unable to parse empty component")
	}

	split := strings.Split(v, ".")
	if len(split) == 2 {
		componentType := split[0]
		switch componentType {
		case ComponentTypeBidder, ComponentTypeAnalytics, ComponentTypeGeneral:
			return Component{Type: componentType, Name: split[1]}, nil
		}
		return Component{}, errors.New("unable to parse component (invalid type): " + v)
	}

	if len(split) == 1 {
		return Component{Type: ComponentTypeBidder, Name: split[0]}, nil
	}

	return Component{}, errors.New("unable to parse component: " + v)
}
