package domain

import "strings"

// Effect declares a target entity an action or chain is known to modify.
type Effect struct {
	Entity string `json:"entity" yaml:"entity" mapstructure:"entity"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Source string `json:"source,omitempty" yaml:"source,omitempty" mapstructure:"source"`
}

// SameTarget compares the target entities of two effects, ignoring case and
// surrounding whitespace.
func (e Effect) SameTarget(other Effect) bool {
	return strings.EqualFold(strings.TrimSpace(e.Entity), strings.TrimSpace(other.Entity))
}

// MergeEffects concatenates the lists in order, keeping only the first effect
// seen for each target entity.
func MergeEffects(lists ...[]Effect) []Effect {
	merged := []Effect{}
	for _, list := range lists {
		for _, eff := range list {
			if containsTarget(merged, eff) {
				continue
			}
			merged = append(merged, eff)
		}
	}
	return merged
}

func containsTarget(effects []Effect, eff Effect) bool {
	for _, existing := range effects {
		if existing.SameTarget(eff) {
			return true
		}
	}
	return false
}
