// pkg/admission/admission.go

package admission

import (
	"fmt"

	"github.com/saument1986/Homelab-infrastructure/pkg/alerts"
)

// DefaultMinLevel is the lowest rule level delivered when no threshold is configured.
const DefaultMinLevel = 7

// DefaultDenylist returns the built-in noisy rule groups.
func DefaultDenylist() []string {
	return []string{"syscheck", "rootcheck"}
}

// Reason explains an admission decision.
type Reason string

const (
	ReasonAdmitted       Reason = "admitted"
	ReasonBelowThreshold Reason = "below_threshold"
	ReasonNoisyGroup     Reason = "noisy_group"
)

// Decision is the outcome of evaluating one alert.
type Decision struct {
	Send   bool
	Reason Reason
	// Group is the denylisted group that caused a rejection, if any.
	Group string
}

func (d Decision) String() string {
	if d.Group != "" {
		return fmt.Sprintf("%s (%s)", d.Reason, d.Group)
	}
	return string(d.Reason)
}

// Filter decides whether alerts are eligible for delivery.
type Filter struct {
	minLevel int
	denylist []string
}

// NewFilter builds a filter using the built-in denylist plus any extra groups.
func NewFilter(minLevel int, extraDenied ...string) Filter {
	deny := DefaultDenylist()
	for _, g := range extraDenied {
		if g != "" && !contains(deny, g) {
			deny = append(deny, g)
		}
	}
	return Filter{minLevel: minLevel, denylist: deny}
}

// MinLevel returns the configured threshold.
func (f Filter) MinLevel() int {
	return f.minLevel
}

// Denylist returns a copy of the groups that suppress delivery.
func (f Filter) Denylist() []string {
	return append([]string(nil), f.denylist...)
}

// Evaluate checks the level threshold first, then the denylist.
func (f Filter) Evaluate(alert alerts.Alert) Decision {
	return f.Check(alert.Rule.Level, alert.Rule.Groups)
}

// Check applies the same rules to a level and groups recovered from a record
// that could not be decoded in full.
func (f Filter) Check(level int, groups []string) Decision {
	if level < f.minLevel {
		return Decision{Reason: ReasonBelowThreshold}
	}
	for _, g := range f.denylist {
		if contains(groups, g) {
			return Decision{Reason: ReasonNoisyGroup, Group: g}
		}
	}
	return Decision{Send: true, Reason: ReasonAdmitted}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
