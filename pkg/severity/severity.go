// pkg/severity/severity.go

package severity

import "strings"

// Tier names, highest first.
const (
	Critical = "critical"
	High     = "high"
	Medium   = "medium"
	Low      = "low"
)

// Slack mention directives used by the paging tiers.
const (
	MentionChannel = "@channel"
	MentionHere    = "@here"
)

// Tier is a named severity bucket and its presentation attributes.
type Tier struct {
	Name     string
	MinLevel int
	Color    string
	Glyph    string
	Priority string
	// Mention is prefixed to the headline when non-empty.
	Mention string
}

// Label is the upper-cased tier name shown in the severity field.
func (t Tier) Label() string {
	return strings.ToUpper(t.Name)
}

// Table is an ordered set of tiers, evaluated from highest threshold to lowest.
// The last entry doubles as the fallback for levels below every threshold.
type Table struct {
	tiers []Tier
}

// DefaultTable returns the Wazuh rule-level tiers.
func DefaultTable() Table {
	return Table{tiers: []Tier{
		{Name: Critical, MinLevel: 12, Color: "#FF0000", Glyph: "🚨", Priority: "HIGH", Mention: MentionChannel},
		{Name: High, MinLevel: 10, Color: "#FF8C00", Glyph: "⚠️", Priority: "HIGH", Mention: MentionHere},
		{Name: Medium, MinLevel: 7, Color: "#FFD700", Glyph: "⚡", Priority: "MEDIUM"},
		{Name: Low, MinLevel: 5, Color: "#4169E1", Glyph: "ℹ️", Priority: "LOW"},
	}}
}

// Classify returns the first tier whose threshold is <= level. Levels below
// every threshold resolve to the lowest tier.
func (t Table) Classify(level int) Tier {
	for _, tier := range t.tiers {
		if level >= tier.MinLevel {
			return tier
		}
	}
	return t.tiers[len(t.tiers)-1]
}
