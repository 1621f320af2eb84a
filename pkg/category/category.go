// pkg/category/category.go

package category

import "strings"

// DefaultIcon is returned when no rule matches.
const DefaultIcon = "🔒"

// Rule maps a rule-group keyword to a topic icon.
type Rule struct {
	Keyword string
	Icon    string
	Label   string
}

// Rules is evaluated in declaration order; the first keyword found wins.
// Order matters: "suricata" must be checked before "intrusion_detection".
type Rules []Rule

// DefaultRules returns a fresh copy of the built-in keyword table.
func DefaultRules() Rules {
	return Rules{
		{Keyword: "suricata", Icon: "🌐", Label: "Network Security"},
		{Keyword: "intrusion_detection", Icon: "🛡️", Label: "Intrusion Detection"},
		{Keyword: "web_attack", Icon: "🌐", Label: "Web Attack"},
		{Keyword: "malware", Icon: "🦠", Label: "Malware"},
		{Keyword: "trojan", Icon: "🐎", Label: "Trojan Activity"},
		{Keyword: "dns", Icon: "🔍", Label: "DNS Security"},
		{Keyword: "ssh", Icon: "🔐", Label: "SSH Activity"},
		{Keyword: "authentication", Icon: "🔑", Label: "Authentication"},
		{Keyword: "privilege_escalation", Icon: "⬆️", Label: "Privilege Escalation"},
		{Keyword: "lateral_movement", Icon: "↔️", Label: "Lateral Movement"},
		{Keyword: "data_exfiltration", Icon: "📤", Label: "Data Exfiltration"},
		{Keyword: "crypto_mining", Icon: "⛏️", Label: "Crypto Mining"},
		{Keyword: "c2", Icon: "📡", Label: "Command & Control"},
		{Keyword: "container_security", Icon: "🐳", Label: "Container Security"},
		{Keyword: "vulnerability", Icon: "🔓", Label: "Vulnerability"},
		{Keyword: "pihole", Icon: "🕳️", Label: "Pi-hole DNS"},
		{Keyword: "nessus", Icon: "🔍", Label: "Vulnerability Scan"},
	}
}

// Match returns the first rule whose keyword is a substring of the
// lower-cased, comma-joined groups.
func (r Rules) Match(groups []string) (Rule, bool) {
	if len(groups) == 0 {
		return Rule{}, false
	}

	joined := strings.ToLower(strings.Join(groups, ","))
	for _, rule := range r {
		if rule.Keyword != "" && strings.Contains(joined, rule.Keyword) {
			return rule, true
		}
	}
	return Rule{}, false
}

// Resolve returns the icon of the first matching rule, or DefaultIcon.
func (r Rules) Resolve(groups []string) string {
	if rule, ok := r.Match(groups); ok {
		return rule.Icon
	}
	return DefaultIcon
}
