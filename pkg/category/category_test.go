// pkg/category/category_test.go

package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRulesResolve(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		name   string
		groups []string
		want   string
	}{
		{name: "nil groups", groups: nil, want: DefaultIcon},
		{name: "empty groups", groups: []string{}, want: DefaultIcon},
		{name: "suricata substring", groups: []string{"suricata_rule"}, want: "🌐"},
		{name: "case insensitive", groups: []string{"SSHD"}, want: "🔐"},
		{name: "unknown tag", groups: []string{"unknown_tag"}, want: DefaultIcon},
		{name: "authentication and ssh resolves ssh first", groups: []string{"authentication", "ssh"}, want: "🔐"},
		{name: "suricata wins over intrusion detection", groups: []string{"intrusion_detection", "suricata"}, want: "🌐"},
		{name: "match across the comma join", groups: []string{"pi", "hole"}, want: DefaultIcon},
		{name: "empty strings", groups: []string{"", ""}, want: DefaultIcon},
		{name: "unicode input", groups: []string{"ошибка", "日本語", "malwäre"}, want: DefaultIcon},
		{name: "unicode alongside keyword", groups: []string{"日本語", "Malware"}, want: "🦠"},
		{name: "c2 embedded in another word", groups: []string{"ec2_instance"}, want: "📡"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Resolve(tt.groups))
		})
	}
}

func TestRulesMatchOrder(t *testing.T) {
	rules := DefaultRules()

	rule, ok := rules.Match([]string{"web_attack", "malware"})
	assert.True(t, ok)
	assert.Equal(t, "web_attack", rule.Keyword)
	assert.Equal(t, "Web Attack", rule.Label)

	// "dns" precedes "pihole", so Pi-hole groups that mention dns resolve to DNS.
	rule, ok = rules.Match([]string{"pihole_dns"})
	assert.True(t, ok)
	assert.Equal(t, "dns", rule.Keyword)

	_, ok = rules.Match([]string{"syscheck"})
	assert.False(t, ok)
}

func TestCustomRules(t *testing.T) {
	rules := Rules{
		{Keyword: "", Icon: "❓"},
		{Keyword: "firewall", Icon: "🧱"},
	}
	assert.Equal(t, "🧱", rules.Resolve([]string{"Firewall_Drop"}))
	assert.Equal(t, DefaultIcon, rules.Resolve([]string{"anything"}))
}

func TestDefaultRulesIsolated(t *testing.T) {
	rules := DefaultRules()
	rules[0].Icon = "X"
	assert.Equal(t, "🌐", DefaultRules().Resolve([]string{"suricata"}))
}
