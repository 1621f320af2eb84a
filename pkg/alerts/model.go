// pkg/alerts/model.go
package alerts

// Defaults applied when a field is absent from the alert record.
const (
	DefaultDescription = "Security Alert"
	DefaultRuleID      = "N/A"
	DefaultAgentName   = "Unknown"
	DefaultAgentIP     = "N/A"
)

// Alert is the typed view of a Wazuh alert record, with defaults applied.
type Alert struct {
	// Timestamp is the raw alert timestamp; empty when the record had none.
	Timestamp string
	Rule      Rule
	Agent     Agent
	Data      Data
}

type Rule struct {
	Level       int
	Description string
	ID          string
	Groups      []string
}

type Agent struct {
	Name string
	IP   string
}

// Data holds the network fields Wazuh copies from decoded events.
type Data struct {
	SrcIP string
	DstIP string
}
