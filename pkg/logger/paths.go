/* pkg/logger/paths.go */

package logger

import (
	"path/filepath"

	"github.com/saument1986/Homelab-infrastructure/pkg/xdg"
)

const (
	AppName     = "wazuh-notify"
	LogFileName = "wazuh-notify.log"

	// WazuhLogPath sits next to the manager's own logs so integratord
	// failures and ours can be read together.
	WazuhLogPath = "/var/ossec/logs/" + LogFileName
)

// CandidateLogPaths returns log file locations in order of preference.
// An explicit path, when given, is always tried first.
func CandidateLogPaths(explicit string) []string {
	var paths []string
	if explicit != "" {
		paths = append(paths, explicit)
	}
	paths = append(paths, WazuhLogPath)
	if p, err := xdg.StatePath(AppName, LogFileName); err == nil {
		paths = append(paths, p)
	}
	paths = append(paths,
		filepath.Join(".", LogFileName),
		filepath.Join("/tmp", AppName, LogFileName),
	)
	return paths
}
