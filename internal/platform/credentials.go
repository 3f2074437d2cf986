package platform

import (
	"bufio"
	"bytes"
	"strings"
)

// parseCmdkeyTargets extracts "Target:" entries from `cmdkey /list` output.
func parseCmdkeyTargets(out []byte) []string {
	var targets []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "Target:") {
			continue
		}
		target := strings.TrimSpace(strings.TrimPrefix(line, "Target:"))
		// Entries look like "LegacyGeneric:target=foo"; cmdkey wants the part after target=.
		if i := strings.Index(target, "target="); i >= 0 {
			target = target[i+len("target="):]
		}
		if target != "" {
			targets = append(targets, target)
		}
	}
	return targets
}
