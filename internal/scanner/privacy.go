package scanner

import (
	"context"
	"strings"

	"github.com/fenilsonani/winsweep/internal/platform"
)

// markerDepth bounds the walk from a browser root to its credential store.
const markerDepth = 3

type privacyTarget struct {
	category string
	name     string
	detail   string
	path     string
	// markers, when set, must be found within markerDepth levels of path
	// before the target is reported.
	markers []string
}

func (s *Scanner) privacyTargets() []privacyTarget {
	home := s.env.UserProfile
	local := s.env.LocalAppData
	roaming := s.env.RoamingAppData
	browserMarkers := []string{"Login Data", "Cookies"}
	firefoxMarkers := []string{"logins.json", "cookies.sqlite"}

	return []privacyTarget{
		{category: CategoryPrivacyCredentials, name: "SSH keys", detail: ".ssh", path: joinIf(home, ".ssh")},
		{category: CategoryPrivacyCredentials, name: "AWS CLI", detail: ".aws", path: joinIf(home, ".aws")},
		{category: CategoryPrivacyCredentials, name: "Azure CLI", detail: ".azure", path: joinIf(home, ".azure")},
		{category: CategoryPrivacyCredentials, name: "Google Cloud SDK", detail: "gcloud", path: joinIf(roaming, "gcloud")},
		{category: CategoryPrivacyCredentials, name: "Kubernetes", detail: ".kube", path: joinIf(home, ".kube")},
		{category: CategoryPrivacyCredentials, name: "Docker", detail: "config.json", path: joinIf(home, ".docker", "config.json")},

		{category: CategoryPrivacyBrowser, name: "Google Chrome", detail: "User Data", path: joinIf(local, "Google", "Chrome", "User Data"), markers: browserMarkers},
		{category: CategoryPrivacyBrowser, name: "Microsoft Edge", detail: "User Data", path: joinIf(local, "Microsoft", "Edge", "User Data"), markers: browserMarkers},
		{category: CategoryPrivacyBrowser, name: "Brave", detail: "User Data", path: joinIf(local, "BraveSoftware", "Brave-Browser", "User Data"), markers: browserMarkers},
		{category: CategoryPrivacyBrowser, name: "Firefox", detail: "Profiles", path: joinIf(roaming, "Mozilla", "Firefox", "Profiles"), markers: firefoxMarkers},

		{category: CategoryPrivacyMail, name: "Outlook", detail: "local data", path: joinIf(local, "Microsoft", "Outlook")},
		{category: CategoryPrivacyMail, name: "Outlook", detail: "Outlook Files", path: joinIf(s.env.UserFolder("Documents"), "Outlook Files")},
		{category: CategoryPrivacyMail, name: "Thunderbird", detail: "Profiles", path: joinIf(roaming, "Thunderbird", "Profiles")},

		{category: CategoryPrivacyChat, name: "Tencent", detail: "Roaming", path: joinIf(roaming, "Tencent")},
		{category: CategoryPrivacyChat, name: "Slack", detail: "Roaming", path: joinIf(roaming, "Slack")},
		{category: CategoryPrivacyChat, name: "Discord", detail: "Roaming", path: joinIf(roaming, "discord")},
		{category: CategoryPrivacyChat, name: "Microsoft Teams", detail: "Roaming", path: joinIf(roaming, "Microsoft", "Teams")},
		{category: CategoryPrivacyChat, name: "Telegram", detail: "Roaming", path: joinIf(roaming, "Telegram Desktop")},

		{category: CategoryPrivacyHistory, name: "PowerShell", detail: "ConsoleHost_history.txt", path: joinIf(roaming, "Microsoft", "Windows", "PowerShell", "PSReadLine", "ConsoleHost_history.txt")},
		{category: CategoryPrivacyHistory, name: "Bash", detail: ".bash_history", path: joinIf(home, ".bash_history")},
		{category: CategoryPrivacyHistory, name: "Python", detail: ".python_history", path: joinIf(home, ".python_history")},
		{category: CategoryPrivacyHistory, name: "Node.js", detail: ".node_repl_history", path: joinIf(home, ".node_repl_history")},
	}
}

// scanPrivacy sizes each sensitive artifact location and then reports the
// platform trace sentinels.
func (s *Scanner) scanPrivacy(ctx context.Context, em *emitter) int {
	targets := s.privacyTargets()
	sentinels := []Finding{
		{Category: CategoryPrivacyTraces, Software: "Network traces", Detail: "DNS and ARP caches", Path: platform.SentinelNetworkTrace},
		{Category: CategoryPrivacyTraces, Software: "Credential Manager", Detail: "saved Windows credentials", Path: platform.SentinelCredentialVault},
		{Category: CategoryPrivacyTraces, Software: "Clipboard", Detail: "clipboard contents", Path: platform.SentinelClipboard},
	}
	total := len(targets) + len(sentinels)

	seen := make(map[string]bool)
	for i, t := range targets {
		if ctx.Err() != nil {
			return total
		}
		if t.path == "" || seen[pathKey(t.path)] {
			continue
		}
		seen[pathKey(t.path)] = true

		if len(t.markers) > 0 {
			em.status("Checking %s profiles", t.name)
			if !hasMarker(ctx, t.path, t.markers, markerDepth) {
				em.progress(i+1, total)
				continue
			}
		}

		em.item(Finding{
			Category: t.category,
			Software: t.name,
			Detail:   t.detail,
			Path:     t.path,
			Size:     SizeOfContext(ctx, t.path),
		})
		em.progress(i+1, total)
	}

	nominal := s.config.Clean.SentinelSize.Int64()
	for i, f := range sentinels {
		if ctx.Err() != nil {
			break
		}
		f.Size = nominal
		em.item(f)
		em.progress(len(targets)+i+1, total)
	}

	return total
}

// hasMarker reports whether a file named like one of markers exists at most
// depth levels below root. Names are compared case-insensitively.
func hasMarker(ctx context.Context, root string, markers []string, depth int) bool {
	want := make(map[string]bool, len(markers))
	for _, m := range markers {
		want[strings.ToLower(m)] = true
	}

	type frame struct {
		path  string
		depth int
	}
	stack := []frame{{path: root}}
	for len(stack) > 0 {
		if ctx.Err() != nil {
			return false
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, res := probeReadDir(f.path)
		if res == outcomeSkip {
			continue
		}
		for _, d := range entries {
			if !d.IsDir() {
				if want[strings.ToLower(d.Name())] {
					return true
				}
				continue
			}
			if f.depth < depth {
				full := joinIf(f.path, d.Name())
				if !isLink(full, d.Type()) {
					stack = append(stack, frame{path: full, depth: f.depth + 1})
				}
			}
		}
	}
	return false
}
