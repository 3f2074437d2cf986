// Package classifier maps application folders to a category and readable
// name, and decides whether a directory name looks like disposable data.
package classifier

import (
	"fmt"
	"strings"
)

// Categories used in scan findings.
const (
	CategoryBrowser     = "Browser cache"
	CategoryChat        = "Chat & collaboration"
	CategoryOffice      = "Office & productivity"
	CategoryDesign      = "Design & 3D"
	CategoryGames       = "Game platforms"
	CategoryDevTools    = "Developer tools"
	CategoryDrivers     = "GPU & driver cache"
	CategoryMedia       = "Media & streaming"
	CategoryLogs        = "Logs & crash reports"
	CategoryApplication = "Application cache"
)

// Rule maps a vendor keyword to a category and a readable name.
type Rule struct {
	Keyword  string
	Category string
	Name     string
}

// Classification is the result of Classify.
type Classification struct {
	Category string
	Name     string
}

// defaultRules is ordered: more specific keywords come before the keywords
// they contain ("qqmusic" before "qq", "microsoft" after "edge").
var defaultRules = []Rule{
	{"google", CategoryBrowser, "Google Chrome"},
	{"chromium", CategoryBrowser, "Chromium"},
	{"edge", CategoryBrowser, "Microsoft Edge"},
	{"mozilla", CategoryBrowser, "Firefox"},
	{"brave", CategoryBrowser, "Brave"},
	{"opera", CategoryBrowser, "Opera"},
	{"vivaldi", CategoryBrowser, "Vivaldi"},
	{"wechat", CategoryChat, "WeChat"},
	{"wxwork", CategoryChat, "WeCom"},
	{"qqmusic", CategoryMedia, "QQ Music"},
	{"qq", CategoryChat, "QQ"},
	{"tencent", CategoryChat, "Tencent"},
	{"dingtalk", CategoryChat, "DingTalk"},
	{"feishu", CategoryChat, "Feishu"},
	{"lark", CategoryChat, "Lark"},
	{"slack", CategoryChat, "Slack"},
	{"discord", CategoryChat, "Discord"},
	{"teams", CategoryChat, "Microsoft Teams"},
	{"zoom", CategoryChat, "Zoom"},
	{"microsoft", CategoryOffice, "Microsoft Office"},
	{"wps", CategoryOffice, "WPS Office"},
	{"adobe", CategoryDesign, "Adobe"},
	{"autodesk", CategoryDesign, "Autodesk"},
	{"blender", CategoryDesign, "Blender"},
	{"steam", CategoryGames, "Steam"},
	{"epic", CategoryGames, "Epic Games"},
	{"vscode", CategoryDevTools, "VS Code"},
	{"code", CategoryDevTools, "VS Code"},
	{"jetbrains", CategoryDevTools, "JetBrains"},
	{"python", CategoryDevTools, "Python"},
	{"pip", CategoryDevTools, "pip"},
	{"npm", CategoryDevTools, "npm"},
	{"nvidia", CategoryDrivers, "NVIDIA"},
	{"amd", CategoryDrivers, "AMD"},
	{"intel", CategoryDrivers, "Intel"},
	{"obs", CategoryMedia, "OBS Studio"},
	{"spotify", CategoryMedia, "Spotify"},
}

// Keywords that mark a directory name as disposable.
var safeKeywords = []string{"cache", "temp", "log", "logs", "dump", "crashes", "crashpad", "shadercache"}

// Keywords that veto disposal even when a safe keyword matches.
var dangerKeywords = []string{"profile", "save", "saved", "backup", "database", "user data", "config", "cookies"}

// Path keywords that route a match to the logs category.
var logKeywords = []string{"log", "dump", "crash"}

// DefaultRules returns a copy of the built-in vendor table.
func DefaultRules() []Rule {
	rules := make([]Rule, len(defaultRules))
	copy(rules, defaultRules)
	return rules
}

// Classifier holds an immutable ordered rule table. Safe for concurrent use.
type Classifier struct {
	rules []Rule
	exact map[string]Rule
}

// New builds a classifier. extra rules take priority over the built-in table.
func New(extra ...Rule) *Classifier {
	rules := make([]Rule, 0, len(extra)+len(defaultRules))
	for _, r := range extra {
		r.Keyword = strings.ToLower(strings.TrimSpace(r.Keyword))
		if r.Keyword == "" {
			continue
		}
		rules = append(rules, r)
	}
	rules = append(rules, defaultRules...)

	exact := make(map[string]Rule, len(rules))
	for _, r := range rules {
		if _, ok := exact[r.Keyword]; !ok {
			exact[r.Keyword] = r
		}
	}

	return &Classifier{rules: rules, exact: exact}
}

// Default returns a classifier over the built-in table.
func Default() *Classifier {
	return New()
}

// Classify returns the category and readable name for a junk root found
// under vendor. path is the junk root relative to the scanned root.
func (c *Classifier) Classify(vendor, path string) Classification {
	v := strings.ToLower(vendor)

	if r, ok := c.exact[v]; ok {
		return Classification{Category: r.Category, Name: r.Name}
	}

	p := strings.ToLower(path)
	for _, kw := range logKeywords {
		if strings.Contains(p, kw) {
			return Classification{Category: CategoryLogs, Name: vendor}
		}
	}

	for _, r := range c.rules {
		if strings.Contains(v, r.Keyword) {
			return Classification{Category: r.Category, Name: fmt.Sprintf("[%s] %s", r.Name, vendor)}
		}
	}

	return Classification{Category: CategoryApplication, Name: vendor}
}

// IsJunkDir reports whether a directory basename looks disposable.
func (c *Classifier) IsJunkDir(name string) bool {
	return IsJunkName(name)
}

// IsJunkName reports whether name contains a safe keyword and no danger
// keyword. Matching is case-insensitive substring matching.
func IsJunkName(name string) bool {
	n := strings.ToLower(name)

	for _, kw := range dangerKeywords {
		if strings.Contains(n, kw) {
			return false
		}
	}
	for _, kw := range safeKeywords {
		if strings.Contains(n, kw) {
			return true
		}
	}
	return false
}
