package config

import (
	"time"

	"github.com/fenilsonani/winsweep/pkg/utils"
)

// MaxCleanWorkers caps the deletion pool.
const MaxCleanWorkers = 12

// GetDefault returns the default configuration
func GetDefault() *Config {
	return &Config{
		Scan: ScanConfig{
			DepthLimit:          3,
			AppDataWorkers:      4,
			DriveWorkers:        24,
			AccountWorkers:      8,
			HashWorkers:         4,
			InstallerAgeDays:    30,
			InstallerExtensions: []string{".exe", ".msi", ".iso", ".zip", ".rar", ".7z"},
			LargeFileThreshold:  100 * utils.MB,
			LargeFileLimit:      200,
			LargeFileDirs:       []string{"Downloads", "Desktop", "Documents", "Videos", "Pictures"},
			DuplicateDirs:       []string{"Downloads", "Desktop", "Documents", "Videos", "Pictures", "Music"},
			DuplicateMinSize:    1 * utils.KB,
			HashChunkSize:       1 * utils.MB,
			ExcludedTopFolders: []string{
				"Windows",
				"Program Files",
				"Program Files (x86)",
				"ProgramData",
				"$Recycle.Bin",
				"System Volume Information",
				"Recovery",
				"Boot",
				"EFI",
				"PerfLogs",
				"MSOCache",
			},
			AccountDenylist: []string{"All Users", "Applet", "config"},
		},
		Clean: CleanConfig{
			Workers:         MaxCleanWorkers,
			ShredBytes:      1 * utils.MB,
			RetryMaxElapsed: 2 * time.Second,
			SentinelSize:    4 * utils.KB,
		},
		Accounts: []AccountTarget{
			{
				Name:      "WeChat",
				RootNames: []string{"WeChat Files", "WeChat"},
				Registry:  []RegistryLocation{{Key: `Software\Tencent\WeChat`, Value: "FileSavePath"}},
				Processes: []string{"WeChat.exe", "Weixin.exe", "WeChatAppEx.exe"},
			},
			{
				Name:      "QQ",
				RootNames: []string{"Tencent Files", "TencentFiles", "QQ"},
				Registry:  []RegistryLocation{{Key: `Software\Tencent\QQ2012`, Value: "UserDataSavePath"}},
				Processes: []string{"QQ.exe", "QQNT.exe"},
			},
			{
				Name:      "WeCom",
				RootNames: []string{"WXWork"},
				Processes: []string{"WXWork.exe"},
			},
		},
		CustomPaths:    []string{},
		ProtectedPaths: []string{},
		Presets: map[string][]string{
			"junk":        {"system-junk", "appdata-sweep", "custom-sweep"},
			"resignation": {"vendor-account-discovery", "privacy-sweep"},
			"files":       {"installer-sweep", "large-file-sweep", "duplicate-file-sweep"},
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Daemon: &DaemonConfig{
			Enabled:  false,
			LogLevel: "info",
			Schedules: []Schedule{
				{
					Name:     "weekly-junk",
					Schedule: "0 3 * * 0",
					Preset:   "junk",
				},
			},
		},
	}
}
