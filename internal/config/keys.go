package config

// Configuration key constants to prevent typos and enable autocomplete
const (
	// Remote desktop client configuration
	KeyRemoteDesktopRelease = "REMOTE_DESKTOP_RELEASE"
	KeyRemoteDesktopPackage = "REMOTE_DESKTOP_PACKAGE"
	KeyRemoteDesktopRepo    = "REMOTE_DESKTOP_REPO_PATH"

	// Sleep configuration
	KeySleepConfDir  = "SLEEP_CONF_DIR"
	KeySleepConfFile = "SLEEP_CONF_FILE"

	// Open With cleanup configuration
	KeyOpenWithPrefer   = "OPENWITH_PREFER"
	KeyOpenWithStrategy = "OPENWITH_STRATEGY"

	// System configuration
	KeyConfigVersion = "CONFIG_VERSION"
)

// Defaults holds default values for configuration keys
var Defaults = map[string]string{
	KeySleepConfDir:     "/etc/systemd/sleep.conf.d",
	KeySleepConfFile:    "nosuspend.conf",
	KeyOpenWithPrefer:   "native",
	KeyOpenWithStrategy: "auto",
	KeyConfigVersion:    "1",
}
