package config

// Application constants shared across packages.
const (
	// Application Info
	AppName    = "CSV Desk"
	AppVersion = "1.0.0"

	// EnvPrefix is the prefix for all environment variables.
	EnvPrefix = "CSVDESK"

	// DefaultConfigFile is the optional YAML configuration file.
	DefaultConfigFile = "csvdesk.yaml"

	// PreviewRows caps how many rows a table preview renders in the browser.
	PreviewRows = 50

	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "csvdesk_session"
)
