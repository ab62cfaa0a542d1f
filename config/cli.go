package config

// CLIConfig configures the positions-admin command.
type CLIConfig struct {
	// CredentialFile overrides where the CLI persists its bearer token.
	// Empty means $XDG_CONFIG_HOME/positions/credential (or the OS equivalent).
	CredentialFile string `env:"POSITIONS_CREDENTIAL_FILE" envDefault:""`
}
