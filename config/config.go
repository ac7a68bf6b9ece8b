// Package config defines the Conf struct used by the cmd package to bind cobra
// flags and viper configuration values into a single typed structure.
package config

// Conf holds the configuration values populated by viper from cobra flags,
// environment variables, or a config file.
//
// mapstructure tags are required wherever the lowercased Go field name does
// not match the cobra flag name that viper binds.  Without them,
// viper.Unmarshal silently leaves those fields at their zero value.
type Conf struct {
	// File is the path to the .kdbx database acted on by inspect, export,
	// and serve.
	File string

	// Password is the database password, set by --password on inspect,
	// export, and serve. Left empty, the cmd package prompts for it
	// interactively.
	Password string `mapstructure:"password"`
	// KeyFile is an optional key-file path combined with Password (or used
	// alone) to derive the composite key.
	KeyFile string `mapstructure:"keyfile"`

	// JSON selects structured JSON output for inspect instead of the
	// human-readable summary.
	JSON bool `mapstructure:"json"`

	// Out is the output path for export (a plaintext XML snapshot) and for
	// fetch (the downloaded .kdbx file).
	Out string `mapstructure:"out"`

	// SigningKey is the PEM-encoded private key path used by sign.
	SigningKey string `mapstructure:"signingkey"`
	// SignerId names the signer recorded alongside a detached signature.
	SignerId string `mapstructure:"signerid"`

	// Host and Port are the TCP address components for the HTTP listener
	// used by serve.
	Host string
	Port string
	// StatsFile is stored at the path given by --statsfile.
	StatsFile string `mapstructure:"statsfile"`

	// BackupURLs holds additional URLs tried in order if the fetch
	// subcommand's primary URL argument fails (--backup-url, repeatable).
	BackupURLs []string `mapstructure:"backup-url"`
}
