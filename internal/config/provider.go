// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions selects where configuration is read from. The zero value
	// searches the config directory and then the working directory.
	LoadOptions struct {
		// ConfigFilePath is the --config flag; a missing file is an error.
		ConfigFilePath string
		// ConfigDirPath replaces ConfigDir() in the search.
		ConfigDirPath string
	}

	// Provider is the configuration source of the CLI. Tests substitute a
	// fixed configuration.
	Provider interface {
		// Load returns the validated configuration with environment
		// overrides applied.
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
		// Locate returns the config file Load would read, or "" if none.
		Locate(opts LoadOptions) (string, error)
	}

	// fileProvider reads config.cue files through viper.
	fileProvider struct{}
)

var _ Provider = (*fileProvider)(nil)

// NewProvider returns the file-backed Provider.
func NewProvider() Provider { return &fileProvider{} }

func (*fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	return cfg, err
}

func (*fileProvider) Locate(opts LoadOptions) (string, error) { return locate(opts) }
