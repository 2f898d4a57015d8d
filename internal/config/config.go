// Package config loads site-wide configuration from the config.yaml (or
// config.toml) file at the site root.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Defaults applied to recognized keys when the config file omits them.
const (
	DefaultOutputDir = "_site"
	DefaultPaginate  = 10
)

// Site holds the configuration for one build. Recognized keys are typed;
// everything else lands in Params and is passed through to templates
// unchanged.
type Site struct {
	Title         string         `mapstructure:"title"`
	URL           string         `mapstructure:"url"`
	Description   string         `mapstructure:"description"`
	Author        string         `mapstructure:"author"`
	OutputDir     string         `mapstructure:"output_dir"`
	OutputFormats []string       `mapstructure:"output_formats"`
	Paginate      int            `mapstructure:"paginate"`
	Params        map[string]any `mapstructure:",remain"`
}

// Error reports an unreadable or malformed configuration file. It is fatal
// to the build that attempted the load.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Load reads the site configuration from root. The file may be config.yaml
// or config.toml; a missing file is an error because a site root without
// configuration is not a site. Configuration is loaded fresh on every call
// so edits are picked up by rebuilds.
func Load(fs afero.Fs, root string) (*Site, error) {
	v := viper.New()
	v.SetFs(fs)
	v.AddConfigPath(root)
	v.SetConfigName("config")

	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("output_formats", []string{"html"})
	v.SetDefault("paginate", DefaultPaginate)

	v.SetEnvPrefix("CTXSSG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, &Error{Path: root, Err: err}
	}

	site := &Site{}
	if err := v.Unmarshal(site); err != nil {
		return nil, &Error{Path: v.ConfigFileUsed(), Err: err}
	}
	if site.Paginate <= 0 {
		site.Paginate = DefaultPaginate
	}
	if site.Params == nil {
		site.Params = map[string]any{}
	}
	return site, nil
}
