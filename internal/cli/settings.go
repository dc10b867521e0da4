package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"property-mapper/internal/config"
)

const (
	configName = "property-mapper"
	configType = "yaml"

	// envPrefix scopes environment overrides, e.g. PROPMAP_ACCESS=fields.
	envPrefix = "PROPMAP"

	// Setting keys, matching the config file layout.
	keyVersion                = "version"
	keyAccess                 = "access"
	keyUnexportedFields       = "unexported_fields"
	keyStrategy               = "strategy"
	keyTransientProperties    = "transient_properties"
	keyHierarchyEnabled       = "hierarchy.enabled"
	keyHighestAncestor        = "hierarchy.highest_ancestor"
	keyIncludeHighestAncestor = "hierarchy.include_highest_ancestor"
)

// settingFlags maps describe flags to setting keys.
var settingFlags = map[string]string{
	"access":                   keyAccess,
	"unexported-fields":        keyUnexportedFields,
	"strategy":                 keyStrategy,
	"transient":                keyTransientProperties,
	"hierarchy":                keyHierarchyEnabled,
	"highest-ancestor":         keyHighestAncestor,
	"include-highest-ancestor": keyIncludeHighestAncestor,
}

// registerSettingFlags adds the flags that override file and environment
// settings.
func registerSettingFlags(fs *pflag.FlagSet) {
	fs.String("access", config.AccessBoth.String(), "member access: both, fields or accessors")
	fs.Bool("unexported-fields", false, "read and write unexported fields directly")
	fs.String("strategy", config.OptOutStrategy.String(), "mapping strategy: opt-out or opt-in")
	fs.StringSlice("transient", nil, "property names never mapped (replaces the default set)")
	fs.Bool("hierarchy", true, "scan embedded ancestors")
	fs.String("highest-ancestor", "", "stop the hierarchy scan at this type (pkg/path.Name)")
	fs.Bool("include-highest-ancestor", false, "scan the highest ancestor itself")
}

// loadSettings resolves the configuration file from flags, PROPMAP_*
// environment variables, the config file and defaults, in that order.
// A missing default config file is not an error.
func loadSettings(fs *pflag.FlagSet, configFile string) (*config.File, error) {
	v := viper.New()

	v.SetDefault(keyVersion, config.CurrentVersion)
	v.SetDefault(keyAccess, config.AccessBoth.String())
	v.SetDefault(keyStrategy, config.OptOutStrategy.String())
	v.SetDefault(keyHierarchyEnabled, true)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for flag, key := range settingFlags {
		if f := fs.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("." + configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	enabled := v.GetBool(keyHierarchyEnabled)

	f := &config.File{
		Version:          v.GetString(keyVersion),
		Access:           v.GetString(keyAccess),
		UnexportedFields: v.GetBool(keyUnexportedFields),
		Strategy:         v.GetString(keyStrategy),
		Hierarchy: config.HierarchyFile{
			Enabled:                &enabled,
			HighestAncestor:        v.GetString(keyHighestAncestor),
			IncludeHighestAncestor: v.GetBool(keyIncludeHighestAncestor),
		},
	}

	if v.IsSet(keyTransientProperties) {
		f.TransientProperties = v.GetStringSlice(keyTransientProperties)
		if f.TransientProperties == nil {
			f.TransientProperties = []string{}
		}
	}

	return f, nil
}
