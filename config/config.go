package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/glog"
	"github.com/spf13/viper"
)

// Configuration specifies the static application config.
type Configuration struct {
	// AccountRequired rejects requests that don't carry a resolvable account id.
	AccountRequired bool `mapstructure:"account_required"`
	// AccountDefaults is the merge base for every fetched account.
	AccountDefaults Account      `mapstructure:"account_defaults"`
	AccountCache    AccountCache `mapstructure:"account_cache"`
	Hooks           Hooks        `mapstructure:"hooks"`

	// accountDefaultsJSON is the internal serialized form of AccountDefaults.
	accountDefaultsJSON json.RawMessage
}

// AccountCache bounds the in-process account config cache.
type AccountCache struct {
	// TTLSeconds is the lifetime of a cached account entry.
	TTLSeconds int `mapstructure:"ttl_seconds"`
	// SizeBytes is the total cache capacity.
	SizeBytes int `mapstructure:"size_bytes"`
}

// AccountDefaultsJSON returns the precompiled account defaults used as the
// merge patch base for fetched accounts.
func (cfg *Configuration) AccountDefaultsJSON() json.RawMessage {
	return cfg.accountDefaultsJSON
}

func (cfg *Configuration) validate() []error {
	var errs []error
	errs = cfg.Hooks.validate(errs)
	errs = cfg.AccountDefaults.validate(errs)
	if cfg.AccountCache.TTLSeconds < 0 {
		errs = append(errs, errors.New("account_cache.ttl_seconds must not be negative"))
	}
	return errs
}

// MarshalAccountDefaults compiles AccountDefaults into JSON for patching the
// fetched account configs.
func (cfg *Configuration) MarshalAccountDefaults() error {
	var err error
	if cfg.accountDefaultsJSON, err = json.Marshal(cfg.AccountDefaults); err != nil {
		glog.Warningf("converting account defaults to JSON: %v", err)
	}
	return err
}

// New uses viper to get our server configurations.
func New(v *viper.Viper) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("viper failed to unmarshal app config: %v", err)
	}

	if err := c.MarshalAccountDefaults(); err != nil {
		return nil, err
	}

	if errs := c.validate(); len(errs) > 0 {
		return &c, errortypesJoin(errs)
	}

	return &c, nil
}

func errortypesJoin(errs []error) error {
	var buf bytes.Buffer
	buf.WriteString("validation errors are:\n")
	for _, err := range errs {
		buf.WriteString("  ")
		buf.WriteString(err.Error())
		buf.WriteString("\n")
	}
	return errors.New(buf.String())
}

// SetupViper sets the viper defaults.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/config")
	}

	v.SetDefault("account_required", false)
	v.SetDefault("account_cache.ttl_seconds", 300)
	v.SetDefault("account_cache.size_bytes", 16*1024*1024)
	v.SetDefault("hooks.enabled", false)

	v.SetEnvPrefix("BROKER")
	v.AutomaticEnv()
	v.ReadInConfig()
}
