package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Viper is a Config implementation backed by github.com/spf13/viper.
type Viper struct {
	v *viper.Viper
}

// Option customizes how a Viper config is built.
type Option func(*viper.Viper) error

// WithDefaults registers fallback values for dotted keys.
func WithDefaults(defaults map[string]any) Option {
	return func(v *viper.Viper) error {
		for key, value := range defaults {
			v.SetDefault(key, value)
		}
		return nil
	}
}

// WithEnvPrefix lets PREFIX_SECTION_KEY environment variables override
// section.key values.
func WithEnvPrefix(prefix string) Option {
	return func(v *viper.Viper) error {
		v.SetEnvPrefix(prefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
		return nil
	}
}

// WithEnvBinding binds key to the first set environment variable in envs.
func WithEnvBinding(key string, envs ...string) Option {
	return func(v *viper.Viper) error {
		return v.BindEnv(append([]string{key}, envs...)...)
	}
}

// NewViper loads configuration from the given file path and returns a Viper-backed Config.
//
// The config file type is inferred by Viper from the filename extension. A
// missing file is not an error: defaults and environment still apply, and the
// file is not watched.
func NewViper(pathFile string, opts ...Option) (*Viper, error) {
	v := viper.New()

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	filename := path.Base(pathFile)
	filePath := path.Dir(pathFile)

	configName := path.Base(filename[:len(filename)-len(path.Ext(filename))])

	v.AddConfigPath(filePath)
	v.SetConfigName(configName)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Warn("config file not found, using defaults", "path", pathFile)
			return &Viper{v: v}, nil
		}
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			slog.Error("config reload failed", "path", pathFile, "error", err)
			return
		}
		slog.Info("config success reloaded", "path", pathFile)
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes loads configuration from memory and returns a Viper-backed Config.
// configType should be a format supported by Viper (e.g. "yaml", "json", "toml").
func NewViperFromBytes(configType string, data []byte, opts ...Option) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errors.New("config type is required")
	}

	v := viper.New()
	v.SetConfigType(configType)

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

// GetInt returns the value for key as int.
func (vc *Viper) GetInt(key string) int {
	return vc.v.GetInt(key)
}

// GetUint64 returns the value for key as uint64.
func (vc *Viper) GetUint64(key string) uint64 {
	return vc.v.GetUint64(key)
}

// GetBool returns the value for key as bool.
func (vc *Viper) GetBool(key string) bool {
	return vc.v.GetBool(key)
}

// GetFloat64 returns the value for key as float64.
func (vc *Viper) GetFloat64(key string) float64 {
	return vc.v.GetFloat64(key)
}

// GetSecond returns the value for key as seconds.
func (vc *Viper) GetSecond(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Second
}

// GetMinute returns the value for key as minutes.
func (vc *Viper) GetMinute(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Minute
}

// GetString returns the value for key as string.
func (vc *Viper) GetString(key string) string {
	return vc.v.GetString(key)
}

// GetBinary returns the value for key decoded from base64.
func (vc *Viper) GetBinary(key string) []byte {
	data, err := base64.StdEncoding.DecodeString(vc.v.GetString(key))
	if err != nil {
		return nil
	}

	return data
}

// GetArray returns the value for key split by commas, with blanks dropped.
// Native YAML lists are accepted too.
func (vc *Viper) GetArray(key string) []string {
	var raw []string
	switch val := vc.v.Get(key).(type) {
	case []string:
		raw = val
	case []any:
		for _, item := range val {
			raw = append(raw, fmt.Sprint(item))
		}
	default:
		raw = strings.Split(vc.v.GetString(key), ",")
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}

// Close implements io.Closer for interface compatibility.
func (vc *Viper) Close() error {
	return nil
}
