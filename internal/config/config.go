// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/alvinbaena/pwd-analyzer/internal/util"
	"github.com/alvinbaena/pwd-analyzer/pkg/hibp"
	"github.com/alvinbaena/pwd-analyzer/pkg/strength"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Port    uint16 `mapstructure:"PORT" validate:"required"`
	SelfTLS bool   `mapstructure:"SELF_TLS"`
	TLSCert string `mapstructure:"TLS_CERT" validate:"required_with=TLSKey"`
	TLSKey  string `mapstructure:"TLS_KEY" validate:"required_with=TLSCert"`
	Debug   bool   `mapstructure:"DEBUG"`

	RangeAPIURL   string        `mapstructure:"RANGE_API_URL" validate:"required,url"`
	LookupTimeout time.Duration `mapstructure:"LOOKUP_TIMEOUT" validate:"gt=0"`
	RetryMax      int           `mapstructure:"RETRY_MAX" validate:"gte=0,lte=10"`
	AddPadding    bool          `mapstructure:"ADD_PADDING"`
	MirrorDir     string        `mapstructure:"MIRROR_DIR"`

	GuessRate         float64 `mapstructure:"GUESS_RATE" validate:"gt=0"`
	MinLength         int     `mapstructure:"MIN_LENGTH" validate:"gt=0"`
	MaxPasswordLength int     `mapstructure:"MAX_PASSWORD_LENGTH" validate:"gtefield=MinLength"`
	Patterns          bool    `mapstructure:"PATTERNS"`

	CacheTTL  time.Duration `mapstructure:"CACHE_TTL" validate:"gte=0"`
	CacheSize int64         `mapstructure:"CACHE_SIZE" validate:"gte=0"`
	RedisURL  string        `mapstructure:"REDIS_URL" validate:"omitempty,url"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 3100)
	v.SetDefault("SELF_TLS", false)
	v.SetDefault("RANGE_API_URL", hibp.DefaultBaseURL)
	v.SetDefault("LOOKUP_TIMEOUT", hibp.DefaultTimeout)
	v.SetDefault("RETRY_MAX", 0)
	v.SetDefault("ADD_PADDING", true)
	v.SetDefault("GUESS_RATE", strength.DefaultGuessRate)
	v.SetDefault("MIN_LENGTH", strength.DefaultMinLength)
	v.SetDefault("MAX_PASSWORD_LENGTH", 256)
	v.SetDefault("PATTERNS", true)
	v.SetDefault("CACHE_TTL", time.Hour)
	v.SetDefault("CACHE_SIZE", 64<<20)
}

func bindEnvs(v *viper.Viper, iface interface{}, parts ...string) {
	ifv := reflect.ValueOf(iface)
	ift := reflect.TypeOf(iface)
	for i := 0; i < ift.NumField(); i++ {
		fv := ifv.Field(i)
		t := ift.Field(i)
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			continue
		}
		switch fv.Kind() {
		case reflect.Struct:
			bindEnvs(v, fv.Interface(), append(parts, tv)...)
		default:
			_ = v.BindEnv(strings.Join(append(parts, tv), "."))
		}
	}
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "required_with":
		return fmt.Sprintf("This field requires the presence of %s", util.ToScreamingSnakeCase(fe.Param()))
	case "url":
		return "This field must be a valid URL"
	case "gt", "gte", "lte":
		return fmt.Sprintf("This field must be %s %s", fe.Tag(), fe.Param())
	case "gtefield":
		return fmt.Sprintf("This field must be greater than or equal to %s", util.ToScreamingSnakeCase(fe.Param()))
	}
	return fe.Error() // default error
}

// New returns a viper instance with defaults and environment bindings for
// Config. Flags can be bound to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	// Binding every key avoids requiring a config file to unmarshal envs
	// https://github.com/spf13/viper/issues/188#issuecomment-399884438
	bindEnvs(v, Config{})
	return v
}

// LoadDotEnv loads a .env file into the environment if there is one.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
}

func Load(v *viper.Viper) (config Config, err error) {
	if err = v.Unmarshal(&config); err != nil {
		return config, err
	}

	validate := validator.New()
	// Report fields by their environment key.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name, ok := f.Tag.Lookup("mapstructure"); ok {
			return name
		}
		return f.Name
	})

	if err = validate.Struct(&config); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			var msgs []string
			for _, fe := range ve {
				msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), msgForTag(fe)))
			}
			return config, errors.New(strings.Join(msgs, ". "))
		}
		return config, fmt.Errorf("error validating configuration: %w", err)
	}

	return config, nil
}

func (c Config) StrengthOptions() strength.Options {
	return strength.Options{
		MinLength: c.MinLength,
		Symbols:   strength.DefaultSymbols,
		GuessRate: c.GuessRate,
	}
}

func (c Config) HTTPOptions() hibp.HTTPOptions {
	return hibp.HTTPOptions{
		BaseURL:  c.RangeAPIURL,
		Timeout:  c.LookupTimeout,
		RetryMax: c.RetryMax,
		Padding:  c.AddPadding,
	}
}
