// Package config loads typed settings from the environment, optionally seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/a-peyrard/treedi/fn"
	"github.com/a-peyrard/treedi/option"
	"github.com/a-peyrard/treedi/reflectutils"
	"github.com/a-peyrard/treedi/str"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Options struct {
		prefix   string
		dotEnvs  []string
		defaults map[string]any
	}

	// WithDefault is implemented by config structs (or nested structs) filling their own defaults
	// once values have been loaded.
	WithDefault interface {
		ApplyDefault()
	}
)

func WithEnvPrefix(prefix string) option.Option[Options] {
	return func(opts *Options) {
		opts.prefix = prefix
	}
}

// WithDotEnv loads the given .env files before reading the environment. Missing files are skipped,
// variables already present in the environment win over the files.
func WithDotEnv(paths ...string) option.Option[Options] {
	return func(opts *Options) {
		opts.dotEnvs = append(opts.dotEnvs, paths...)
	}
}

// WithValue sets a default for a mapstructure key, used when the environment does not define it.
func WithValue(key string, value any) option.Option[Options] {
	return func(opts *Options) {
		if opts.defaults == nil {
			opts.defaults = make(map[string]any)
		}
		opts.defaults[key] = value
	}
}

func Load[T any](opts ...option.Option[Options]) (*T, error) {
	options := option.Build(&Options{}, opts...)

	if err := loadDotEnvs(options.dotEnvs); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(options.prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range options.defaults {
		v.SetDefault(key, value)
	}

	var vT T
	bindEnvs(v, options.prefix, reflect.New(reflect.TypeOf(vT)).Elem().Interface())

	if err := v.Unmarshal(&vT); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config:\n\t%w", err)
	}

	withDefaultType := reflect.TypeOf((*WithDefault)(nil)).Elem()
	callApplyDefault := func(val reflect.Value, typ reflect.Type, _ []string) {
		if typ.Implements(withDefaultType) && val.IsValid() {
			val.Interface().(WithDefault).ApplyDefault()
		}
	}
	reflectutils.WalkStruct(
		&vT,
		fn.AllTriConsumer(
			reflectutils.CreateNilStructs,
			callApplyDefault,
		),
	)

	return &vT, nil
}

func loadDotEnvs(paths []string) error {
	var existing []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("unable to stat env file %s:\n\t%w", path, err)
		}
		existing = append(existing, path)
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("unable to load env files %v:\n\t%w", existing, err)
	}
	return nil
}

func bindEnvs(viperI *viper.Viper, envPrefix string, myStruct any, parts ...string) {
	ifv := reflect.ValueOf(myStruct)
	ift := reflect.TypeOf(myStruct)
	for i := 0; i < ift.NumField(); i++ {
		v := ifv.Field(i)
		t := ift.Field(i)
		if !t.IsExported() {
			continue
		}
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			tv = t.Name
		}
		switch v.Kind() {
		case reflect.Struct:
			bindEnvs(viperI, envPrefix, v.Interface(), append(parts, tv)...)
		case reflect.Pointer:
			if t.Type.Elem().Kind() == reflect.Struct {
				bindEnvs(viperI, envPrefix, reflect.Zero(t.Type.Elem()).Interface(), append(parts, tv)...)
			}
		default:
			key := strings.Join(append(parts, tv), ".")
			env := strings.Join(append(parts, str.ToScreamingSnakeCase(tv)), "_")
			_ = viperI.BindEnv(key, mergeWithEnvPrefix(envPrefix, env))
		}
	}
}

func mergeWithEnvPrefix(envPrefix string, in string) string {
	if envPrefix != "" {
		return strings.ToUpper(envPrefix + "_" + in)
	}

	return strings.ToUpper(in)
}
