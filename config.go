package treedi

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/a-peyrard/treedi/config"
	"github.com/a-peyrard/treedi/fn"
	"github.com/a-peyrard/treedi/option"
	"github.com/a-peyrard/treedi/reflectutils"
	"github.com/a-peyrard/treedi/structs"
)

// ConfigValue returns a factory reading the value at a dotted path of a config struct.
//
//	Bind[int](c).Named("port").FromFactory(ConfigValue[*AppConfig, int]("Server.Port"))
func ConfigValue[C any, T any](path string) func(cfg C) (T, error) {
	return func(cfg C) (v T, err error) {
		v, err = structs.GetAs[T](cfg, path)
		if err != nil {
			return v, fmt.Errorf("unable to get value from config %T:\n\t%w", cfg, err)
		}
		return v, nil
	}
}

// BindConfig binds *T as a singleton loaded with config.Load.
func BindConfig[T any](c *Container, opts ...option.Option[config.Options]) *Binder {
	return Bind[*T](c).
		FromFactory(func() (*T, error) {
			return config.Load[T](opts...)
		}).
		AsSingleton().
		Description(fmt.Sprintf("%s loaded from the environment", TypeOf[T]()))
}

// BindConfigFields binds every field of the config struct T, nested ones included, under the name
// "<struct name>.<field path>" (e.g. "AppConfig.Server.Port"). Values are read from the bound *T.
func BindConfigFields[T any](c *Container) []*Binder {
	emptyConfig := new(T)
	prefix := reflect.TypeOf(emptyConfig).Elem().Name() + "."

	fieldWithType := make(map[string]reflect.Type)
	var paths []string
	reflectutils.WalkStruct(
		emptyConfig,
		fn.AllTriConsumer(
			reflectutils.CreateNilStructs,
			func(_ reflect.Value, fieldTyp reflect.Type, path []string) {
				if len(path) > 0 {
					fieldPath := strings.Join(path, ".")
					fieldWithType[fieldPath] = fieldTyp
					paths = append(paths, fieldPath)
				}
			},
		),
	)

	binders := make([]*Binder, 0, len(paths))
	for _, fieldPath := range paths {
		binders = append(
			binders,
			c.Bind(fieldWithType[fieldPath]).
				Named(prefix+fieldPath).
				FromMethod(func(ctx *InjectContext) (any, error) {
					cfg, err := Resolve[*T](ctx)
					if err != nil {
						return nil, err
					}
					return structs.Get(cfg, fieldPath)
				}).
				Description("config field "+prefix+fieldPath),
		)
	}
	return binders
}
