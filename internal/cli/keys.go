package cli

import (
	"reflect"
	"strings"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// configDefaults flattens cfg into dotted mapstructure keys and their
// values. viper only consults the environment for keys it already knows.
func configDefaults(cfg any) map[string]any {
	out := make(map[string]any)
	var walk func(v reflect.Value, prefix string)
	walk = func(v reflect.Value, prefix string) {
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			tag := field.Tag.Get("mapstructure")
			if tag == "" || tag == "-" {
				continue
			}
			key := prefix + tag
			if field.Type.Kind() == reflect.Struct {
				walk(v.Field(i), key+".")
				continue
			}
			out[key] = v.Field(i).Interface()
		}
	}
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	walk(v, "")
	return out
}
