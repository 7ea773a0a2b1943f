package validate

import (
	"reflect"
	"strings"
)

// trimStrings walks v (a pointer to a struct) and trims leading and trailing
// whitespace from every exported string, *string and []string field,
// descending into nested structs and slices of structs.
func trimStrings(v reflect.Value) {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return
		}
		if v.Elem().Kind() == reflect.String {
			if v.CanSet() {
				s := strings.TrimSpace(v.Elem().String())
				v.Set(reflect.ValueOf(&s))
			}
			return
		}
		trimStrings(v.Elem())
	case reflect.String:
		if v.CanSet() {
			v.SetString(strings.TrimSpace(v.String()))
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			trimStrings(v.Index(i))
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			trimStrings(v.Field(i))
		}
	}
}
