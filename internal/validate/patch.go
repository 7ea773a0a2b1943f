package validate

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/labstack/echo/v4"
)

// Fields records which JSON keys a partial update carried; the value is true
// when the key was an explicit null.
type Fields map[string]bool

// Has reports whether the key was present.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// DecodePatch decodes a partial update into dst, a struct of pointer fields,
// and reports which keys were present. Keys are folded onto dst's JSON names
// the same way encoding/json matches them, so "Status" counts as "status".
func DecodePatch(body []byte, dst interface{}) (Fields, error) {
	if err := DecodeJSON(body, dst); err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		var out Errors
		out.Add("", "request body must be a JSON object")
		return nil, out
	}

	names := fieldNames(reflect.Indirect(reflect.ValueOf(dst)).Type())
	fields := make(Fields, len(raw))
	for key, value := range raw {
		name, ok := foldKey(names, key)
		if !ok {
			continue
		}
		fields[name] = fields[name] || bytes.Equal(bytes.TrimSpace(value), []byte("null"))
	}
	return fields, nil
}

func fieldNames(t reflect.Type) []string {
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if sf := t.Field(i); sf.IsExported() {
			if name := jsonName(sf); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

// foldKey resolves key to a field name: an exact match wins, otherwise the
// first case-insensitive one.
func foldKey(names []string, key string) (string, bool) {
	for _, name := range names {
		if name == key {
			return name, true
		}
	}
	for _, name := range names {
		if strings.EqualFold(name, key) {
			return name, true
		}
	}
	return "", false
}

func nillable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return true
	}
	return false
}

// Updates converts the present fields of dst into a field-name keyed map for
// gorm's Updates. Absent fields are left out, explicit nulls map to nil.
// A field tagged `patch:"required"` may not be cleared.
func (f Fields) Updates(dst interface{}) (map[string]interface{}, error) {
	v := reflect.Indirect(reflect.ValueOf(dst))
	t := v.Type()

	updates := make(map[string]interface{})
	var errs Errors
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := jsonName(sf)
		isNull, present := f[name]
		if !present {
			continue
		}
		fv := v.Field(i)
		// Differently cased duplicates decode last-wins; the decoded value
		// decides whether the field ends up cleared.
		if nillable(fv.Kind()) {
			isNull = fv.IsNil()
		}
		if isNull {
			if strings.Contains(sf.Tag.Get("patch"), "required") {
				errs.Add(name, name+" cannot be null")
				continue
			}
			updates[sf.Name] = nil
			continue
		}
		if fv.Kind() == reflect.Pointer {
			fv = fv.Elem()
		}
		updates[sf.Name] = fv.Interface()
	}

	if len(errs) > 0 {
		return nil, errs
	}
	if len(updates) == 0 {
		errs.Add("", "at least one field must be provided")
		return nil, errs
	}
	return updates, nil
}

// BindPatch reads, decodes and validates a partial update and returns the
// column updates it describes.
func BindPatch(c echo.Context, dst interface{}) (map[string]interface{}, error) {
	body, err := ReadBody(c)
	if err != nil {
		return nil, err
	}
	fields, err := DecodePatch(body, dst)
	if err != nil {
		return nil, err
	}
	if err := Default().Struct(dst); err != nil {
		return nil, err
	}
	return fields.Updates(dst)
}
