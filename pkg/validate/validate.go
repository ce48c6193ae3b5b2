// Package validate provides struct-tag validation for request payloads.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required            field must not be zero/empty
//	nullable            if empty, skip all remaining rules for this field
//	url                 absolute http/https URL
//	alpha_dash          letters, digits, hyphens, underscores
//	objectid            24-character hex MongoDB ObjectID
//	min=N / max=N       string: char length | number: value
//	gt=N / gte=N        number bounds
//	lt=N / lte=N        number bounds
//	in=a,b,c            value must be one of the listed items
//
// Pointer fields are dereferenced; a nil pointer counts as empty.
//
//	type Input struct {
//	    Name  string   `json:"name"  validate:"required,max=100"`
//	    Price *float64 `json:"price" validate:"nullable,gte=0"`
//	    Kind  string   `json:"kind"  validate:"nullable,in=none,flat"`
//	}
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of fieldName → error message; empty map means no errors.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		name := jsonFieldName(field)
		rules := splitRules(tag)
		value := rv.Field(i)

		if isEmpty(value) {
			if hasRule(rules, "nullable") {
				continue
			}
			if hasRule(rules, "required") {
				errs[name] = fmt.Sprintf("The %s field is required.", name)
			}
			continue
		}
		for value.Kind() == reflect.Ptr {
			value = value.Elem()
		}

		for _, rule := range rules {
			if msg := applyRule(rule, name, value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

var (
	alphaDashRE = regexp.MustCompile(`^[\pL\pN_-]+$`)
	objectIDRE  = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
)

func applyRule(rule, field string, v reflect.Value) string {
	raw := fmt.Sprintf("%v", v.Interface())
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "url":
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Sprintf("The %s must be a valid URL.", field)
		}
	case "alpha_dash":
		if !alphaDashRE.MatchString(raw) {
			return fmt.Sprintf("The %s may only contain letters, numbers, dashes and underscores.", field)
		}
	case "objectid":
		if !objectIDRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid id.", field)
		}
	case "min", "max":
		n := mustParseFloat(param)
		size, unit := measure(v, raw)
		if key == "min" && size < n {
			return fmt.Sprintf("The %s must be at least %s%s.", field, param, unit)
		}
		if key == "max" && size > n {
			return fmt.Sprintf("The %s must not be greater than %s%s.", field, param, unit)
		}
	case "gt", "gte", "lt", "lte":
		return compare(key, field, param, toFloat(v))
	case "in":
		for _, a := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(a) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	}
	return ""
}

func compare(op, field, param string, f float64) string {
	n := mustParseFloat(param)
	switch {
	case op == "gt" && f <= n:
		return fmt.Sprintf("The %s must be greater than %s.", field, param)
	case op == "gte" && f < n:
		return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
	case op == "lt" && f >= n:
		return fmt.Sprintf("The %s must be less than %s.", field, param)
	case op == "lte" && f > n:
		return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
	}
	return ""
}

// measure is the numeric value for numbers and the rune count otherwise.
func measure(v reflect.Value, raw string) (float64, string) {
	if isNumericKind(v) {
		return toFloat(v), ""
	}
	if v.Kind() == reflect.Slice {
		return float64(v.Len()), " items"
	}
	return float64(len([]rune(raw))), " characters"
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	f, _ := strconv.ParseFloat(fmt.Sprintf("%v", v.Interface()), 64)
	return f
}

func mustParseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonFieldName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return name
}

// splitRules splits the tag on commas, keeping the comma-separated value
// list of an in= rule together until the next known rule keyword.
// "required,in=a,b,max=10" → ["required", "in=a,b", "max=10"]
func splitRules(tag string) []string {
	var rules []string
	for _, tok := range strings.Split(tag, ",") {
		tok = strings.TrimSpace(tok)
		if n := len(rules); n > 0 && strings.HasPrefix(rules[n-1], "in=") && !isRuleToken(tok) {
			rules[n-1] += "," + tok
			continue
		}
		rules = append(rules, tok)
	}
	return rules
}

var ruleKeys = map[string]bool{
	"required": true, "nullable": true, "url": true, "alpha_dash": true, "objectid": true,
	"min": true, "max": true, "gt": true, "gte": true, "lt": true, "lte": true, "in": true,
}

func isRuleToken(tok string) bool {
	key, _, _ := strings.Cut(tok, "=")
	return ruleKeys[key]
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if r == target {
			return true
		}
	}
	return false
}
