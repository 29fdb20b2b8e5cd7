package settings

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	formatValidator = validator.New() //nolint:gochecknoglobals

	patternCache sync.Map //nolint:gochecknoglobals // pattern string -> *regexp.Regexp
)

// Result is the outcome of a validation run. Errors is never nil.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate checks every supplied key against the schema. It accepts partial
// settings, never mutates values and reports each violation as a separate message.
func Validate(values map[string]Value, schema *Schema) Result {
	if schema == nil {
		return Result{Valid: false, Errors: []string{"schema is nil"}}
	}

	problems := []string{}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		field, ok := schema.Field(key)
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: unknown key", key))
			continue
		}

		problems = append(problems, field.check(values[key])...)
	}

	return Result{Valid: len(problems) == 0, Errors: problems}
}

// ValidateRaw converts decoded JSON input into typed values and validates them.
// Keys whose value can not be represented are reported and left out of the returned map.
func ValidateRaw(raw map[string]any, schema *Schema) (map[string]Value, Result) {
	var (
		values   = make(map[string]Value, len(raw))
		problems []string
	)

	for key, x := range raw {
		v, err := FromAny(x)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", key, err))
			continue
		}

		values[key] = v
	}

	res := Validate(values, schema)
	if len(problems) > 0 {
		sort.Strings(problems)
		res.Errors = append(problems, res.Errors...)
		res.Valid = false
	}

	return values, res
}

// check returns the violations of v against the field declaration.
func (f Field) check(v Value) []string {
	if v.Type() != f.Type {
		return []string{fmt.Sprintf("%s: expected %s value, got %s", f.Key, f.Type, typeName(v))}
	}

	switch f.Type {
	case TypeString:
		s, _ := v.AsString()
		return f.checkString(s)
	case TypeNumber:
		n, _ := v.AsNumber()
		return f.checkNumber(n)
	default:
		return nil
	}
}

func (f Field) checkString(s string) []string {
	var (
		c        = f.Constraints
		length   = utf8.RuneCountInString(s)
		problems []string
	)

	if c.MinLength != nil && length < *c.MinLength {
		problems = append(problems, fmt.Sprintf("%s: length %d is below minLength %d", f.Key, length, *c.MinLength))
	}

	if c.MaxLength != nil && length > *c.MaxLength {
		problems = append(problems, fmt.Sprintf("%s: length %d exceeds maxLength %d", f.Key, length, *c.MaxLength))
	}

	if c.Pattern != "" {
		re, err := compilePattern(c.Pattern)

		switch {
		case err != nil:
			problems = append(problems, fmt.Sprintf("%s: invalid pattern %s", f.Key, c.Pattern))
		case !re.MatchString(s):
			problems = append(problems, fmt.Sprintf("%s: value %q does not match pattern %s", f.Key, s, c.Pattern))
		}
	}

	if len(c.Enum) > 0 && !slices.Contains(c.Enum, s) {
		problems = append(problems,
			fmt.Sprintf("%s: value %q is not one of [%s]", f.Key, s, strings.Join(c.Enum, ", ")))
	}

	// empty strings mean "not set" for formatted values
	if c.Format != "" && s != "" {
		if err := formatValidator.Var(s, c.Format); err != nil {
			problems = append(problems, fmt.Sprintf("%s: value %q is not a valid %s", f.Key, s, c.Format))
		}
	}

	return problems
}

func (f Field) checkNumber(n float64) []string {
	var (
		c        = f.Constraints
		problems []string
	)

	if c.Minimum != nil && n < *c.Minimum {
		problems = append(problems, fmt.Sprintf("%s: value %s is below minimum %s", f.Key, formatNum(n), formatNum(*c.Minimum)))
	}

	if c.Maximum != nil && n > *c.Maximum {
		problems = append(problems, fmt.Sprintf("%s: value %s exceeds maximum %s", f.Key, formatNum(n), formatNum(*c.Maximum)))
	}

	return problems
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil //nolint:forcetypeassert
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	patternCache.Store(pattern, re)

	return re, nil
}

func formatNum(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
