package keyword

import (
	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/regex"
	"github.com/aretw0/jsonval/pkg/value"
)

// Reusable syntax checkers.

func anything(value.Value, value.Value, regex.Engine) error { return nil }

func isString(kw, _ value.Value, _ regex.Engine) error {
	if kw.Kind() != value.KindString {
		return syntaxErrorf(kw, "must be a string, found %s", kw.Kind())
	}
	return nil
}

func isBool(kw, _ value.Value, _ regex.Engine) error {
	if kw.Kind() != value.KindBool {
		return syntaxErrorf(kw, "must be a boolean, found %s", kw.Kind())
	}
	return nil
}

func isNumber(kw, _ value.Value, _ regex.Engine) error {
	if !kw.Kind().IsNumber() {
		return syntaxErrorf(kw, "must be a number, found %s", kw.Kind())
	}
	return nil
}

func isPositiveNumber(kw, schema value.Value, re regex.Engine) error {
	if err := isNumber(kw, schema, re); err != nil {
		return err
	}
	if kw.Rat().Sign() <= 0 {
		return syntaxErrorf(kw, "must be strictly greater than 0")
	}
	return nil
}

func isNonNegativeInteger(kw, _ value.Value, _ regex.Engine) error {
	if !kw.IsIntegral() {
		return syntaxErrorf(kw, "must be an integer, found %s", kw)
	}
	if kw.Rat().Sign() < 0 {
		return syntaxErrorf(kw, "must not be negative")
	}
	if !kw.Rat().Num().IsInt64() {
		return syntaxErrorf(kw, "value %s is too large", kw)
	}
	return nil
}

func isSchema(kw, _ value.Value, _ regex.Engine) error {
	if kw.Kind() != value.KindObject {
		return syntaxErrorf(kw, "must be a schema (object), found %s", kw.Kind())
	}
	return nil
}

func isSchemaOrBool(kw, _ value.Value, _ regex.Engine) error {
	if kw.Kind() != value.KindObject && kw.Kind() != value.KindBool {
		return syntaxErrorf(kw, "must be a schema or a boolean, found %s", kw.Kind())
	}
	return nil
}

// isSchemaArray requires a non-empty array of schemas.
func isSchemaArray(kw, _ value.Value, _ regex.Engine) error {
	if kw.Kind() != value.KindArray {
		return syntaxErrorf(kw, "must be an array, found %s", kw.Kind())
	}
	if kw.Len() == 0 {
		return syntaxErrorf(kw, "must not be empty")
	}
	for i, e := range kw.Elements() {
		if e.Kind() != value.KindObject {
			return syntaxErrorAt(jsonptr.Root.AppendIndex(i), e, "must be a schema (object), found %s", e.Kind())
		}
	}
	return nil
}

// isSchemaMap requires an object whose members are all schemas.
func isSchemaMap(kw, _ value.Value, _ regex.Engine) error {
	if kw.Kind() != value.KindObject {
		return syntaxErrorf(kw, "must be an object, found %s", kw.Kind())
	}
	for _, name := range kw.Fields() {
		f, _ := kw.Field(name)
		if f.Kind() != value.KindObject {
			return syntaxErrorAt(jsonptr.Root.Append(name), f, "must be a schema (object), found %s", f.Kind())
		}
	}
	return nil
}

func isSchemaOrSchemaArray(kw, schema value.Value, re regex.Engine) error {
	if kw.Kind() == value.KindArray {
		return isSchemaArray(kw, schema, re)
	}
	return isSchema(kw, schema, re)
}

// isStringSet requires a non-empty array of distinct strings.
func isStringSet(kw value.Value) error {
	if kw.Kind() != value.KindArray {
		return syntaxErrorf(kw, "must be an array, found %s", kw.Kind())
	}
	if kw.Len() == 0 {
		return syntaxErrorf(kw, "must not be empty")
	}
	seen := make(map[string]bool, kw.Len())
	for i, e := range kw.Elements() {
		if e.Kind() != value.KindString {
			return syntaxErrorAt(jsonptr.Root.AppendIndex(i), e, "must be a string, found %s", e.Kind())
		}
		if seen[e.Str()] {
			return syntaxErrorf(kw, "elements must be unique, %q is repeated", e.Str())
		}
		seen[e.Str()] = true
	}
	return nil
}

// requires returns a checker that runs check and then demands that the
// schema also declares other.
func requires(check Checker, other string) Checker {
	return func(kw, schema value.Value, re regex.Engine) error {
		if err := check(kw, schema, re); err != nil {
			return err
		}
		if !schema.Has(other) {
			return syntaxErrorf(kw, "requires %q to be present", other)
		}
		return nil
	}
}
