package keyword

import (
	"github.com/aretw0/jsonval/pkg/digest"
	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/regex"
	"github.com/aretw0/jsonval/pkg/report"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
)

func checkRequired(kw, _ value.Value, _ regex.Engine) error {
	return isStringSet(kw)
}

type requiredValidator struct {
	names []string
}

func buildRequired(kw, _ value.Value, _ digest.Digest) (Validator, error) {
	names := make([]string, 0, kw.Len())
	for _, e := range kw.Elements() {
		names = append(names, e.Str())
	}
	return requiredValidator{names: names}, nil
}

func (requiredValidator) Keyword() string { return "required" }

func (v requiredValidator) Validate(ctx Context, rep *report.Report, inst tree.Instance) error {
	var missing []string
	for _, n := range v.names {
		if !inst.Node().Has(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	m := Fail(ctx, inst, "required", "object has missing required properties (%v)", missing).
		With("required", stringArray(v.names...)).
		With("missing", stringArray(missing...))
	return rep.Log(m)
}

func checkPatternProperties(kw, schema value.Value, re regex.Engine) error {
	if err := isSchemaMap(kw, schema, re); err != nil {
		return err
	}
	for _, p := range kw.Fields() {
		if !re.IsValid(p) {
			return syntaxErrorAt(jsonptr.Root.Append(p), value.String(p), "%q is not a valid ECMA 262 regular expression", p)
		}
	}
	return nil
}

// additionalPropertiesValidator enforces additionalProperties: false. Each
// unwanted member is reported at its own pointer.
type additionalPropertiesValidator struct {
	digest digest.Object
}

func buildAdditionalProperties(kw, _ value.Value, d digest.Digest) (Validator, error) {
	od, ok := d.(digest.Object)
	if kw.Kind() != value.KindBool || kw.Bool() || !ok {
		return nil, nil
	}
	return additionalPropertiesValidator{digest: od}, nil
}

func (additionalPropertiesValidator) Keyword() string { return "additionalProperties" }

func (v additionalPropertiesValidator) Validate(ctx Context, rep *report.Report, inst tree.Instance) error {
	for _, field := range inst.Node().Fields() {
		child := inst.Field(field)
		selected, err := v.digest.Select(field, ctx.Regex())
		if err != nil {
			return Abort(ctx, child, "patternProperties", err)
		}
		if len(selected) > 0 {
			continue
		}
		m := Fail(ctx, child, "additionalProperties", "object instance has a property not allowed by the schema (%q)", field).
			With("unwanted", value.String(field))
		if err := rep.Log(m); err != nil {
			return err
		}
	}
	return nil
}

func checkDependencies(kw, _ value.Value, _ regex.Engine) error {
	if kw.Kind() != value.KindObject {
		return syntaxErrorf(kw, "must be an object, found %s", kw.Kind())
	}
	for _, name := range kw.Fields() {
		dep, _ := kw.Field(name)
		switch dep.Kind() {
		case value.KindObject:
		case value.KindArray:
			if err := isStringSet(dep); err != nil {
				se := err.(*SyntaxError)
				se.Pointer = jsonptr.Root.Append(name).Join(se.Pointer)
				return se
			}
		default:
			return syntaxErrorAt(jsonptr.Root.Append(name), dep, "must be a schema or an array of strings, found %s", dep.Kind())
		}
	}
	return nil
}

type dependenciesValidator struct {
	properties map[string][]string
	schemas    []string
}

func buildDependencies(kw, _ value.Value, _ digest.Digest) (Validator, error) {
	v := dependenciesValidator{properties: make(map[string][]string)}
	for _, name := range kw.Fields() {
		dep, _ := kw.Field(name)
		if dep.Kind() == value.KindObject {
			v.schemas = append(v.schemas, name)
			continue
		}
		for _, e := range dep.Elements() {
			v.properties[name] = append(v.properties[name], e.Str())
		}
	}
	return v, nil
}

func (dependenciesValidator) Keyword() string { return "dependencies" }

func (v dependenciesValidator) Validate(ctx Context, rep *report.Report, inst tree.Instance) error {
	obj := inst.Node()
	for _, name := range obj.Fields() {
		required, ok := v.properties[name]
		if !ok {
			continue
		}
		var missing []string
		for _, r := range required {
			if !obj.Has(r) {
				missing = append(missing, r)
			}
		}
		if len(missing) == 0 {
			continue
		}
		m := Fail(ctx, inst, "dependencies", "property %q depends on missing properties %v", name, missing).
			With("property", value.String(name)).
			With("required", stringArray(required...)).
			With("missing", stringArray(missing...))
		if err := rep.Log(m); err != nil {
			return err
		}
	}
	for _, name := range v.schemas {
		if !obj.Has(name) {
			continue
		}
		if err := ctx.Validate(rep, jsonptr.Root.Append("dependencies", name), inst); err != nil {
			return err
		}
	}
	return nil
}
