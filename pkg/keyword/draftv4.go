package keyword

import (
	"github.com/aretw0/jsonval/pkg/value"
)

var (
	anyKind    = value.AllKinds
	numbers    = value.Numbers
	strs       = value.Kinds(value.KindString)
	arrays     = value.Kinds(value.KindArray)
	objects    = value.Kinds(value.KindObject)
	noInstance = value.KindSet(0)
)

// DraftV4 returns a registry holding the draft-4 keywords, plus const and
// the draft-3 divisibleBy alias of multipleOf.
func DraftV4() *Registry {
	return DraftV4WithFormats(DefaultFormats())
}

// DraftV4WithFormats is like DraftV4 with a custom set of format attributes.
func DraftV4WithFormats(formats Formats) *Registry {
	r := NewRegistry()
	for _, e := range DraftV4Entries(formats) {
		// Every built-in entry has a name and a checker.
		_ = r.Register(e)
	}
	return r
}

// DraftV4Entries lists the built-in keyword entries.
func DraftV4Entries(formats Formats) []Entry {
	return []Entry{
		// Shape-only keywords: checked, never built.
		{Name: "$ref", Kinds: noInstance, Check: isString},
		{Name: "$schema", Kinds: noInstance, Check: isString},
		{Name: "id", Kinds: noInstance, Check: isString},
		{Name: "title", Kinds: noInstance, Check: isString},
		{Name: "description", Kinds: noInstance, Check: isString},
		{Name: "default", Kinds: noInstance, Check: anything},
		{Name: "definitions", Kinds: noInstance, Check: isSchemaMap},
		{Name: "properties", Kinds: noInstance, Check: isSchemaMap},
		{Name: "patternProperties", Kinds: noInstance, Check: checkPatternProperties},
		{Name: "items", Kinds: noInstance, Check: isSchemaOrSchemaArray},

		{Name: "type", Kinds: anyKind, Check: checkType, Build: buildType},
		{Name: "enum", Kinds: anyKind, Check: checkEnum, Build: buildEnum},
		{Name: "const", Kinds: anyKind, Check: anything, Build: buildConst},
		{Name: "allOf", Kinds: anyKind, Check: isSchemaArray, Build: buildBranches("allOf", func(b branches) Validator { return allOfValidator{b} })},
		{Name: "anyOf", Kinds: anyKind, Check: isSchemaArray, Build: buildBranches("anyOf", func(b branches) Validator { return anyOfValidator{b} })},
		{Name: "oneOf", Kinds: anyKind, Check: isSchemaArray, Build: buildBranches("oneOf", func(b branches) Validator { return oneOfValidator{b} })},
		{Name: "not", Kinds: anyKind, Check: isSchema, Build: buildNot},

		{Name: "minimum", Kinds: numbers, Check: isNumber, Build: buildBound("minimum", "exclusiveMinimum", -1)},
		{Name: "maximum", Kinds: numbers, Check: isNumber, Build: buildBound("maximum", "exclusiveMaximum", +1)},
		{Name: "exclusiveMinimum", Kinds: noInstance, Check: requires(isBool, "minimum")},
		{Name: "exclusiveMaximum", Kinds: noInstance, Check: requires(isBool, "maximum")},
		{Name: "multipleOf", Kinds: numbers, Check: isPositiveNumber, Build: buildMultiple("multipleOf")},
		{Name: "divisibleBy", Kinds: numbers, Check: isPositiveNumber, Build: buildMultiple("divisibleBy")},

		{Name: "minLength", Kinds: strs, Check: isNonNegativeInteger, Build: buildSize("minLength", "characters", true, runeCount)},
		{Name: "maxLength", Kinds: strs, Check: isNonNegativeInteger, Build: buildSize("maxLength", "characters", false, runeCount)},
		{Name: "pattern", Kinds: strs, Check: checkPattern, Build: buildPattern},
		{Name: "format", Kinds: strs, Check: isString, Build: buildFormat(formats)},

		{Name: "minItems", Kinds: arrays, Check: isNonNegativeInteger, Build: buildSize("minItems", "elements", true, value.Value.Len)},
		{Name: "maxItems", Kinds: arrays, Check: isNonNegativeInteger, Build: buildSize("maxItems", "elements", false, value.Value.Len)},
		{Name: "uniqueItems", Kinds: arrays, Check: isBool, Build: buildUniqueItems},
		{Name: "additionalItems", Kinds: arrays, Check: isSchemaOrBool, Build: buildAdditionalItems},

		{Name: "minProperties", Kinds: objects, Check: isNonNegativeInteger, Build: buildSize("minProperties", "properties", true, value.Value.Len)},
		{Name: "maxProperties", Kinds: objects, Check: isNonNegativeInteger, Build: buildSize("maxProperties", "properties", false, value.Value.Len)},
		{Name: "required", Kinds: objects, Check: checkRequired, Build: buildRequired},
		{Name: "additionalProperties", Kinds: objects, Check: isSchemaOrBool, Build: buildAdditionalProperties},
		{Name: "dependencies", Kinds: objects, Check: checkDependencies, Build: buildDependencies},
	}
}
