package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/jsonval"
	"github.com/aretw0/jsonval/pkg/adapters/file"
	"github.com/aretw0/jsonval/pkg/value"
)

// sample is a document written by the generator. Instances carry the outcome
// they are expected to produce against order.json.
type sample struct {
	name  string
	doc   string
	valid *bool
}

func expect(v bool) *bool { return &v }

var samples = []sample{
	{name: "address.yaml", doc: `{
		"type": "object",
		"required": ["street", "country"],
		"properties": {
			"street": {"type": "string", "minLength": 1},
			"zip": {"type": "string", "pattern": "^[0-9]{5}(-[0-9]{4})?$"},
			"country": {"enum": ["BR", "PT", "US"]}
		},
		"additionalProperties": false
	}`},
	{name: "person.json", doc: `{
		"type": "object",
		"required": ["name", "email"],
		"properties": {
			"name": {"type": "string", "minLength": 1, "maxLength": 80},
			"email": {"type": "string", "format": "email"},
			"address": {"$ref": "address.yaml"}
		}
	}`},
	{name: "order.json", doc: `{
		"type": "object",
		"required": ["id", "customer", "lines"],
		"properties": {
			"id": {"type": "string", "pattern": "^ord-[0-9]+$"},
			"customer": {"$ref": "person.json"},
			"lines": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/line"}},
			"total": {"type": "number", "minimum": 0, "multipleOf": 0.01}
		},
		"definitions": {
			"line": {
				"type": "object",
				"required": ["sku", "qty"],
				"properties": {
					"sku": {"type": "string"},
					"qty": {"type": "integer", "minimum": 1}
				}
			}
		}
	}`},
	{name: "instances/clean.json", valid: expect(true), doc: `{
		"id": "ord-1",
		"customer": {"name": "Ada", "email": "ada@example.com", "address": {"street": "Rua A", "country": "BR"}},
		"lines": [{"sku": "tea", "qty": 2}],
		"total": 12.30
	}`},
	{name: "instances/noisy.json", valid: expect(false), doc: `{
		"id": "order-2",
		"customer": {"name": "", "email": "not-an-email", "address": {"street": "Main St", "country": "UK", "zip": "1"}},
		"lines": [{"sku": "tea", "qty": 0}, {"qty": 1.5}],
		"total": 0.001
	}`},
	{name: "instances/empty-lines.yaml", valid: expect(false), doc: `{
		"id": "ord-3",
		"customer": {"name": "Lin", "email": "lin@example.com"},
		"lines": []
	}`},
}

func main() {
	targetDir := "examples/schemas"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}

	fmt.Printf("Generating samples in: %s\n", targetDir)

	store, err := file.New(targetDir)
	check(err)
	ctx := context.TODO()

	for _, s := range samples {
		check(store.Put(ctx, store.Base()+s.name, value.MustParse(s.doc)))
	}

	// Validate the instances against the schemas just written, as a smoke
	// test of the generated set.
	v := jsonval.New(jsonval.WithResolver(store), jsonval.WithDeepCheck(true))
	schema, err := v.ResolveSchema(ctx, store.Base()+"order.json")
	check(err)
	for _, s := range samples {
		if s.valid == nil {
			continue
		}
		doc, err := store.Resolve(ctx, store.Base()+s.name)
		check(err)
		rep, err := v.Validate(ctx, schema, doc)
		check(err)
		if rep.IsSuccess() != *s.valid {
			check(fmt.Errorf("%s: expected valid=%t, got %t", s.name, *s.valid, rep.IsSuccess()))
		}
		fmt.Printf("  %-28s valid=%-5t messages=%d\n", s.name, rep.IsSuccess(), rep.Len())
	}

	fmt.Println("Done. Try: jsonval validate -s", targetDir+"/order.json", targetDir+"/instances/noisy.json")
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}
