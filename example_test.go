package jsonval_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/jsonval"
	"github.com/aretw0/jsonval/pkg/adapters/memory"
	"github.com/aretw0/jsonval/pkg/value"
)

// ExampleValidator_Validate shows a deep check collecting every failure.
func ExampleValidator_Validate() {
	v := jsonval.New(jsonval.WithDeepCheck(true))

	schema, err := v.LoadSchema("mem://person.json", []byte(`{
		"type": "object",
		"required": ["name"],
		"properties": {"age": {"type": "integer", "minimum": 0}}
	}`))
	if err != nil {
		log.Fatal(err)
	}

	rep, err := v.Validate(context.Background(), schema, value.MustParse(`{"age": -1}`))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("valid:", rep.IsSuccess())
	for _, m := range rep.Messages() {
		fmt.Printf("%s %s %q\n", m.Level, m.Keyword, string(m.Pointer))
	}
	// Output:
	// valid: false
	// error required ""
	// error minimum "/age"
}

// ExampleWithResolver demonstrates references to a schema registered in a store.
func ExampleWithResolver() {
	ctx := context.Background()
	store := memory.NewStore()
	if err := store.Put(ctx, "mem://defs.json", value.MustParse(`{"positive":{"minimum":0,"exclusiveMinimum":true}}`)); err != nil {
		log.Fatal(err)
	}

	v := jsonval.New(jsonval.WithResolver(store))
	schema, err := v.LoadSchema("mem://main.json", []byte(`{"items":{"$ref":"mem://defs.json#/positive"}}`))
	if err != nil {
		log.Fatal(err)
	}

	rep, err := v.Validate(ctx, schema, value.MustParse(`[3, 0.5, 0]`))
	if err != nil {
		log.Fatal(err)
	}
	for _, m := range rep.Messages() {
		fmt.Printf("%s %s %q\n", m.Level, m.Keyword, string(m.Pointer))
	}
	// Output:
	// error minimum "/2"
}
