/*
Package jsonval validates JSON instances against JSON Schema (draft v4) and reports what it found as leveled messages.

Validation never stops at a boolean. Every call yields a report: the messages logged while walking the instance, each tagged with a level (debug, info, warning, error, fatal), the JSON pointer of the offending instance node and the location of the schema fragment that produced it. The report is a success when nothing at error level or above was logged.

# Concept

A schema document is split into fragments addressed by a base URI and a JSON pointer. For each fragment and each kind of instance (null, boolean, string, integer, decimal, array, object) the validator computes, once, the set of keyword validators that apply and a digest describing which child schemas govern which child instances. These results are cached, so validating many instances against the same schema only analyzes it once.

The walk is depth first. Array elements are visited in index order and object members in sorted name order, so identical inputs always produce identical reports. A validation loop, such as a schema that eventually refers back to itself for the same instance node, is detected and ends the call with a single fatal message instead of recursing forever.

# Key Features

  - Leveled reports: choose what gets recorded (log level) and what aborts the call (exception threshold).
  - Fail fast or deep: by default descent stops below the first failing node; deep check keeps going.
  - Exact numbers: integers and decimals compare without floating point rounding.
  - ECMA-262 patterns through github.com/dlclark/regexp2.
  - External references loaded through pluggable resolvers (memory, file system, Redis).

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/jsonval"
		"github.com/aretw0/jsonval/pkg/value"
	)

	func main() {
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
		for _, m := range rep.Messages() {
			fmt.Println(m)
		}
	}

# Adapters

Schemas referenced by absolute URI are loaded through a ports.SchemaResolver passed with WithResolver. The pkg/adapters packages provide in-memory, file and Redis stores, an HTTP service built on chi and an MCP server exposing validation as a tool.
*/
package jsonval
