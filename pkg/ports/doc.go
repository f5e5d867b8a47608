/*
Package ports defines the driven ports (interfaces) of the validator.

These interfaces decouple the validation engine from the places schemas live,
so that $ref targets can come from memory, the filesystem or Redis.

# Key Interfaces

  - SchemaResolver: retrieves the schema document behind a URI for $ref resolution.
  - SchemaStore: a SchemaResolver that schemas can also be written to and listed from.
*/
package ports
