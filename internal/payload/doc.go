// Package payload decodes backend JSON into domain values.
//
// Log payloads are heterogeneous: a record's content may be an array of
// iteration objects, a single object, or a string that itself holds
// encoded JSON. Decoding uses fastjson so each shape can be inspected
// before it is committed to a domain.Content variant.
//
// Decoding is tolerant: unexpected field types are coerced to strings
// and unknown fields are ignored. Only a top-level shape mismatch
// (for example an object where a list was expected) is an error.
package payload
