// Package typecheck verifies field values against type descriptors.
//
// Each descriptor is backed by a compiled JSON Schema. Values are first
// normalized through encoding/json, so Go integers, floats, strings, slices,
// maps and structs are checked the same way as decoded JSON.
//
// Built-in descriptors mirror the property types of the host content system:
//
//	text, token, integer, decimal, boolean, date, duration, uri, struct
//
// and list<T> for any known T, e.g. list<integer>. Integers and decimals
// also accept numeric strings, and date is a unix timestamp. Descriptors the
// checker does not know are treated as valid, matching the host's behavior
// for entity references and other opaque types; use Strict to reject them.
package typecheck
