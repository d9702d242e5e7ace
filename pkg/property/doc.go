// Package property reads and writes named properties of records, so the
// validation engine never touches a record's concrete type.
//
// Facade understands:
//
//   - map[string]any records (missing keys read as nil);
//   - *Bag, an ordered field bag built with AddField or SetFields;
//   - structs and pointers to structs, resolving properties by the `field`
//     tag, then the `json` tag name, then the Go field name;
//   - any record implementing Accessor, which takes full control.
//
// Writes need something addressable: a map, a *Bag, a pointer to a struct or
// an Accessor.
package property
