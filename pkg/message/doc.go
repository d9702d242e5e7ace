// Package message renders validation messages.
//
// Messages are plain templates with named placeholders in the form %{name}.
// Format substitutes the placeholders from a parameter map and leaves any
// placeholder without a matching parameter untouched, so rendering never
// fails.
//
// A Catalog adds optional localization on top of Format: it maps a message
// template (the untranslated English text is the key) to a translated
// template per language. Catalogs are loaded from YAML documents shaped as
//
//	de:
//	  "The field %{field} cannot be empty.": "Das Feld %{field} darf nicht leer sein."
//
// The validator package never depends on a process-wide catalog; a host
// passes Catalog.Formatter(lang) to the engine when it wants translated output.
package message
