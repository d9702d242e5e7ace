// Package sanitizer holds the value transforms behind the engine's morph
// preprocessors.
//
// Every helper is a pure function; Apply and Compose chain them:
//
//	clean := sanitizer.Compose(sanitizer.StripControl, sanitizer.NormalizeWhitespace)
//	title := clean("  Hello\x00   world ")
//	// "Hello world"
package sanitizer
