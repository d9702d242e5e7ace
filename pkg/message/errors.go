package message

import "errors"

var (
	ErrFailedToParseYAML  = errors.New("failed to parse message catalog")
	ErrInvalidLanguage    = errors.New("invalid language tag")
	ErrInvalidCatalogData = errors.New("invalid message catalog structure")
)
