package schema

import (
	"cmp"
	"fmt"
	"strings"
)

// Key identifies the schema of one bundle.
type Key struct {
	EntityType string
	Bundle     string
}

// String renders the key as "entity/bundle".
func (k Key) String() string {
	return k.EntityType + "/" + k.Bundle
}

func compareKeys(a, b Key) int {
	if c := cmp.Compare(a.EntityType, b.EntityType); c != 0 {
		return c
	}
	return cmp.Compare(a.Bundle, b.Bundle)
}

// checkEntityType rejects entity type names that would make "entity/bundle"
// strings ambiguous.
func checkEntityType(entityType string) error {
	if strings.Contains(entityType, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidEntityType, entityType)
	}
	return nil
}
