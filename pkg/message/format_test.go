package message_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/entityvalidate/pkg/message"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	t.Run("substitutes named parameters", func(t *testing.T) {
		t.Parallel()
		got := message.Format("The field %{field} cannot be empty.", map[string]string{"field": "title"})
		assert.Equal(t, "The field title cannot be empty.", got)
	})

	t.Run("keeps unresolved placeholders verbatim", func(t *testing.T) {
		t.Parallel()
		got := message.Format("%{width} exceeds %{max-width}", map[string]string{"width": "300"})
		assert.Equal(t, "300 exceeds %{max-width}", got)
	})

	t.Run("returns template when params are empty", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "plain %{x}", message.Format("plain %{x}", nil))
	})

	t.Run("does not confuse parameters sharing a prefix", func(t *testing.T) {
		t.Parallel()
		got := message.Format("%{max}/%{max-width}", map[string]string{"max": "1", "max-width": "2"})
		assert.Equal(t, "1/2", got)
	})
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()
	got := message.Placeholders("%{a} and %{b} then %{a}")
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Empty(t, message.Placeholders("none"))
}

func TestFormatterFunc(t *testing.T) {
	t.Parallel()
	f := message.FormatterFunc(func(template string, _ map[string]string) string {
		return "[" + template + "]"
	})
	assert.Equal(t, "[x]", f.Format("x", nil))
	assert.Equal(t, "a b", message.Default.Format("a %{v}", map[string]string{"v": "b"}))
}
