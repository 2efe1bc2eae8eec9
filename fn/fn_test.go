package fn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllTriConsumer(t *testing.T) {
	t.Run("it should call every consumer in order", func(t *testing.T) {
		// GIVEN
		var calls []string
		first := func(a string, b int, c bool) { calls = append(calls, "first:"+a) }
		second := func(a string, b int, c bool) { calls = append(calls, "second:"+a) }

		// WHEN
		AllTriConsumer[string, int, bool](first, second)("x", 1, true)

		// THEN
		assert.Equal(t, []string{"first:x", "second:x"}, calls)
	})
}
