package ports

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestFieldHelpers tests the typed field constructors
func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, Field{Key: "intent", Value: "CHECKOUT"}, String("intent", "CHECKOUT"))
	assert.Equal(t, Field{Key: "attempt", Value: 3}, Int("attempt", 3))
	assert.Equal(t, Field{Key: "vault", Value: true}, Bool("vault", true))
	assert.Equal(t, Field{Key: "retry_in", Value: time.Second}, Duration("retry_in", time.Second))

	cause := errors.New("boom")
	assert.Equal(t, Field{Key: "error", Value: cause}, Err(cause))
}
