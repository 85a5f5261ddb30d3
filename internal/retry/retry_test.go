package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_Sequence(t *testing.T) {
	b := Backoff{Initial: 100 * time.Millisecond, Max: 500 * time.Millisecond}
	got := []time.Duration{b.Next(), b.Next(), b.Next(), b.Next(), b.Next()}
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		500 * time.Millisecond,
		500 * time.Millisecond,
	}, got)

	b.Reset()
	assert.Equal(t, 100*time.Millisecond, b.Next())
}

func TestBackoff_CopiesAreIndependent(t *testing.T) {
	tmpl := Backoff{Initial: time.Second, Max: 4 * time.Second}
	a := tmpl
	a.Next()
	a.Next()

	b := tmpl
	assert.Equal(t, time.Second, b.Next())
	assert.Equal(t, 4*time.Second, a.Next())
}
