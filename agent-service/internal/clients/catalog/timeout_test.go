package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewAppliesDefaultTimeout(t *testing.T) {
	for _, timeout := range []time.Duration{0, -time.Second} {
		c := New("http://catalog:3000", timeout)
		assert.Equal(t, 5*time.Second, c.client.Timeout, timeout)
	}
	assert.Equal(t, 2*time.Second, New("http://catalog:3000", 2*time.Second).client.Timeout)
}
