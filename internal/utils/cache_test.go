package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetGetExpiry(t *testing.T) {
	c := GetCache()
	c.Set("greeting", "hello", time.Minute)

	assert.Equal(t, "hello", c.Get("greeting"))

	c.Set("flash", "gone", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Nil(t, c.Get("flash"))

	c.Delete("greeting")
	assert.Nil(t, c.Get("greeting"))
}
