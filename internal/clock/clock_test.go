package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)
	assert.Equal(t, start, c.Now())

	c.Advance(48 * time.Hour)
	assert.Equal(t, start.AddDate(0, 0, 2), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestSystemClockIsUTC(t *testing.T) {
	var c Clock = SystemClock{}
	assert.Equal(t, time.UTC, c.Now().Location())
}
