package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedRing(size int) *statusRing {
	r := newStatusRing(size)
	r.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	return r
}

func TestStatusRingKeepsNewest(t *testing.T) {
	r := fixedRing(3)
	assert.Empty(t, r.snapshot(3))

	r.push("a")
	r.push("b")
	assert.Equal(t, []string{"09:30:00  a", "09:30:00  b"}, r.snapshot(5))

	r.push("c")
	r.push("d")
	assert.Equal(t, []string{"09:30:00  b", "09:30:00  c", "09:30:00  d"}, r.snapshot(3))
	assert.Equal(t, []string{"09:30:00  d"}, r.snapshot(1))
}

func TestStatusRingMinimumSize(t *testing.T) {
	r := fixedRing(0)
	r.push("x")
	r.push("y")
	assert.Equal(t, []string{"09:30:00  y"}, r.snapshot(4))
}
