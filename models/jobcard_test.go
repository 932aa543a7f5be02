package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskProgressAllDone(t *testing.T) {
	assert.True(t, TaskProgress{Completed: 3, Total: 3}.AllDone())
	assert.False(t, TaskProgress{Completed: 2, Total: 3}.AllDone())

	// A job card with zero tasks never auto-transitions.
	assert.False(t, TaskProgress{Completed: 0, Total: 0}.AllDone())
}
