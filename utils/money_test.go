package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 288.0, Round2(1600*18.0/100))
	assert.Equal(t, 2.34, Round2(2.344))
	assert.Equal(t, 2.35, Round2(2.346))
	assert.Equal(t, 1.0, Round2(0.999))
	assert.Equal(t, 0.0, Round2(0))
}
