package models

import (
	"testing"
	"time"

	"autocare-backend/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeInvoiceAmounts(t *testing.T) {
	// Two tasks (2h x 500, 1h x 300) and one part usage (3 x 100).
	amounts, err := ComputeInvoiceAmounts(1300, 300, 18, 10)
	require.NoError(t, err)

	assert.Equal(t, 1600.0, amounts.Subtotal)
	assert.Equal(t, 288.0, amounts.Tax)
	assert.Equal(t, 160.0, amounts.Discount)
	assert.Equal(t, 1728.0, amounts.Total)
}

func TestComputeInvoiceAmountsZeroPercents(t *testing.T) {
	amounts, err := ComputeInvoiceAmounts(500, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 500.0, amounts.Subtotal)
	assert.Equal(t, 0.0, amounts.Tax)
	assert.Equal(t, 0.0, amounts.Discount)
	assert.Equal(t, 500.0, amounts.Total)
}

func TestComputeInvoiceAmountsRounding(t *testing.T) {
	amounts, err := ComputeInvoiceAmounts(99.99, 0.02, 18, 0)
	require.NoError(t, err)
	assert.Equal(t, 100.01, amounts.Subtotal)
	assert.Equal(t, 18.0, amounts.Tax)
	assert.Equal(t, 118.01, amounts.Total)
}

func TestComputeInvoiceAmountsNegativePercent(t *testing.T) {
	_, err := ComputeInvoiceAmounts(1000, 0, -1, 0)
	assert.Error(t, err)
	assert.Equal(t, apperrors.InvalidInput, apperrors.KindOf(err))

	_, err = ComputeInvoiceAmounts(1000, 0, 0, -5)
	assert.Error(t, err)
	assert.Equal(t, apperrors.InvalidInput, apperrors.KindOf(err))
}

func TestComputeInvoiceAmountsNegativeTotal(t *testing.T) {
	// Discount large enough to push the total below zero.
	_, err := ComputeInvoiceAmounts(1000, 0, 0, 150)
	assert.Error(t, err)
	assert.Equal(t, apperrors.InvalidInput, apperrors.KindOf(err))
}

func TestNewInvoiceNumber(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	n := NewInvoiceNumber(at)
	assert.Regexp(t, `^INV-1700000000123-[0-9A-F]{8}$`, n)

	// The random suffix keeps same-millisecond numbers distinct.
	assert.NotEqual(t, n, NewInvoiceNumber(at))
}
