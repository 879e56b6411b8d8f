package check

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPercent(t *testing.T) {
	assert.True(t, Percent(d("100"), d("110")).Equal(d("10")))
	assert.True(t, Percent(d("100"), d("95")).Equal(d("-5")))
	assert.True(t, Percent(d("100"), d("100")).IsZero())
}

func TestCanClose_FavorableMove(t *testing.T) {
	t.Run("break even with thresholds disabled", func(t *testing.T) {
		ok, err := CanClose(d("100"), d("100"), 0, 0)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("any gain acceptable without take profit", func(t *testing.T) {
		ok, err := CanClose(d("100"), d("100.01"), 0, 0)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("take profit demands the minimum gain", func(t *testing.T) {
		ok, err := CanClose(d("100"), d("101"), 2, 0)
		assert.NoError(t, err)
		assert.False(t, ok)

		ok, err = CanClose(d("100"), d("102"), 2, 0)
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = CanClose(d("100"), d("103"), 2, 0)
		assert.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestCanClose_UnfavorableMove(t *testing.T) {
	t.Run("never force close without stop loss", func(t *testing.T) {
		ok, err := CanClose(d("100"), d("50"), 0, 0)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("loss within stop loss closes", func(t *testing.T) {
		// reference 105, candidate 100: loss magnitude is exactly 5%.
		ok, err := CanClose(d("105"), d("100"), 0, 5)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("loss beyond stop loss stays open", func(t *testing.T) {
		ok, err := CanClose(d("106"), d("100"), 0, 5)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCanClose_RejectsNonPositivePrices(t *testing.T) {
	_, err := CanClose(d("0"), d("100"), 0, 0)
	assert.Error(t, err)

	_, err = CanClose(d("100"), d("-1"), 0, 0)
	assert.Error(t, err)
}
