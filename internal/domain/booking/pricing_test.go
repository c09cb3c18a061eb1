package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardRateCalculator_Total(t *testing.T) {
	calc := NewStandardRateCalculator()

	t.Run("charges per inclusive day", func(t *testing.T) {
		total, err := calc.Total(100_00, mustWindow(t, 10, 12))
		require.NoError(t, err)
		assert.Equal(t, int64(300_00), total)
	})

	t.Run("single night is two days", func(t *testing.T) {
		total, err := calc.Total(100_00, mustWindow(t, 10, 11))
		require.NoError(t, err)
		assert.Equal(t, int64(200_00), total)
	})

	t.Run("zero rate", func(t *testing.T) {
		total, err := calc.Total(0, mustWindow(t, 10, 20))
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("negative rate rejected", func(t *testing.T) {
		_, err := calc.Total(-1, mustWindow(t, 10, 20))
		assert.Error(t, err)
	})
}
