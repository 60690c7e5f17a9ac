package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0", FormatMoney(0))
	assert.Equal(t, "900", FormatMoney(900))
	assert.Equal(t, "1,500", FormatMoney(1500))
	assert.Equal(t, "1,500,000", FormatMoney(1500000))
	assert.Equal(t, "-42,000", FormatMoney(-42000))

	// Fractions are dropped.
	assert.Equal(t, "1,200", FormatMoney(1200.4))
}
