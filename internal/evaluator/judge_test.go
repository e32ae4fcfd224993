package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJudgeCheaper(t *testing.T) {
	diff, cheaper := Judge(2500, 2600)
	assert.Equal(t, 3.8, diff)
	assert.True(t, cheaper)
}

func TestJudgeMoreExpensive(t *testing.T) {
	diff, cheaper := Judge(3000, 2600)
	assert.Equal(t, 15.4, diff)
	assert.False(t, cheaper)

	assert.GreaterOrEqual(t, diff, 0.0)
}

func TestJudgeEqualPricesAreNotCheaper(t *testing.T) {
	diff, cheaper := Judge(2600, 2600)
	assert.Equal(t, 0.0, diff)
	assert.False(t, cheaper)
}
