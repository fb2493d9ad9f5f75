package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/rolldice/internal/dice"
)

func TestCompletions(t *testing.T) {
	names := []string{"atk", "atk.bonus", "dmg"}

	assert.Empty(t, completions("", names))
	assert.Equal(t, []string{"vars "}, completions("va", names))
	assert.Equal(t, []string{"unset "}, completions("un", names))
	assert.Equal(t, []string{"atk", "atk.bonus"}, completions("at", names))
	assert.Equal(t, []string{"d20 + atk.bonus"}, completions("d20 + atk.", names))
	assert.Equal(t, []string{"unset dmg"}, completions("unset d", names))
	assert.Empty(t, completions("2d6 + ", names))
}

func TestSample(t *testing.T) {
	engine := dice.NewEngine(dice.WithRoller(dice.NewQueueRoller(1, 2, 3, 3)))
	tree, err := engine.Parse("d6 + 1")
	require.NoError(t, err)

	ticks := 0
	s, err := Sample(engine, tree, 4, func() { ticks++ })
	require.NoError(t, err)
	assert.Equal(t, 4, ticks)
	assert.Equal(t, 2, s.Min)
	assert.Equal(t, 4, s.Max)
	assert.InDelta(t, 3.25, s.Mean, 1e-9)
	assert.Equal(t, map[int]int{2: 1, 3: 1, 4: 2}, s.Counts)

	assert.Equal(t, []string{
		"   2  25.00% ██",
		"   3  25.00% ██",
		"   4  50.00% ████",
	}, s.Histogram(4))

	_, err = Sample(engine, dice.Name{Name: "nope"}, 1, nil)
	var nameErr *dice.NameError
	assert.ErrorAs(t, err, &nameErr)
}
