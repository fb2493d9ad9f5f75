package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	msg := MessageContext{
		User:    User{ID: 42, Username: "gm", FirstName: "Ana"},
		Chat:    Chat{ID: -100, Type: "group"},
		Text:    "/roll d20",
		Command: "roll",
	}

	t.Run("Empty Allows", func(t *testing.T) {
		f, err := NewFilter("  ")
		require.NoError(t, err)
		ok, err := f.Allow(msg)
		assert.NoError(t, err)
		assert.True(t, ok)

		var nilFilter *Filter
		ok, err = nilFilter.Allow(msg)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Boolean Expressions", func(t *testing.T) {
		cases := map[string]bool{
			"true":                         true,
			"user.username == 'gm'":        true,
			"chat.type == 'private'":       false,
			"command in ['roll', 'vars']":  true,
			"text.startsWith('/calc')":     false,
			"user.id == 42 && chat.id < 0": true,
			"user.first_name.size() > 10":  false,
		}
		for expr, want := range cases {
			f, err := NewFilter(expr)
			require.NoError(t, err, expr)
			got, err := f.Allow(msg)
			require.NoError(t, err, expr)
			assert.Equal(t, want, got, expr)
		}
	})

	t.Run("Non Bool Result", func(t *testing.T) {
		f, err := NewFilter("user.id + 1")
		require.NoError(t, err)
		_, err = f.Allow(msg)
		assert.ErrorIs(t, err, ErrNotBool)
	})

	t.Run("Compile Error", func(t *testing.T) {
		_, err := NewFilter("user.")
		assert.Error(t, err)

		_, err = NewFilter("unknown_var == 1")
		assert.Error(t, err)
	})
}

func TestRollFunction(t *testing.T) {
	roll := func(s string) (int, error) {
		if s == "1d20" {
			return 15, nil
		}
		return 0, errors.New("bad dice")
	}
	r, err := NewRegistry(roll)
	require.NoError(t, err)

	f, err := r.Compile("roll('1d20') >= 10")
	require.NoError(t, err)
	ok, err := f.Allow(MessageContext{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "roll('1d20') >= 10", f.String())

	f, err = r.Compile("roll('xyz') > 0")
	require.NoError(t, err)
	_, err = f.Allow(MessageContext{})
	assert.Error(t, err)

	_, err = NewFilter("roll('1d20') > 0")
	assert.Error(t, err, "roll is only declared when a roller is given")
}
