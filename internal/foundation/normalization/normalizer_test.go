package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color string

func newColors() *Normalizer[color] {
	return NewNormalizer("color", map[string]color{
		"red":    "red",
		"r":      "red",
		"Blue":   "blue",
	}, "red")
}

func TestNormalize(t *testing.T) {
	n := newColors()
	assert.Equal(t, color("blue"), n.Normalize("  BLUE "))
	assert.Equal(t, color("red"), n.Normalize("R"))
	assert.Equal(t, color("red"), n.Normalize("green"))
}

func TestParse(t *testing.T) {
	n := newColors()

	v, err := n.Parse("blue")
	require.NoError(t, err)
	assert.Equal(t, color("blue"), v)

	v, err = n.Parse("")
	require.NoError(t, err)
	assert.Equal(t, color("red"), v)

	_, err = n.Parse("green")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid color "green"`)
	assert.Contains(t, err.Error(), "blue, r, red")
}

func TestValidKeysIsCopy(t *testing.T) {
	n := newColors()
	keys := n.ValidKeys()
	keys[0] = "mutated"
	assert.Equal(t, []string{"blue", "r", "red"}, n.ValidKeys())
}
