package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bastiangx/swipeserve/pkg/config"
	"github.com/bastiangx/swipeserve/pkg/decoder"
	"github.com/bastiangx/swipeserve/pkg/dictionary"
	"github.com/bastiangx/swipeserve/pkg/gesture"
	"github.com/bastiangx/swipeserve/pkg/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T, input string) (*InputHandler, *bytes.Buffer) {
	t.Helper()
	idx := dictionary.Build([]string{"the", "hello", "help", "hell", "held", "hole"})
	dec := decoder.New(idx, decoder.DefaultContractions(), decoder.DefaultParams())
	var out bytes.Buffer
	h, err := NewInputHandler(dec, config.DefaultConfig(), "", 3, strings.NewReader(input), &out)
	require.NoError(t, err)
	return h, &out
}

func TestSwipesTypedWords(t *testing.T) {
	h, out := newHandler(t, "hello\n:grid\n:scores\nhello")
	require.NoError(t, h.Start())

	text := out.String()
	assert.Contains(t, text, "layout: ring")
	assert.Contains(t, text, "layout: grid")
	assert.Equal(t, 2, strings.Count(text, "Found"))
	assert.Regexp(t, `1\. \S*hello`, text)
	assert.Contains(t, text, "score:")
	assert.Equal(t, config.LayoutGrid, h.layoutKind)
}

func TestRejectsBadInput(t *testing.T) {
	h, out := newHandler(t, "h3llo\n:dvorak\n\n:loop\n")
	require.NoError(t, h.Start())

	text := out.String()
	assert.Contains(t, text, "Not a word: h3llo")
	assert.Contains(t, text, "Unknown command: dvorak")
	assert.Contains(t, text, "loop doubles: true")
	assert.Equal(t, config.LayoutRing, h.layoutKind)
}

func TestUnknownStartLayout(t *testing.T) {
	_, err := NewInputHandler(nil, config.DefaultConfig(), "hexagon", 3, strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorIs(t, err, config.ErrUnknownLayout)
}

func TestHitString(t *testing.T) {
	hits := []gesture.WeightedKeyHit{
		{Key: keys.KeyDescriptor{Char: 'q'}, Weight: 1},
		{Key: keys.KeyDescriptor{Char: 'w'}, Weight: 0.15},
		{Key: keys.KeyDescriptor{Char: 'e'}, Weight: 0.6},
	}
	assert.Equal(t, "QwE", hitString(hits))
	assert.Empty(t, hitString(nil))
}
