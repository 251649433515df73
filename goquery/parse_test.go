package goquery

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	const html = `<html><body><p>Parsed once.</p></body></html>`

	first, err := parse(html)
	require.NoError(t, err)
	second, err := parse(html)
	require.NoError(t, err)
	assert.Same(t, first, second)

	for i := 0; i < cacheSize; i++ {
		_, err := parse(fmt.Sprintf("<p>page %d</p>", i))
		require.NoError(t, err)
	}

	third, err := parse(html)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}
