package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnchorEdges(t *testing.T) {
	assert.ElementsMatch(t, []Edge{EdgeLeft, EdgeRight, EdgeTop, EdgeBottom}, AnchorEdges("fill"))
	assert.Contains(t, AnchorEdges("left"), EdgeLeft)
	assert.NotContains(t, AnchorEdges("left"), EdgeRight)
	assert.NotContains(t, AnchorEdges("top"), EdgeBottom)
	assert.Nil(t, AnchorEdges("center"))
}
