package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type gadget struct{}

func TestLinksFirstAttachmentWins(t *testing.T) {
	l := NewLinks[widget, gadget]()
	from := HandleAt[widget](0)

	assert.False(t, l.Has(from))
	assert.True(t, l.Add(from, HandleAt[gadget](1)))
	assert.False(t, l.Add(from, HandleAt[gadget](2)))

	to, ok := l.Borrow(from)
	assert.True(t, ok)
	assert.Equal(t, HandleAt[gadget](1), to)
	assert.Equal(t, 1, l.Len())
}

func TestLinksBorrowMissing(t *testing.T) {
	l := NewLinks[widget, gadget]()
	_, ok := l.Borrow(HandleAt[widget](9))
	assert.False(t, ok)
}
