package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	name string
}

func TestPoolAddReturnsDistinctBorrowableHandles(t *testing.T) {
	p := NewPool[widget](0)
	seen := make(map[Handle[widget]]bool)

	for i := 0; i < 100; i++ {
		h := p.Add(widget{name: string(rune('a' + i%26))})
		require.False(t, seen[h], "handle %v issued twice", h)
		seen[h] = true

		w, ok := p.Borrow(h)
		require.True(t, ok)
		assert.Equal(t, string(rune('a'+i%26)), w.name)
	}
	assert.Equal(t, 100, p.Len())
}

func TestPoolBorrowUnknownHandle(t *testing.T) {
	p := NewPool[widget](4)
	p.Add(widget{name: "only"})

	w, ok := p.Borrow(HandleAt[widget](1))
	assert.False(t, ok)
	assert.Nil(t, w)

	_, ok = p.Get(HandleAt[widget](42))
	assert.False(t, ok)

	var nilPool *Pool[widget]
	_, ok = nilPool.Borrow(HandleAt[widget](0))
	assert.False(t, ok)
	assert.Equal(t, 0, nilPool.Len())
}

func TestPoolHandleFromAnotherPool(t *testing.T) {
	big := NewPool[widget](0)
	for i := 0; i < 5; i++ {
		big.Add(widget{})
	}
	foreign := big.Add(widget{name: "foreign"})

	small := NewPool[widget](0)
	small.Add(widget{})

	_, ok := small.Borrow(foreign)
	assert.False(t, ok)
}

func TestPoolBorrowMutates(t *testing.T) {
	p := NewPool[widget](0)
	h := p.Add(widget{name: "before"})

	w, _ := p.Borrow(h)
	w.name = "after"

	got, ok := p.Get(h)
	require.True(t, ok)
	assert.Equal(t, "after", got.name)
}

func TestPoolEach(t *testing.T) {
	p := NewPool[widget](0)
	p.Add(widget{name: "a"})
	p.Add(widget{name: "b"})
	p.Add(widget{name: "c"})

	var names []string
	p.Each(func(_ Handle[widget], w *widget) bool {
		names = append(names, w.name)
		return w.name != "b"
	})
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestHandleString(t *testing.T) {
	assert.Equal(t, "resource.widget#3", HandleAt[widget](3).String())
	assert.Equal(t, 3, HandleAt[widget](3).Index())
}
