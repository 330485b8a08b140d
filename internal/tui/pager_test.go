package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagerMovesAcrossPages(t *testing.T) {
	var p pager
	p.setPerPage(3)
	p.setCount(7)
	assert.Equal(t, 3, p.pages())

	for range 3 {
		p.down()
	}
	assert.Equal(t, 3, p.selected)
	assert.Equal(t, 1, p.page)

	p.up()
	assert.Equal(t, 0, p.page)

	assert.True(t, p.next())
	assert.True(t, p.next())
	start, end := p.window()
	assert.Equal(t, 6, start)
	assert.Equal(t, 7, end)
	assert.Equal(t, 6, p.selected)
	assert.False(t, p.next())
	assert.False(t, p.down())
}

func TestPagerClampsOnShrink(t *testing.T) {
	var p pager
	p.setPerPage(3)
	p.setCount(5)
	for range 4 {
		p.down()
	}
	p.setCount(2)
	assert.Equal(t, 1, p.selected)
	assert.Equal(t, 0, p.page)

	p.setCount(0)
	assert.Equal(t, 0, p.selected)
	assert.Equal(t, 1, p.pages())
	assert.False(t, p.up())
}

func TestPagerMinimumPageSize(t *testing.T) {
	var p pager
	p.setPerPage(-4)
	assert.Equal(t, 3, p.perPage)
}
