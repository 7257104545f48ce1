package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(1, 20, 20, 45)
	assert.Equal(t, 1, p.Current)
	assert.Equal(t, 3, p.Pages)
	assert.Equal(t, 45, p.Total)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrev)

	p = NewPagination(3, 20, 5, 45)
	assert.Equal(t, 3, p.Pages)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)
}

func TestNewPaginationEmpty(t *testing.T) {
	p := NewPagination(1, 20, 0, 0)
	assert.Equal(t, 0, p.Pages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}

func TestNewPaginationClampsInput(t *testing.T) {
	p := NewPagination(0, 0, 0, 10)
	assert.Equal(t, 1, p.Current)
	assert.True(t, p.HasNext)
}

func TestNewPaginationExactFit(t *testing.T) {
	// Последняя полная страница: дальше ничего нет
	p := NewPagination(2, 10, 10, 20)
	assert.Equal(t, 2, p.Pages)
	assert.False(t, p.HasNext)
}
