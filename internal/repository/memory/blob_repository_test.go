package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobRepository_SaveGetDelete(t *testing.T) {
	repo := NewBlobRepository()

	_, found := repo.Get("a.pdf")
	assert.False(t, found)

	repo.Save("a.pdf", []byte("%PDF-1.4"))
	data, found := repo.Get("a.pdf")
	require.True(t, found)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	repo.Delete("a.pdf")
	_, found = repo.Get("a.pdf")
	assert.False(t, found)
}

func TestBlobRepository_Flush(t *testing.T) {
	repo := NewBlobRepository()
	repo.Save("a.pdf", []byte("a"))
	repo.Save("b.pdf", []byte("b"))

	repo.Flush()

	_, foundA := repo.Get("a.pdf")
	_, foundB := repo.Get("b.pdf")
	assert.False(t, foundA)
	assert.False(t, foundB)
}
