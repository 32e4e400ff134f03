package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_BackendIndex(t *testing.T) {
	tests := []struct {
		ui   int
		want int
	}{
		{ui: 1, want: 0},
		{ui: 3, want: 2},
		{ui: 0, want: 0},
		{ui: -4, want: 0},
	}
	for _, tt := range tests {
		got := PageRequest{Page: tt.ui, Size: BrowsePageSize}.BackendIndex()
		assert.Equal(t, tt.want, got, "ui page %d", tt.ui)
	}
}

func TestUIPage(t *testing.T) {
	assert.Equal(t, 1, UIPage(0))
	assert.Equal(t, 3, UIPage(2))
	assert.Equal(t, 1, UIPage(-1))
}
