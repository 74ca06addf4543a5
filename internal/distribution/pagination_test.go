package distribution

import (
	"errors"
	"testing"
)

func TestPageBounds(t *testing.T) {
	tests := []struct {
		page, pageSize uint64
		wantStart      uint64
		wantEnd        uint64
	}{
		{1, 10, 0, 10},
		{2, 10, 10, 20},
		{5, 3, 12, 15},
	}

	for _, tt := range tests {
		start, end, err := PageBounds(tt.page, tt.pageSize)
		if err != nil {
			t.Fatalf("PageBounds(%d, %d) failed: %v", tt.page, tt.pageSize, err)
		}
		if start != tt.wantStart || end != tt.wantEnd {
			t.Errorf("PageBounds(%d, %d) = (%d, %d), want (%d, %d)",
				tt.page, tt.pageSize, start, end, tt.wantStart, tt.wantEnd)
		}
	}
}

func TestPageBounds_PageZeroInvalid(t *testing.T) {
	if _, _, err := PageBounds(0, 10); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("expected ErrInvalidPage for page 0, got %v", err)
	}
	if _, _, err := PageBounds(1, 0); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("expected ErrInvalidPage for page size 0, got %v", err)
	}
}

func TestIsLastPage(t *testing.T) {
	tests := []struct {
		page, pageSize, total uint64
		want                  bool
	}{
		{1, 10, 5, true},   // single short page
		{1, 10, 10, true},  // exact fit
		{1, 10, 11, false}, // one spills to page 2
		{2, 10, 11, true},
		{2, 10, 25, false},
		{3, 10, 25, true},
	}

	for _, tt := range tests {
		got, err := IsLastPage(tt.page, tt.pageSize, tt.total)
		if err != nil {
			t.Fatalf("IsLastPage failed: %v", err)
		}
		if got != tt.want {
			t.Errorf("IsLastPage(%d, %d, %d) = %t, want %t", tt.page, tt.pageSize, tt.total, got, tt.want)
		}
	}
}

func TestPageItemCount(t *testing.T) {
	tests := []struct {
		page, pageSize, total uint64
		want                  uint64
	}{
		{1, 10, 25, 10},
		{2, 10, 25, 10},
		{3, 10, 25, 5},
		{4, 10, 25, 0}, // past the end
		{1, 10, 0, 0},
	}

	for _, tt := range tests {
		got, err := PageItemCount(tt.page, tt.pageSize, tt.total)
		if err != nil {
			t.Fatalf("PageItemCount failed: %v", err)
		}
		if got != tt.want {
			t.Errorf("PageItemCount(%d, %d, %d) = %d, want %d", tt.page, tt.pageSize, tt.total, got, tt.want)
		}
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, pageSize uint64
		want            uint64
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
	}

	for _, tt := range tests {
		if got := PageCount(tt.total, tt.pageSize); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tt.total, tt.pageSize, got, tt.want)
		}
	}
}
