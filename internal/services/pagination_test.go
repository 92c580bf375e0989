package services

import "testing"

func TestPageParamsNormalize(t *testing.T) {
	tests := []struct {
		name       string
		in         PageParams
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", PageParams{}, 1, 10, 0},
		{"negative page", PageParams{Page: -3, Limit: 20}, 1, 20, 0},
		{"zero limit", PageParams{Page: 4}, 4, 10, 30},
		{"plain", PageParams{Page: 3, Limit: 25}, 3, 25, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.Page != tt.wantPage || got.Limit != tt.wantLimit {
				t.Fatalf("normalized = %+v, want page %d limit %d", got, tt.wantPage, tt.wantLimit)
			}
			if off := got.Offset(); off != tt.wantOffset {
				t.Fatalf("offset = %d, want %d", off, tt.wantOffset)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{100, 25, 4},
		{5, 0, 0},
	}

	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.limit); got != tt.want {
			t.Fatalf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestPageSliceWindows(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	window, total := pageSlice(items, PageParams{Page: 2, Limit: 3})
	if total != 7 {
		t.Fatalf("total = %d, want 7", total)
	}
	if len(window) != 3 || window[0] != 4 {
		t.Fatalf("window = %v, want [4 5 6]", window)
	}

	// past the end
	window, total = pageSlice(items, PageParams{Page: 5, Limit: 3})
	if total != 7 || len(window) != 0 {
		t.Fatalf("past-end window = %v (total %d), want empty", window, total)
	}

	// last partial page
	window, _ = pageSlice(items, PageParams{Page: 3, Limit: 3})
	if len(window) != 1 || window[0] != 7 {
		t.Fatalf("last page = %v, want [7]", window)
	}
}

func TestNewPagedNeverNilData(t *testing.T) {
	page := NewPaged[string](nil, 0, PageParams{})
	if page.Data == nil {
		t.Fatal("Data must serialize as [], not null")
	}
	if page.Page != 1 || page.Limit != 10 || page.TotalPages != 0 {
		t.Fatalf("page = %+v, want normalized defaults", page)
	}
}
