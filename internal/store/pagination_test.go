package store

import "testing"

func TestClampLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int64
	}{
		{-5, defaultPageSize},
		{0, defaultPageSize},
		{1, 1},
		{20, 20},
		{100, 100},
		{150, maxPageSize},
	}
	for _, tc := range cases {
		if got := clampLimit(tc.in); got != tc.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestClampPage(t *testing.T) {
	if got := clampPage(0); got != 1 {
		t.Errorf("clampPage(0) = %d, want 1", got)
	}
	if got := clampPage(-3); got != 1 {
		t.Errorf("clampPage(-3) = %d, want 1", got)
	}
	if got := clampPage(7); got != 7 {
		t.Errorf("clampPage(7) = %d, want 7", got)
	}
}

func TestNewPagination(t *testing.T) {
	p := newPagination(2, 20, 45)
	if p.TotalPages != 3 {
		t.Fatalf("TotalPages = %d, want 3", p.TotalPages)
	}
	if !p.HasNextPage || !p.HasPrevPage {
		t.Fatalf("page 2 of 3 should have both neighbours, got next=%v prev=%v", p.HasNextPage, p.HasPrevPage)
	}

	first := newPagination(1, 20, 45)
	if first.HasPrevPage {
		t.Fatal("first page should not report a previous page")
	}
	last := newPagination(3, 20, 45)
	if last.HasNextPage {
		t.Fatal("last page should not report a next page")
	}

	empty := newPagination(1, 20, 0)
	if empty.TotalPages != 0 || empty.HasNextPage {
		t.Fatalf("empty result: TotalPages = %d, HasNextPage = %v", empty.TotalPages, empty.HasNextPage)
	}

	exact := newPagination(2, 10, 20)
	if exact.TotalPages != 2 {
		t.Fatalf("TotalPages = %d, want 2 for an exact multiple", exact.TotalPages)
	}
	if exact.HasNextPage {
		t.Fatal("final exact page should not report a next page")
	}
}

func TestPaginationBeyondLastPage(t *testing.T) {
	p := newPagination(9, 20, 45)
	if p.HasNextPage {
		t.Fatal("page beyond the end should not report a next page")
	}
	if !p.HasPrevPage {
		t.Fatal("page beyond the end should still report a previous page")
	}
}
