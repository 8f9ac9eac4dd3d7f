package pagination

import "testing"

func TestNormalizeDefaults(t *testing.T) {
	n := Params{}.Normalize()
	if n.Page != 1 || n.PageSize != DefaultPageSize {
		t.Fatalf("unexpected defaults: %+v", n)
	}

	n = Params{Page: -3, PageSize: 5000}.Normalize()
	if n.Page != 1 || n.PageSize != MaxPageSize {
		t.Fatalf("expected clamped params, got %+v", n)
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 3, PageSize: 10}).Offset(); got != 20 {
		t.Fatalf("expected offset 20, got %d", got)
	}
}

func TestSliceClampsToCollection(t *testing.T) {
	start, end := Slice(7, Params{Page: 1, PageSize: 5})
	if start != 0 || end != 5 {
		t.Fatalf("unexpected window [%d,%d)", start, end)
	}

	start, end = Slice(7, Params{Page: 2, PageSize: 5})
	if start != 5 || end != 7 {
		t.Fatalf("unexpected window [%d,%d)", start, end)
	}

	start, end = Slice(7, Params{Page: 9, PageSize: 5})
	if start != 7 || end != 7 {
		t.Fatalf("expected empty window, got [%d,%d)", start, end)
	}
}
