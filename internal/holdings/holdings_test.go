package holdings

import (
	"context"
	"errors"
	"testing"
)

func TestBaseCallNumber(t *testing.T) {
	tests := []struct {
		call     string
		expected string
	}{
		{"M100 A", "M100"},
		{"M100 B", "M100"},
		{"M100A", "M100"},
		{"DVD123 T", "DVD123"},
		{"xfe 1234", "XFE 1234"},
		{"XFE 1234 R", "XFE 1234"},
		{"M100", "M100"},
		{"XFE", "XFE"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := BaseCallNumber(tt.call); got != tt.expected {
			t.Errorf("BaseCallNumber(%q): expected %q, got %q", tt.call, tt.expected, got)
		}
	}
}

func TestReconcileExactMatch(t *testing.T) {
	items := []Item{
		{InventoryNumber: "XFE1234", CallNumber: "xfe 1234", Location: "ftva"},
		{InventoryNumber: "DVD99", CallNumber: "DVD 99", Location: "ftva"},
	}

	searchCalled := false
	r := NewReconciler(func(ctx context.Context, query string, scope Scope) ([]Item, error) {
		searchCalled = true
		return nil, nil
	}, Scope{Library: "ftva"})

	result, err := r.Reconcile(context.Background(), "XFE 1234", items)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	single, ok := result.Single()
	if !ok {
		t.Fatalf("Expected single match, got %+v", result)
	}
	if single.InventoryNumber != "XFE1234" {
		t.Errorf("Expected XFE1234, got %s", single.InventoryNumber)
	}
	if searchCalled {
		t.Error("Refinement search must not run when an exact match exists")
	}
	if result.Refined || result.RefinementQuery != "" {
		t.Errorf("Expected no refinement diagnostics, got %+v", result)
	}
}

func TestReconcileSuffixDisambiguation(t *testing.T) {
	items := []Item{
		{InventoryNumber: "M100 A", CallNumber: "M100 A"},
		{InventoryNumber: "M100 B", CallNumber: "M100 B"},
	}

	r := NewReconciler(nil, Scope{})
	result, err := r.Reconcile(context.Background(), "M100", items)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !result.IsAmbiguous() {
		t.Fatalf("Expected ambiguous result, got %+v", result)
	}
	if len(result.Matched) != 2 {
		t.Errorf("Expected both suffixed items, got %d", len(result.Matched))
	}
}

func TestReconcileManySuffixCandidates(t *testing.T) {
	// More than two candidates sharing a base are returned the same
	// way as a two-candidate set.
	items := []Item{
		{InventoryNumber: "M100 A", CallNumber: "M100 A"},
		{InventoryNumber: "M100 B", CallNumber: "M100 B"},
		{InventoryNumber: "M100 C", CallNumber: "M100 C"},
	}

	r := NewReconciler(nil, Scope{})
	result, err := r.Reconcile(context.Background(), "M100", items)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Matched) != 3 {
		t.Errorf("Expected all 3 candidates, got %d", len(result.Matched))
	}
}

func TestReconcileSingleSuffixMatch(t *testing.T) {
	items := []Item{
		{InventoryNumber: "VA456", CallNumber: "VA456 M"},
		{InventoryNumber: "DVD1", CallNumber: "DVD1"},
	}

	r := NewReconciler(nil, Scope{})
	result, err := r.Reconcile(context.Background(), "VA456", items)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	single, ok := result.Single()
	if !ok {
		t.Fatalf("Expected single match, got %+v", result)
	}
	if single.InventoryNumber != "VA456" {
		t.Errorf("Expected VA456, got %s", single.InventoryNumber)
	}
}

func TestReconcileRefinement(t *testing.T) {
	t.Run("refined single match", func(t *testing.T) {
		var gotQuery string
		var gotScope Scope
		r := NewReconciler(func(ctx context.Context, query string, scope Scope) ([]Item, error) {
			gotQuery = query
			gotScope = scope
			return []Item{
				{InventoryNumber: "XFE789", CallNumber: "XFE789 R", Location: "ftva"},
			}, nil
		}, Scope{Library: "ftva"})

		result, err := r.Reconcile(context.Background(), "XFE789", nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		single, ok := result.Single()
		if !ok {
			t.Fatalf("Expected single refined match, got %+v", result)
		}
		if single.InventoryNumber != "XFE789" {
			t.Errorf("Expected XFE789, got %s", single.InventoryNumber)
		}
		if !result.Refined {
			t.Error("Expected refinement diagnostics to be populated")
		}
		if result.RefinementQuery != "XFE789" || gotQuery != "XFE789" {
			t.Errorf("Expected query XFE789, got result=%q search=%q", result.RefinementQuery, gotQuery)
		}
		if gotScope.Library != "ftva" {
			t.Errorf("Expected search scoped to ftva, got %q", gotScope.Library)
		}
	})

	t.Run("refined no match keeps query for diagnostics", func(t *testing.T) {
		r := NewReconciler(func(ctx context.Context, query string, scope Scope) ([]Item, error) {
			return nil, nil
		}, Scope{Library: "ftva"})

		result, err := r.Reconcile(context.Background(), "ZVB42", nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !result.IsNoMatch() {
			t.Fatalf("Expected no match, got %+v", result)
		}
		if result.RefinementQuery != "ZVB42" {
			t.Errorf("Expected refinement query ZVB42, got %q", result.RefinementQuery)
		}
	})

	t.Run("search failure propagates", func(t *testing.T) {
		searchErr := errors.New("index unavailable")
		r := NewReconciler(func(ctx context.Context, query string, scope Scope) ([]Item, error) {
			return nil, searchErr
		}, Scope{})

		_, err := r.Reconcile(context.Background(), "M1", nil)
		if !errors.Is(err, searchErr) {
			t.Errorf("Expected wrapped search error, got %v", err)
		}
	})

	t.Run("nil search func skips refinement", func(t *testing.T) {
		r := NewReconciler(nil, Scope{})
		result, err := r.Reconcile(context.Background(), "M1", nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !result.IsNoMatch() || result.Refined {
			t.Errorf("Expected plain no-match, got %+v", result)
		}
		if result.RefinementQuery != "M1" {
			t.Errorf("Expected attempted query recorded, got %q", result.RefinementQuery)
		}
	})
}
