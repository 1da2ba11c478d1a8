package core

import "testing"

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"kitten", "sitting", 3},
		{"items", "itmes", 2},
		{"salesorders", "salesorder", 1},
		{"çek", "cek", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			result := levenshteinDistance(tt.a, tt.b)
			if result != tt.expected {
				t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"exportNationalizationSlips", "items", "salesOrders", "arps"}

	t.Run("finds close match", func(t *testing.T) {
		result := FindSimilar("salesOrder", candidates)
		if result != "salesOrders" {
			t.Errorf("FindSimilar = %q, want %q", result, "salesOrders")
		}
	})

	t.Run("returns empty for no close match", func(t *testing.T) {
		result := FindSimilar("zzzzzzzzz", candidates)
		if result != "" {
			t.Errorf("FindSimilar = %q, want empty string", result)
		}
	})

	t.Run("case insensitive matching", func(t *testing.T) {
		result := FindSimilar("ITEMS", candidates)
		if result != "items" {
			t.Errorf("FindSimilar = %q, want %q", result, "items")
		}
	})
}

func TestNameError(t *testing.T) {
	t.Run("with suggestion", func(t *testing.T) {
		err := &NameError{Kind: "entity", Name: "itms", Suggestion: "items"}
		expected := "unknown entity 'itms'. Did you mean 'items'?"
		if err.Error() != expected {
			t.Errorf("Error() = %q, want %q", err.Error(), expected)
		}
	})

	t.Run("without suggestion", func(t *testing.T) {
		err := &NameError{Kind: "operation", Name: "Frobnicate"}
		expected := "unknown operation 'Frobnicate'"
		if err.Error() != expected {
			t.Errorf("Error() = %q, want %q", err.Error(), expected)
		}
	})
}
