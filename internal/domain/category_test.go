package domain

import "testing"

func TestCategoryTypeValid(t *testing.T) {
	tests := []struct {
		value CategoryType
		want  bool
	}{
		{CategoryTypeIncome, true},
		{CategoryTypeExpense, true},
		{"Income", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := tt.value.Valid(); got != tt.want {
			t.Errorf("CategoryType(%q).Valid() = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestValidColor(t *testing.T) {
	tests := []struct {
		color string
		want  bool
	}{
		{"#28a745", true},
		{"#ABCDEF", true},
		{"28a745", false},
		{"#28a74", false},
		{"#28a7455", false},
		{"#zzzzzz", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidColor(tt.color); got != tt.want {
			t.Errorf("ValidColor(%q) = %v, want %v", tt.color, got, tt.want)
		}
	}
}

func TestDefaultCategories(t *testing.T) {
	if len(DefaultCategories) != 9 {
		t.Fatalf("Expected 9 default categories, got %d", len(DefaultCategories))
	}

	seen := make(map[string]bool)
	var income int
	for _, seed := range DefaultCategories {
		if seen[seed.Name] {
			t.Errorf("Duplicate default category %s", seed.Name)
		}
		seen[seed.Name] = true
		if !seed.Type.Valid() || !ValidColor(seed.Color) {
			t.Errorf("Invalid default category %+v", seed)
		}
		if seed.Type == CategoryTypeIncome {
			income++
		}
	}
	if income != 3 {
		t.Errorf("Expected 3 income defaults, got %d", income)
	}
}
