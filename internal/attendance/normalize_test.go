package attendance

import "testing"

func TestRemoveDiacritics(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Honza", "Honza"},
		{"Jiří", "Jiri"},
		{"café", "cafe"},
		{"naïve", "naive"},
		{"Žluťoučký kůň", "Zlutoucky kun"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := RemoveDiacritics(tt.input)
			if result != tt.expected {
				t.Errorf("RemoveDiacritics(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Jan Novák", "jan novak"},
		{"jan-novak", "jan novak"},
		{"JOHN  DOE ", "john doe"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := NormalizeName(tt.input); result != tt.expected {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{" A1 ", "A1"},
		{"Jiři", "Jiři"},
		{"a1", "a1"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := NormalizeID(tt.input); result != tt.expected {
				t.Errorf("NormalizeID(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFindUser(t *testing.T) {
	roster := []User{
		{ID: "A1", Name: "Alice Nováková"},
		{ID: "B2", Name: "Bob"},
	}

	tests := []struct {
		query  string
		wantID string
		found  bool
	}{
		{"A1", "A1", true},
		{" B2", "B2", true},
		{"alice novakova", "A1", true},
		{"ALICE-NOVÁKOVÁ", "A1", true},
		{"a1", "", false},
		{"Carol", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			u, ok := FindUser(roster, tt.query)
			if ok != tt.found || u.ID != tt.wantID {
				t.Errorf("FindUser(%q) = %q, %v; want %q, %v", tt.query, u.ID, ok, tt.wantID, tt.found)
			}
		})
	}
}
