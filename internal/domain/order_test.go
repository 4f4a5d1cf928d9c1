package domain

import "testing"

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"pending", "paid", "shipped", "cancelled"} {
		status, err := ParseStatus(raw)
		if err != nil {
			t.Fatalf("ParseStatus(%q): %v", raw, err)
		}
		if string(status) != raw {
			t.Fatalf("ParseStatus(%q) = %q", raw, status)
		}
	}

	if _, err := ParseStatus("teleported"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories() {
		if !c.Valid() {
			t.Fatalf("category %q should be valid", c)
		}
	}
	if Category("No existe").Valid() {
		t.Fatal("unknown category should not be valid")
	}
}
