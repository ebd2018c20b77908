package storage

import "testing"

func TestFolderKey(t *testing.T) {
	cases := []struct {
		name     string
		fullName string
		waNumber string
		want     string
	}{
		{"plain name", "Ravi Kumar", "919876543210", "ravi_kumar_919876543210/"},
		{"extra whitespace", "  Asha  Mehta ", "911234567890", "asha__mehta_911234567890/"},
		{"unsafe characters stripped", "José O'Brien!", "15551234567", "jos_obrien_15551234567/"},
		{"empty name falls back", "", "919999999999", "customer_919999999999/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FolderKey(tc.fullName, tc.waNumber); got != tc.want {
				t.Errorf("FolderKey(%q, %q) = %q, want %q", tc.fullName, tc.waNumber, got, tc.want)
			}
		})
	}
}
