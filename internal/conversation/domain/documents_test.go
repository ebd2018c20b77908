package domain

import (
	"reflect"
	"testing"
)

func TestDocumentBase(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"salary_slip_1", "salary_slip"},
		{"salary_slip_3", "salary_slip"},
		{"pan_card", "pan_card"},
		{"bank_statement_6mo", "bank_statement_6mo"},
		{"form_16_or_itr", "form_16_or_itr"},
		{"aadhaar_front", "aadhaar_front"},
	}
	for _, tc := range cases {
		if got := DocumentBase(tc.in); got != tc.want {
			t.Errorf("DocumentBase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDocumentsSatisfy(t *testing.T) {
	cases := []struct {
		name     string
		required []string
		uploaded []string
		want     bool
	}{
		{
			name:     "exact match",
			required: []string{"pan_card", "aadhaar_front"},
			uploaded: []string{"aadhaar_front", "pan_card"},
			want:     true,
		},
		{
			name:     "suffix variants count toward base",
			required: []string{"salary_slip_1", "salary_slip_2", "salary_slip_3"},
			uploaded: []string{"salary_slip_2"},
			want:     true,
		},
		{
			name:     "missing requirement",
			required: []string{"pan_card", "credit_report"},
			uploaded: []string{"pan_card"},
			want:     false,
		},
		{
			name:     "no requirements always satisfied",
			required: nil,
			uploaded: nil,
			want:     true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DocumentsSatisfy(tc.required, tc.uploaded); got != tc.want {
				t.Errorf("DocumentsSatisfy(%v, %v) = %v, want %v", tc.required, tc.uploaded, got, tc.want)
			}
		})
	}
}

func TestPopPendingDocument(t *testing.T) {
	d := CollectedData{PendingDocuments: []string{"aadhaar_front", "pan_card"}}

	if got := d.NextPendingDocument(); got != "aadhaar_front" {
		t.Fatalf("NextPendingDocument = %q, want aadhaar_front", got)
	}

	d.PopPendingDocument()
	if !reflect.DeepEqual(d.PendingDocuments, []string{"pan_card"}) {
		t.Fatalf("after pop: %v", d.PendingDocuments)
	}

	d.PopPendingDocument()
	if len(d.PendingDocuments) != 0 || d.PendingDocuments == nil {
		t.Fatalf("list should be explicitly empty, got %#v", d.PendingDocuments)
	}

	d.PopPendingDocument() // no-op on empty
	if d.PendingDocuments == nil {
		t.Fatal("pop on empty list must not reset to nil")
	}

	var fresh CollectedData
	if got := fresh.NextPendingDocument(); got != "" {
		t.Fatalf("NextPendingDocument on nil list = %q, want empty", got)
	}
}

func TestRequiredDocumentsReturnsCopy(t *testing.T) {
	a := RequiredDocuments(ServiceCreditRepair)
	a[0] = "tampered"
	b := RequiredDocuments(ServiceCreditRepair)
	if b[0] == "tampered" {
		t.Fatal("RequiredDocuments leaked its backing array")
	}
}
