package domain

import (
	"strconv"
	"strings"
)

// DocumentBase strips a trailing numeric suffix from a document type, so
// "salary_slip_2" collapses to "salary_slip". Types without a suffix are
// returned unchanged.
func DocumentBase(docType string) string {
	idx := strings.LastIndex(docType, "_")
	if idx < 0 {
		return docType
	}
	if _, err := strconv.Atoi(docType[idx+1:]); err != nil {
		return docType
	}
	return docType[:idx]
}

// DocumentsSatisfy reports whether the uploaded document types cover every
// required type. Matching is tolerant of numeric-suffix variants: an upload
// satisfies a requirement when its type starts with the requirement's base,
// so "salary_slip_1" and "salary_slip_2" both count toward "salary_slip_3".
// Upload order is irrelevant.
func DocumentsSatisfy(required, uploaded []string) bool {
	for _, req := range required {
		base := DocumentBase(req)
		found := false
		for _, up := range uploaded {
			if strings.HasPrefix(up, base) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// NextPendingDocument returns the document type the customer should send
// next, or "" when nothing is pending.
func (d *CollectedData) NextPendingDocument() string {
	if len(d.PendingDocuments) == 0 {
		return ""
	}
	return d.PendingDocuments[0]
}

// PopPendingDocument removes the front entry of the pending list. It never
// reorders and does not verify that the uploaded document actually matches
// the front tag: customers are assumed to send documents in the order asked,
// a known heuristic of the flow. No-op when the list is already empty.
func (d *CollectedData) PopPendingDocument() {
	if len(d.PendingDocuments) == 0 {
		return
	}
	d.PendingDocuments = d.PendingDocuments[1:]
}
