package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CollectedData is the structured information gathered over the course of a
// conversation. Known fields are typed; anything else the extractor produces
// lands in Extra. PendingDocuments is the ordered checklist of document types
// the customer still has to send (front = next one to ask for). It must not
// carry omitempty: an explicitly empty list means "nothing left", which is
// different from "not yet computed" (nil).
type CollectedData struct {
	FullName                string  `json:"full_name,omitempty"`
	City                    string  `json:"city,omitempty"`
	Email                   string  `json:"email,omitempty"`
	MonthlyIncome           float64 `json:"monthly_income,omitempty"`
	EmploymentType          string  `json:"employment_type,omitempty"`
	EmployerName            string  `json:"employer_name,omitempty"`
	LoanAmountRequired      float64 `json:"loan_amount_required,omitempty"`
	LoanPurpose             string  `json:"loan_purpose,omitempty"`
	PropertyLocation        string  `json:"property_location,omitempty"`
	PropertyValue           float64 `json:"property_value,omitempty"`
	PropertyStatus          string  `json:"property_status,omitempty"`
	VehicleType             string  `json:"vehicle_type,omitempty"`
	VehicleMakeModel        string  `json:"vehicle_make_model,omitempty"`
	VehicleCost             float64 `json:"vehicle_cost,omitempty"`
	StudentName             string  `json:"student_name,omitempty"`
	CourseName              string  `json:"course_name,omitempty"`
	InstitutionName         string  `json:"institution_name,omitempty"`
	InstitutionType         string  `json:"institution_type,omitempty"`
	TotalCourseFee          float64 `json:"total_course_fee,omitempty"`
	ParentMonthlyIncome     float64 `json:"parent_monthly_income,omitempty"`
	CurrentCreditScore      float64 `json:"current_credit_score,omitempty"`
	TotalOutstandingDebt    float64 `json:"total_outstanding_debt,omitempty"`
	NumberOfOverdueAccounts float64 `json:"number_of_overdue_accounts,omitempty"`
	ReasonForPoorScore      string  `json:"reason_for_poor_score,omitempty"`
	CoApplicantName         string  `json:"co_applicant_name,omitempty"`
	DownPaymentAmount       float64 `json:"down_payment_amount,omitempty"`

	Extra            map[string]string `json:"extra,omitempty"`
	PendingDocuments []string          `json:"pending_documents"`
}

// stringFields and numberFields enumerate the typed fields by their wire name.
// Kept next to the struct so additions stay in one place.
var stringFields = []string{
	"full_name", "city", "email", "employment_type", "employer_name",
	"loan_purpose", "property_location", "property_status", "vehicle_type",
	"vehicle_make_model", "student_name", "course_name", "institution_name",
	"institution_type", "reason_for_poor_score", "co_applicant_name",
}

var numberFields = []string{
	"monthly_income", "loan_amount_required", "property_value", "vehicle_cost",
	"total_course_fee", "parent_monthly_income", "current_credit_score",
	"total_outstanding_debt", "number_of_overdue_accounts", "down_payment_amount",
}

// enumFields restricts the values certain extracted fields may take; anything
// else is dropped rather than merged.
var enumFields = map[string][]string{
	"employment_type":  {"salaried", "self_employed", "business_owner"},
	"property_status":  {"under_construction", "ready", "plot"},
	"vehicle_type":     {"new", "used"},
	"institution_type": {"india", "abroad"},
}

func (d *CollectedData) stringField(name string) *string {
	switch name {
	case "full_name":
		return &d.FullName
	case "city":
		return &d.City
	case "email":
		return &d.Email
	case "employment_type":
		return &d.EmploymentType
	case "employer_name":
		return &d.EmployerName
	case "loan_purpose":
		return &d.LoanPurpose
	case "property_location":
		return &d.PropertyLocation
	case "property_status":
		return &d.PropertyStatus
	case "vehicle_type":
		return &d.VehicleType
	case "vehicle_make_model":
		return &d.VehicleMakeModel
	case "student_name":
		return &d.StudentName
	case "course_name":
		return &d.CourseName
	case "institution_name":
		return &d.InstitutionName
	case "institution_type":
		return &d.InstitutionType
	case "reason_for_poor_score":
		return &d.ReasonForPoorScore
	case "co_applicant_name":
		return &d.CoApplicantName
	}
	return nil
}

func (d *CollectedData) numberField(name string) *float64 {
	switch name {
	case "monthly_income":
		return &d.MonthlyIncome
	case "loan_amount_required":
		return &d.LoanAmountRequired
	case "property_value":
		return &d.PropertyValue
	case "vehicle_cost":
		return &d.VehicleCost
	case "total_course_fee":
		return &d.TotalCourseFee
	case "parent_monthly_income":
		return &d.ParentMonthlyIncome
	case "current_credit_score":
		return &d.CurrentCreditScore
	case "total_outstanding_debt":
		return &d.TotalOutstandingDebt
	case "number_of_overdue_accounts":
		return &d.NumberOfOverdueAccounts
	case "down_payment_amount":
		return &d.DownPaymentAmount
	}
	return nil
}

// Has reports whether a field (by wire name) carries a value. Matches the
// truthiness semantics the stage preconditions rely on: empty strings and
// zero numbers count as absent.
func (d *CollectedData) Has(name string) bool {
	if p := d.stringField(name); p != nil {
		return *p != ""
	}
	if p := d.numberField(name); p != nil {
		return *p != 0
	}
	return d.Extra[name] != ""
}

// HasAll reports whether every named field is present.
func (d *CollectedData) HasAll(names []string) bool {
	for _, n := range names {
		if !d.Has(n) {
			return false
		}
	}
	return true
}

// HasPersonalInfo reports whether the basic profile fields are complete.
func (d *CollectedData) HasPersonalInfo() bool {
	return d.HasAll([]string{"full_name", "city", "monthly_income", "employment_type"})
}

// Merge overlays src onto d field by field, last write wins. Absent (zero)
// fields in src change nothing, so merging the same extraction twice is a
// no-op after the first. PendingDocuments is never taken from src; it is
// owned by the document tracker.
func (d CollectedData) Merge(src CollectedData) CollectedData {
	out := d
	for _, name := range stringFields {
		if v := *src.stringField(name); v != "" {
			*out.stringField(name) = v
		}
	}
	for _, name := range numberFields {
		if v := *src.numberField(name); v != 0 {
			*out.numberField(name) = v
		}
	}
	if len(src.Extra) > 0 {
		merged := make(map[string]string, len(d.Extra)+len(src.Extra))
		for k, v := range d.Extra {
			merged[k] = v
		}
		for k, v := range src.Extra {
			merged[k] = v
		}
		out.Extra = merged
	}
	return out
}

// DecodeExtraction turns the untrusted JSON object returned by the generation
// collaborator into a CollectedData value. Field types are validated one by
// one; malformed or unknown-typed values are dropped instead of corrupting
// state. Unknown scalar keys are preserved in Extra. A reserved
// pending_documents key is ignored outright.
func DecodeExtraction(raw []byte) CollectedData {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return CollectedData{}
	}
	return coerceExtraction(payload)
}

func coerceExtraction(payload map[string]any) CollectedData {
	var out CollectedData
	for key, value := range payload {
		if key == "pending_documents" {
			continue
		}
		if p := out.stringField(key); p != nil {
			s, ok := asString(value)
			if !ok || s == "" {
				continue
			}
			if allowed, restricted := enumFields[key]; restricted && !contains(allowed, s) {
				continue
			}
			*p = s
			continue
		}
		if p := out.numberField(key); p != nil {
			if n, ok := asNumber(value); ok && n != 0 {
				*p = n
			}
			continue
		}
		if s, ok := asString(value); ok && s != "" {
			if out.Extra == nil {
				out.Extra = make(map[string]string)
			}
			out.Extra[key] = s
		}
	}
	return out
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
