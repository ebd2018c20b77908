package domain

// requiredDocuments lists the document types each service needs, in the order
// the customer is asked for them.
var requiredDocuments = map[ServiceType][]string{
	ServicePersonalLoan: {
		"aadhaar_front", "aadhaar_back", "pan_card",
		"salary_slip_1", "salary_slip_2", "salary_slip_3",
		"bank_statement_6mo", "form_16_or_itr",
	},
	ServiceHomeLoan: {
		"aadhaar_front", "aadhaar_back", "pan_card",
		"salary_slip_1", "salary_slip_2", "salary_slip_3",
		"bank_statement_6mo", "form_16_or_itr", "property_document",
	},
	ServiceAutoLoan: {
		"aadhaar_front", "aadhaar_back", "pan_card",
		"salary_slip_1", "salary_slip_2", "salary_slip_3",
		"bank_statement_6mo", "vehicle_quotation_or_rc",
	},
	ServiceEducationLoan: {
		"student_aadhaar", "parent_aadhaar", "parent_pan",
		"admission_letter", "fee_structure", "bank_statement_6mo",
		"parent_salary_slip_or_itr", "marksheet",
	},
	ServiceCreditRepair: {
		"aadhaar_front", "pan_card", "bank_statement_6mo", "credit_report",
	},
}

// requiredFields lists the collected-data fields that must be present before a
// service moves past the service_specific_info stage.
var requiredFields = map[ServiceType][]string{
	ServicePersonalLoan: {
		"full_name", "city", "monthly_income", "employment_type",
		"employer_name", "loan_amount_required", "loan_purpose",
	},
	ServiceHomeLoan: {
		"full_name", "city", "monthly_income", "employment_type",
		"employer_name", "loan_amount_required", "property_location",
		"property_value", "property_status",
	},
	ServiceAutoLoan: {
		"full_name", "city", "monthly_income", "employment_type",
		"vehicle_type", "vehicle_make_model", "vehicle_cost",
		"loan_amount_required",
	},
	ServiceEducationLoan: {
		"full_name", "city", "student_name", "course_name",
		"institution_name", "institution_type", "total_course_fee",
		"loan_amount_required", "parent_monthly_income",
	},
	ServiceCreditRepair: {
		"full_name", "city", "current_credit_score",
		"total_outstanding_debt", "number_of_overdue_accounts",
		"reason_for_poor_score",
	},
}

// documentLabels holds the customer-facing names used in prompts.
var documentLabels = map[string]string{
	"aadhaar_front":             "Aadhaar Card (front side)",
	"aadhaar_back":              "Aadhaar Card (back side)",
	"pan_card":                  "PAN Card",
	"salary_slip_1":             "1st Salary Slip (most recent month)",
	"salary_slip_2":             "2nd Salary Slip (previous month)",
	"salary_slip_3":             "3rd Salary Slip (month before that)",
	"bank_statement_6mo":        "Last 6 months Bank Statement",
	"form_16_or_itr":            "Form 16 or ITR (last 2 years)",
	"property_document":         "Property Document (sale agreement or allotment letter)",
	"vehicle_quotation_or_rc":   "Vehicle Quotation (new vehicle) or RC Book (used vehicle)",
	"student_aadhaar":           "Student's Aadhaar Card",
	"parent_aadhaar":            "Parent's Aadhaar Card",
	"parent_pan":                "Parent's PAN Card",
	"admission_letter":          "Admission Letter from the institution",
	"fee_structure":             "Fee Structure Document",
	"parent_salary_slip_or_itr": "Parent's Salary Slips or ITR",
	"marksheet":                 "Last 2 years Marksheets/Result",
	"credit_report":             "Credit Report (from CIBIL/Experian/CRIF — if available)",
}

// RequiredDocuments returns the ordered document checklist for a service.
// The caller gets a copy and may mutate it freely.
func RequiredDocuments(service ServiceType) []string {
	docs := requiredDocuments[service]
	out := make([]string, len(docs))
	copy(out, docs)
	return out
}

// RequiredFields returns the data fields a service needs before document
// collection can start.
func RequiredFields(service ServiceType) []string {
	return requiredFields[service]
}

// DocumentLabel returns the customer-facing name for a document type tag.
func DocumentLabel(docType string) string {
	if label, ok := documentLabels[docType]; ok {
		return label
	}
	return docType
}
