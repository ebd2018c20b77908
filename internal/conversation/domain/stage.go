// Package domain holds the conversation state machine and its pure business
// rules: stages, service catalog, collected-data merging and document
// completion checks. Nothing in here touches the database or the network.
package domain

import "strings"

// Stage is one step of the guided conversation flow.
type Stage string

const (
	StageGreeting            Stage = "greeting"
	StagePersonalInfo        Stage = "personal_info"
	StageServiceSpecificInfo Stage = "service_specific_info"
	StageDocumentRequest     Stage = "document_request"
	StageDocumentCollection  Stage = "document_collection"
	StageSummaryConfirmation Stage = "summary_confirmation"
	StageCompleted           Stage = "completed"
)

var stageOrder = map[Stage]int{
	StageGreeting:            0,
	StagePersonalInfo:        1,
	StageServiceSpecificInfo: 2,
	StageDocumentRequest:     3,
	StageDocumentCollection:  4,
	StageSummaryConfirmation: 5,
	StageCompleted:           6,
}

// Order returns the position of the stage in the flow; unknown stages sort first.
func (s Stage) Order() int {
	return stageOrder[s]
}

// IsTerminal reports whether the stage ends the flow.
func (s Stage) IsTerminal() bool {
	return s == StageCompleted
}

// Status is the lifecycle state of a conversation.
type Status string

const (
	StatusActive        Status = "active"
	StatusHumanTakeover Status = "human_takeover"
	StatusCompleted     Status = "completed"
	StatusAbandoned     Status = "abandoned"
)

// IsTerminal reports whether the conversation can no longer change.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// Mode decides whether inbound messages are routed to automation or held for a
// human operator.
type Mode string

const (
	ModeBot   Mode = "bot"
	ModeHuman Mode = "human"
)

// Takeover reason codes recorded when a conversation flips to human mode.
const (
	TakeoverReasonOperator          = "agent_takeover"
	TakeoverReasonCustomerRequested = "customer_requested"
)

// ServiceType is one of the financial services the agent can guide a customer
// through.
type ServiceType string

const (
	ServicePersonalLoan  ServiceType = "personal_loan"
	ServiceHomeLoan      ServiceType = "home_loan"
	ServiceAutoLoan      ServiceType = "auto_loan"
	ServiceEducationLoan ServiceType = "education_loan"
	ServiceCreditRepair  ServiceType = "credit_repair"
)

// serviceVocabulary maps customer phrasing to a service type. Order matters:
// the first matching keyword wins, so longer phrases come before their parts.
var serviceVocabulary = []struct {
	keyword string
	service ServiceType
}{
	{"personal loan", ServicePersonalLoan},
	{"personal", ServicePersonalLoan},
	{"1", ServicePersonalLoan},
	{"home loan", ServiceHomeLoan},
	{"house loan", ServiceHomeLoan},
	{"home", ServiceHomeLoan},
	{"2", ServiceHomeLoan},
	{"auto loan", ServiceAutoLoan},
	{"car loan", ServiceAutoLoan},
	{"vehicle loan", ServiceAutoLoan},
	{"auto", ServiceAutoLoan},
	{"3", ServiceAutoLoan},
	{"education loan", ServiceEducationLoan},
	{"student loan", ServiceEducationLoan},
	{"education", ServiceEducationLoan},
	{"4", ServiceEducationLoan},
	{"credit score", ServiceCreditRepair},
	{"credit repair", ServiceCreditRepair},
	{"fix credit", ServiceCreditRepair},
	{"credit", ServiceCreditRepair},
	{"5", ServiceCreditRepair},
}

// DetectServiceType scans free text for a known service keyword. Returns ""
// when nothing matches.
func DetectServiceType(text string) ServiceType {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return ""
	}
	for _, entry := range serviceVocabulary {
		if strings.Contains(lower, entry.keyword) {
			return entry.service
		}
	}
	return ""
}

// affirmatives includes transliterated Hindi variants the customers use.
var affirmatives = []string{
	"yes", "correct", "confirm", "ok", "okay", "haan", "bilkul",
	"right", "approved", "confirmed", "proceed", "sure",
}

// IsAffirmative reports whether the text contains a confirmation token.
func IsAffirmative(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range affirmatives {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
