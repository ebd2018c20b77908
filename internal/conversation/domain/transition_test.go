package domain

import (
	"reflect"
	"testing"
)

func TestAdvanceGreetingDetectsService(t *testing.T) {
	cases := []struct {
		text      string
		wantStage Stage
		wantSvc   ServiceType
	}{
		{"I need a home loan", StagePersonalInfo, ServiceHomeLoan},
		{"personal loan please", StagePersonalInfo, ServicePersonalLoan},
		{"2", StagePersonalInfo, ServiceHomeLoan},
		{"I want a car loan", StagePersonalInfo, ServiceAutoLoan},
		{"my credit score is bad", StagePersonalInfo, ServiceCreditRepair},
		{"hello there", StageGreeting, ""},
		{"", StageGreeting, ""},
	}

	for _, tc := range cases {
		got := Advance(TransitionInput{Stage: StageGreeting, UserText: tc.text})
		if got.Stage != tc.wantStage || got.ServiceType != tc.wantSvc {
			t.Errorf("Advance(greeting, %q) = (%s, %s), want (%s, %s)",
				tc.text, got.Stage, got.ServiceType, tc.wantStage, tc.wantSvc)
		}
	}
}

func TestAdvancePersonalInfoRequiresAllFields(t *testing.T) {
	partial := CollectedData{FullName: "Ravi Kumar", City: "Pune"}
	got := Advance(TransitionInput{
		Stage:       StagePersonalInfo,
		ServiceType: ServicePersonalLoan,
		Data:        partial,
	})
	if got.Stage != StagePersonalInfo {
		t.Fatalf("stage advanced with incomplete personal info: %s", got.Stage)
	}

	got = Advance(TransitionInput{
		Stage:       StagePersonalInfo,
		ServiceType: ServicePersonalLoan,
		Data:        partial,
		Extracted:   CollectedData{MonthlyIncome: 55000, EmploymentType: "salaried"},
	})
	if got.Stage != StageServiceSpecificInfo {
		t.Fatalf("stage = %s, want %s", got.Stage, StageServiceSpecificInfo)
	}
	if !got.FolderNameKnown {
		t.Error("FolderNameKnown not set though full name is present")
	}
}

func TestAdvanceServiceInfoComputesPendingDocuments(t *testing.T) {
	data := CollectedData{
		FullName: "Ravi Kumar", City: "Pune", MonthlyIncome: 55000,
		EmploymentType: "salaried", EmployerName: "Acme", LoanAmountRequired: 500000,
	}
	got := Advance(TransitionInput{
		Stage:       StageServiceSpecificInfo,
		ServiceType: ServicePersonalLoan,
		Data:        data,
		Extracted:   CollectedData{LoanPurpose: "wedding"},
	})
	if got.Stage != StageDocumentRequest {
		t.Fatalf("stage = %s, want %s", got.Stage, StageDocumentRequest)
	}
	if !reflect.DeepEqual(got.Data.PendingDocuments, RequiredDocuments(ServicePersonalLoan)) {
		t.Errorf("pending documents = %v, want full personal_loan checklist", got.Data.PendingDocuments)
	}
}

func TestAdvanceDocumentRequestIsUnconditional(t *testing.T) {
	got := Advance(TransitionInput{Stage: StageDocumentRequest, ServiceType: ServiceCreditRepair})
	if got.Stage != StageDocumentCollection {
		t.Fatalf("stage = %s, want %s", got.Stage, StageDocumentCollection)
	}
}

func TestAdvanceDocumentCollection(t *testing.T) {
	required := RequiredDocuments(ServiceCreditRepair) // aadhaar_front, pan_card, bank_statement_6mo, credit_report

	t.Run("incomplete uploads stay put", func(t *testing.T) {
		got := Advance(TransitionInput{
			Stage:        StageDocumentCollection,
			ServiceType:  ServiceCreditRepair,
			Data:         CollectedData{PendingDocuments: required[1:]},
			UploadedDocs: []string{"aadhaar_front"},
		})
		if got.Stage != StageDocumentCollection {
			t.Fatalf("stage = %s, want %s", got.Stage, StageDocumentCollection)
		}
	})

	t.Run("all uploads advance regardless of order", func(t *testing.T) {
		got := Advance(TransitionInput{
			Stage:        StageDocumentCollection,
			ServiceType:  ServiceCreditRepair,
			Data:         CollectedData{PendingDocuments: []string{"credit_report"}},
			UploadedDocs: []string{"credit_report", "bank_statement_6mo", "pan_card", "aadhaar_front"},
		})
		if got.Stage != StageSummaryConfirmation {
			t.Fatalf("stage = %s, want %s", got.Stage, StageSummaryConfirmation)
		}
	})

	t.Run("explicitly empty pending list advances", func(t *testing.T) {
		got := Advance(TransitionInput{
			Stage:       StageDocumentCollection,
			ServiceType: ServiceCreditRepair,
			Data:        CollectedData{PendingDocuments: []string{}},
		})
		if got.Stage != StageSummaryConfirmation {
			t.Fatalf("stage = %s, want %s", got.Stage, StageSummaryConfirmation)
		}
	})

	t.Run("nil pending list does not advance", func(t *testing.T) {
		got := Advance(TransitionInput{
			Stage:       StageDocumentCollection,
			ServiceType: ServiceCreditRepair,
		})
		if got.Stage != StageDocumentCollection {
			t.Fatalf("stage = %s, want %s", got.Stage, StageDocumentCollection)
		}
	})
}

func TestAdvanceSummaryConfirmation(t *testing.T) {
	cases := []struct {
		text          string
		wantCompleted bool
	}{
		{"yes that's correct", true},
		{"Bilkul!", true},
		{"OKAY", true},
		{"no, the income is wrong", false},
	}
	for _, tc := range cases {
		got := Advance(TransitionInput{Stage: StageSummaryConfirmation, UserText: tc.text})
		if got.Completed != tc.wantCompleted {
			t.Errorf("Advance(summary, %q).Completed = %v, want %v", tc.text, got.Completed, tc.wantCompleted)
		}
		if tc.wantCompleted && got.Stage != StageCompleted {
			t.Errorf("Advance(summary, %q).Stage = %s, want %s", tc.text, got.Stage, StageCompleted)
		}
	}
}

func TestAdvanceCompletedIsTerminal(t *testing.T) {
	got := Advance(TransitionInput{Stage: StageCompleted, UserText: "home loan"})
	if got.Stage != StageCompleted {
		t.Fatalf("terminal stage moved to %s", got.Stage)
	}
}

// Stage monotonicity: feeding a full scripted flow through Advance never
// decreases the stage order.
func TestAdvanceStageMonotonicity(t *testing.T) {
	turns := []TransitionInput{
		{UserText: "education loan"},
		{UserText: "hi again"},
		{Extracted: CollectedData{FullName: "Asha", City: "Mumbai", MonthlyIncome: 90000, EmploymentType: "self_employed"}},
		{Extracted: CollectedData{StudentName: "Rohan", CourseName: "MS CS", InstitutionName: "MIT", InstitutionType: "abroad", TotalCourseFee: 4000000, LoanAmountRequired: 3000000, ParentMonthlyIncome: 90000}},
		{UserText: "ok"},
		{UserText: "anything"},
		{UserText: "yes"},
	}

	stage, svc, data := StageGreeting, ServiceType(""), CollectedData{}
	prev := stage.Order()
	for i, turn := range turns {
		turn.Stage, turn.ServiceType, turn.Data = stage, svc, data
		res := Advance(turn)
		if res.Stage.Order() < prev {
			t.Fatalf("turn %d: stage regressed from order %d to %d (%s)", i, prev, res.Stage.Order(), res.Stage)
		}
		prev = res.Stage.Order()
		stage, svc, data = res.Stage, res.ServiceType, res.Data
	}
}
