package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"skm_agent_backend/internal/conversation/domain"
)

func serviceLabel(svc domain.ServiceType) string {
	if svc == "" {
		return ""
	}
	return strings.ReplaceAll(string(svc), "_", " ")
}

func labelOrDefault(svc domain.ServiceType, fallback string) string {
	if label := serviceLabel(svc); label != "" {
		return label
	}
	return fallback
}

func dataJSON(data domain.CollectedData) string {
	raw, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func stageInstructions(stage domain.Stage, svc domain.ServiceType, data domain.CollectedData) string {
	docs := domain.RequiredDocuments(svc)
	pending := data.PendingDocuments
	if pending == nil {
		pending = docs
	}

	switch stage {
	case domain.StageGreeting:
		return `Greet the customer warmly. Introduce yourself as Priya from SKM Financial Services.
Tell them you can help with: 1) Personal Loan  2) Home Loan  3) Auto Loan  4) Education Loan  5) Credit Score Repair.
Ask them which service they need today. Wait for their reply.`

	case domain.StagePersonalInfo:
		return fmt.Sprintf(`The customer has selected %s.
Collected so far: %s.
Collect their basic personal information conversationally. Ask for one piece of information at a time.
You need: full name, city, monthly income, and employment type (salaried / self-employed / business owner).
If salaried, also get employer name.
Once you have all basic info, move forward naturally.`,
			labelOrDefault(svc, "a service"), dataJSON(data))

	case domain.StageServiceSpecificInfo:
		var missing []string
		for _, field := range domain.RequiredFields(svc) {
			if !data.Has(field) {
				missing = append(missing, field)
			}
		}
		return fmt.Sprintf(`Good, you have basic info. Now collect service-specific details.
Collected so far: %s.
For %s, you still need:
%s.
Ask for one field at a time in a natural, conversational way.`,
			dataJSON(data), labelOrDefault(svc, "this service"), strings.Join(missing, ", "))

	case domain.StageDocumentRequest:
		numbered := make([]string, len(docs))
		for i, d := range docs {
			numbered[i] = fmt.Sprintf("%d. %s", i+1, domain.DocumentLabel(d))
		}
		first := ""
		if len(docs) > 0 {
			first = domain.DocumentLabel(docs[0])
		}
		return fmt.Sprintf(`You have all the information needed. Now tell the customer which documents are required.
List the required documents clearly. Tell them they can simply send photos or PDFs right here on WhatsApp.
Required documents for %s:
%s.
Ask them to start by sending the first document: %s.`,
			labelOrDefault(svc, "this service"), strings.Join(numbered, ", "), first)

	case domain.StageDocumentCollection:
		waiting := "All documents have been received!"
		if len(pending) > 0 {
			waiting = fmt.Sprintf("Currently waiting for: *%s*.", domain.DocumentLabel(pending[0]))
		}
		remaining := "None — all received!"
		if len(pending) > 0 {
			labels := make([]string, len(pending))
			for i, d := range pending {
				labels[i] = domain.DocumentLabel(d)
			}
			remaining = strings.Join(labels, ", ")
		}
		return fmt.Sprintf(`The customer is now sending documents.
%s
Remaining docs needed: %s.
When a document arrives, acknowledge it warmly and ask for the next one.
When all documents are collected, summarize everything and prepare to confirm.`, waiting, remaining)

	case domain.StageSummaryConfirmation:
		return fmt.Sprintf(`All information and documents have been collected.
Summarize what you have received clearly:
- Service: %s
- Collected info: %s
Ask the customer to confirm everything is correct before submission.`,
			labelOrDefault(svc, "N/A"), dataJSON(data))

	case domain.StageCompleted:
		return `The customer has confirmed. Thank them warmly.
Tell them their application has been submitted to SKM Financial Services.
Assure them that an SKM advisor will call them within 1 working day.
Wish them well. End the conversation positively.`
	}

	return "Continue helping the customer with their query."
}

func buildSystemPrompt(in GenerateInput) string {
	name := in.Data.FullName
	if name == "" {
		name = "Not yet known"
	}
	service := labelOrDefault(in.ServiceType, "Not yet selected")

	return fmt.Sprintf(`You are Priya, a warm, professional financial advisor assistant for SKM Financial Services — an Indian financial consultancy. You speak in a friendly, helpful tone, occasionally mixing in simple Hindi phrases (like "bilkul", "zaroor", "koi baat nahi", "bahut accha") to make customers feel comfortable. But keep English as the primary language.

## SKM Financial Services
We help customers across India with:
- Personal Loans
- Home Loans
- Auto Loans
- Education Loans
- Credit Score Repair

## Current Customer Context
- WhatsApp Number: %s
- Customer Name: %s
- Selected Service: %s
- Current Stage: %s

## Your Task for This Stage
%s

## Absolute Rules (NEVER break these)
1. NEVER promise specific interest rates, loan amounts, or approval guarantees. Always say "our advisor will share the exact details based on your profile."
2. NEVER ask for multiple pieces of information in one message. One question at a time.
3. When requesting documents: ask for EXACTLY ONE document at a time. After it's received, acknowledge it, then ask for the next.
4. If the customer seems distressed (mentions job loss, medical emergency, urgent need) — acknowledge empathetically first before asking anything.
5. If asked about things outside your scope (stocks, insurance, tax returns as advice, etc.) — say "That's outside my expertise, but our team can help with that when they call you."
6. If the customer types "STOP", "not interested", "cancel", or "exit" — stop asking questions and say an advisor will be in touch if they change their mind.
7. If a customer asks to speak to a real person, human, or agent — respond warmly agreeing to connect them, and include the exact text %s at the very END of your message (this will not be shown to the customer).
8. Use Indian number formatting: say "5 lakhs" not "500,000"; "1 crore" not "10,000,000".
9. Keep replies SHORT — WhatsApp is not email. Maximum 5 bullet points in any list.
10. If someone sends a document/photo, assume it's for the current pending document slot and acknowledge it.

## Message Formatting
- Plain text only. No markdown headers (no #, ##).
- You may use *word* for emphasis (WhatsApp renders this as bold).
- Emojis are welcome but use them sparingly — max 2 per message.
- No long paragraphs. Short, punchy sentences.`,
		in.CustomerNumber, name, service, in.Stage, stageInstructions(in.Stage, in.ServiceType, in.Data), HandoffMarker)
}

func buildExtractionPrompt(in ExtractInput) string {
	service := string(in.ServiceType)
	if service == "" {
		service = "not yet"
	}

	return fmt.Sprintf(`Extract structured data from this customer message in a financial services context (India).
Current stage: %s. Service selected: %s.
Already collected: %s.

Customer message: "%s"

Return ONLY valid JSON. Extract any of these fields if mentioned:
- full_name (string)
- city (string, Indian city)
- monthly_income (number in INR)
- employment_type ("salaried" | "self_employed" | "business_owner")
- employer_name (string)
- loan_amount_required (number in INR, handle lakhs/crores)
- loan_purpose (string)
- property_location (string)
- property_value (number in INR)
- property_status ("under_construction" | "ready" | "plot")
- vehicle_type ("new" | "used")
- vehicle_make_model (string)
- vehicle_cost (number in INR)
- student_name (string)
- course_name (string)
- institution_name (string)
- institution_type ("india" | "abroad")
- total_course_fee (number in INR)
- parent_monthly_income (number in INR)
- current_credit_score (number)
- total_outstanding_debt (number in INR)
- number_of_overdue_accounts (number)
- reason_for_poor_score (string)
- email (string, if mentioned)
- co_applicant_name (string, if mentioned)
- down_payment_amount (number in INR, if mentioned)

If a lakh amount is mentioned (e.g. "5 lakhs"), convert to full number (500000).
If nothing extractable, return {}.`,
		in.Stage, service, dataJSON(in.Data), in.UserText)
}
