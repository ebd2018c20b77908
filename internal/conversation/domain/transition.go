package domain

// TransitionInput is everything the stage transition function looks at for
// one conversational turn.
type TransitionInput struct {
	Stage       Stage
	ServiceType ServiceType
	// Data is the conversation's accumulated collected data.
	Data CollectedData
	// Extracted is the partial data the generation collaborator pulled out
	// of the latest message. Zero fields are ignored.
	Extracted CollectedData
	// UserText is the latest inbound text (or a media-received marker).
	UserText string
	// UploadedDocs lists the document types stored so far for the conversation.
	UploadedDocs []string
}

// TransitionResult is the outcome of one turn.
type TransitionResult struct {
	Stage       Stage
	ServiceType ServiceType
	Data        CollectedData
	// Completed is set when the turn finished the conversation; the caller
	// flips the status to completed.
	Completed bool
	// FolderNameKnown is set when the customer's full name is available on
	// entering service_specific_info. The caller provisions the external
	// document folder exactly once, guarded by the stored folder reference.
	FolderNameKnown bool
}

// Advance applies the stage transition rules for a single turn. It is pure
// and total: unmatched input at any stage leaves the stage unchanged, never
// errors. All persistence and side effects belong to the caller.
func Advance(in TransitionInput) TransitionResult {
	out := TransitionResult{
		Stage:       in.Stage,
		ServiceType: in.ServiceType,
		Data:        in.Data.Merge(in.Extracted),
	}

	switch in.Stage {
	case StageGreeting:
		if svc := DetectServiceType(in.UserText); svc != "" {
			out.ServiceType = svc
			out.Stage = StagePersonalInfo
		}

	case StagePersonalInfo:
		if out.Data.HasPersonalInfo() {
			out.Stage = StageServiceSpecificInfo
			out.FolderNameKnown = out.Data.FullName != ""
		}

	case StageServiceSpecificInfo:
		if out.ServiceType != "" && out.Data.HasAll(RequiredFields(out.ServiceType)) {
			out.Data.PendingDocuments = RequiredDocuments(out.ServiceType)
			out.Stage = StageDocumentRequest
		}

	case StageDocumentRequest:
		// The previous turn listed the required documents to the customer.
		out.Stage = StageDocumentCollection

	case StageDocumentCollection:
		allUploaded := DocumentsSatisfy(RequiredDocuments(out.ServiceType), in.UploadedDocs)
		explicitlyEmpty := out.Data.PendingDocuments != nil && len(out.Data.PendingDocuments) == 0
		if allUploaded || explicitlyEmpty {
			out.Stage = StageSummaryConfirmation
		}

	case StageSummaryConfirmation:
		if IsAffirmative(in.UserText) {
			out.Stage = StageCompleted
			out.Completed = true
		}

	case StageCompleted:
		// Terminal.
	}

	return out
}
