package service

import (
	"context"
	"sync"
	"testing"

	"skm_agent_backend/internal/ai"
	"skm_agent_backend/internal/conversation/domain"
	"skm_agent_backend/internal/conversation/repository"
	"skm_agent_backend/platform/apperr"
)

func inboundText(id, text string) InboundMessage {
	return InboundMessage{
		WaNumber:         "919876543210",
		ProfileName:      "Ravi Kumar",
		ChannelMessageID: id,
		Type:             "text",
		Text:             text,
	}
}

func TestProcessInboundRepliesAndAdvances(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	if err := h.svc.ProcessInbound(ctx, inboundText("wamid.1", "I need a personal loan")); err != nil {
		t.Fatalf("ProcessInbound: %v", err)
	}

	if got := h.sender.texts(); len(got) != 1 || got[0] != "Hello! Which service do you need today?" {
		t.Fatalf("sent = %v", got)
	}

	customerID := h.repo.byNumber["919876543210"]
	conv, err := h.repo.FindActiveConversation(ctx, customerID)
	if err != nil {
		t.Fatal(err)
	}
	if conv.Stage != domain.StagePersonalInfo {
		t.Errorf("stage = %s, want %s", conv.Stage, domain.StagePersonalInfo)
	}
	if conv.ServiceType != domain.ServicePersonalLoan {
		t.Errorf("service = %s, want %s", conv.ServiceType, domain.ServicePersonalLoan)
	}
	if len(conv.History) != 2 {
		t.Errorf("history length = %d, want 2 (user + assistant)", len(conv.History))
	}
}

func TestProcessInboundDropsReplayedDelivery(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := h.svc.ProcessInbound(ctx, inboundText("wamid.same", "hello")); err != nil {
			t.Fatalf("ProcessInbound replay %d: %v", i, err)
		}
	}

	if calls := h.gen.calls(); calls != 1 {
		t.Errorf("generation calls = %d, want 1", calls)
	}
	if n := h.repo.countMessages("inbound"); n != 1 {
		t.Errorf("stored inbound messages = %d, want 1", n)
	}
	if n := len(h.sender.texts()); n != 1 {
		t.Errorf("sent replies = %d, want 1", n)
	}
}

func TestProcessInboundHumanModeSuppressesBot(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	if err := h.svc.ProcessInbound(ctx, inboundText("wamid.1", "hi")); err != nil {
		t.Fatal(err)
	}
	customerID := h.repo.byNumber["919876543210"]
	conv, _ := h.repo.FindActiveConversation(ctx, customerID)
	if _, err := h.svc.Takeover(ctx, conv.ID, "asha@skm"); err != nil {
		t.Fatalf("Takeover: %v", err)
	}

	before := h.gen.calls()
	if err := h.svc.ProcessInbound(ctx, inboundText("wamid.2", "are you a robot?")); err != nil {
		t.Fatal(err)
	}

	if h.gen.calls() != before {
		t.Error("bot generated a reply while a human owns the conversation")
	}
	if n := h.repo.countMessages("inbound"); n != 2 {
		t.Errorf("inbound messages stored = %d, want 2", n)
	}
}

func TestProcessInboundGenerationFailureSendsApology(t *testing.T) {
	h := newHarness()
	h.gen.replyErr = errBoom
	ctx := context.Background()

	if err := h.svc.ProcessInbound(ctx, inboundText("wamid.1", "home loan please")); err != nil {
		t.Fatalf("ProcessInbound: %v", err)
	}

	got := h.sender.texts()
	if len(got) != 1 || got[0] != ai.ApologyReply {
		t.Fatalf("sent = %v, want apology", got)
	}

	customerID := h.repo.byNumber["919876543210"]
	conv, _ := h.repo.FindActiveConversation(ctx, customerID)
	if conv.Stage != domain.StageGreeting {
		t.Errorf("stage advanced despite generation failure: %s", conv.Stage)
	}
	if len(conv.History) != 0 {
		t.Errorf("history written despite generation failure: %d entries", len(conv.History))
	}
}

func TestProcessInboundHandoffEscalates(t *testing.T) {
	h := newHarness()
	h.gen.reply = ai.Reply{Text: "Connecting you to our team.", HandoffRequested: true}
	ctx := context.Background()

	if err := h.svc.ProcessInbound(ctx, inboundText("wamid.1", "I want to talk to a human")); err != nil {
		t.Fatal(err)
	}

	customerID := h.repo.byNumber["919876543210"]
	conv, _ := h.repo.FindActiveConversation(ctx, customerID)
	if conv.Mode != domain.ModeHuman {
		t.Errorf("mode = %s, want human", conv.Mode)
	}
	if conv.Status != domain.StatusHumanTakeover {
		t.Errorf("status = %s, want human_takeover", conv.Status)
	}
	if conv.TakeoverReason == nil || *conv.TakeoverReason != domain.TakeoverReasonCustomerRequested {
		t.Errorf("takeover reason = %v", conv.TakeoverReason)
	}
	// The agreed reply still goes out before the human takes over.
	if got := h.sender.texts(); len(got) != 1 || got[0] != "Connecting you to our team." {
		t.Errorf("sent = %v", got)
	}
}

func TestProcessInboundConcurrentTurnsDoNotLoseData(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	// Seed a conversation past greeting so extractions merge into data.
	if err := h.svc.ProcessInbound(ctx, inboundText("wamid.0", "personal loan")); err != nil {
		t.Fatal(err)
	}

	h.gen.extractFn = func(userText string) domain.CollectedData {
		switch userText {
		case "my name is Ravi Kumar":
			return domain.CollectedData{FullName: "Ravi Kumar"}
		case "I live in Pune":
			return domain.CollectedData{City: "Pune"}
		}
		return domain.CollectedData{}
	}

	var wg sync.WaitGroup
	inputs := []struct {
		id   string
		text string
	}{
		{"wamid.a", "my name is Ravi Kumar"},
		{"wamid.b", "I live in Pune"},
	}
	for _, in := range inputs {
		wg.Add(1)
		go func(id, text string) {
			defer wg.Done()
			_ = h.svc.ProcessInbound(ctx, inboundText(id, text))
		}(in.id, in.text)
	}
	wg.Wait()

	customerID := h.repo.byNumber["919876543210"]
	conv, _ := h.repo.FindActiveConversation(ctx, customerID)
	if n := len(conv.History); n != 6 {
		t.Errorf("history length = %d, want 6 (three full turns)", n)
	}
	// Both extractions must survive the interleaving: losing either field
	// means one turn overwrote the other's merge.
	if conv.Data.FullName != "Ravi Kumar" {
		t.Errorf("full name = %q, want %q", conv.Data.FullName, "Ravi Kumar")
	}
	if conv.Data.City != "Pune" {
		t.Errorf("city = %q, want %q", conv.Data.City, "Pune")
	}
}

func TestMediaIntakePopsPendingDocument(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	// Drive the conversation into document_collection with a pending list.
	if err := h.svc.ProcessInbound(ctx, inboundText("wamid.1", "credit repair")); err != nil {
		t.Fatal(err)
	}
	customerID := h.repo.byNumber["919876543210"]
	conv, _ := h.repo.FindActiveConversation(ctx, customerID)
	conv.Stage = domain.StageDocumentCollection
	conv.ServiceType = domain.ServiceCreditRepair
	conv.Data.PendingDocuments = domain.RequiredDocuments(domain.ServiceCreditRepair)
	if err := h.repo.UpdateConversationState(ctx, updateParamsFrom(conv)); err != nil {
		t.Fatal(err)
	}

	upload := InboundMessage{
		WaNumber:         "919876543210",
		ChannelMessageID: "wamid.media1",
		Type:             "image",
		MediaID:          "media-abc",
	}
	if err := h.svc.ProcessInbound(ctx, upload); err != nil {
		t.Fatal(err)
	}

	conv, _ = h.repo.FindActiveConversation(ctx, customerID)
	want := domain.RequiredDocuments(domain.ServiceCreditRepair)[1:]
	if len(conv.Data.PendingDocuments) != len(want) {
		t.Fatalf("pending = %v, want %v", conv.Data.PendingDocuments, want)
	}
	docs, _ := h.repo.ListDocumentTypes(ctx, conv.ID)
	if len(docs) != 1 || docs[0] != "aadhaar_front" {
		t.Errorf("stored document types = %v, want [aadhaar_front]", docs)
	}
}

func TestMediaIntakeStorageFailureKeepsPendingList(t *testing.T) {
	h := newHarness()
	h.vault.uploadErr = errBoom
	ctx := context.Background()

	if err := h.svc.ProcessInbound(ctx, inboundText("wamid.1", "credit repair")); err != nil {
		t.Fatal(err)
	}
	customerID := h.repo.byNumber["919876543210"]
	conv, _ := h.repo.FindActiveConversation(ctx, customerID)
	conv.Stage = domain.StageDocumentCollection
	conv.ServiceType = domain.ServiceCreditRepair
	conv.Data.PendingDocuments = domain.RequiredDocuments(domain.ServiceCreditRepair)
	if err := h.repo.UpdateConversationState(ctx, updateParamsFrom(conv)); err != nil {
		t.Fatal(err)
	}

	upload := InboundMessage{
		WaNumber:         "919876543210",
		ChannelMessageID: "wamid.media1",
		Type:             "image",
		MediaID:          "media-abc",
	}
	if err := h.svc.ProcessInbound(ctx, upload); err != nil {
		t.Fatal(err)
	}

	conv, _ = h.repo.FindActiveConversation(ctx, customerID)
	if len(conv.Data.PendingDocuments) != len(domain.RequiredDocuments(domain.ServiceCreditRepair)) {
		t.Errorf("pending list changed after failed upload: %v", conv.Data.PendingDocuments)
	}
	docs, _ := h.repo.ListDocumentTypes(ctx, conv.ID)
	if len(docs) != 0 {
		t.Errorf("document recorded despite failed upload: %v", docs)
	}
}

func TestTakeoverHandbackExclusivity(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	if err := h.svc.ProcessInbound(ctx, inboundText("wamid.1", "hi")); err != nil {
		t.Fatal(err)
	}
	customerID := h.repo.byNumber["919876543210"]
	conv, _ := h.repo.FindActiveConversation(ctx, customerID)

	if _, err := h.svc.Handback(ctx, conv.ID); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("handback of bot conversation: err = %v, want conflict", err)
	}

	if _, err := h.svc.Takeover(ctx, conv.ID, "asha@skm"); err != nil {
		t.Fatalf("Takeover: %v", err)
	}
	if _, err := h.svc.Takeover(ctx, conv.ID, "vikram@skm"); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("double takeover: err = %v, want conflict", err)
	}

	if err := h.svc.OperatorSend(ctx, conv.ID, "asha@skm", "Hi, Asha here."); err != nil {
		t.Fatalf("OperatorSend: %v", err)
	}

	if _, err := h.svc.Handback(ctx, conv.ID); err != nil {
		t.Fatalf("Handback: %v", err)
	}
	if err := h.svc.OperatorSend(ctx, conv.ID, "asha@skm", "still there?"); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("operator send in bot mode: err = %v, want conflict", err)
	}

	conv, _ = h.repo.FindActiveConversation(ctx, customerID)
	if conv.Mode != domain.ModeBot || conv.Status != domain.StatusActive {
		t.Errorf("after handback: mode=%s status=%s", conv.Mode, conv.Status)
	}
}

func updateParamsFrom(conv repository.Conversation) repository.UpdateStateParams {
	return repository.UpdateStateParams{
		ID:          conv.ID,
		Stage:       conv.Stage,
		ServiceType: conv.ServiceType,
		Status:      conv.Status,
		Data:        conv.Data,
		History:     conv.History,
	}
}
