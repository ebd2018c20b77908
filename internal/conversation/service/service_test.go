package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"skm_agent_backend/internal/adapters/storage"
	"skm_agent_backend/internal/ai"
	"skm_agent_backend/internal/conversation/domain"
	"skm_agent_backend/internal/conversation/repository"
	"skm_agent_backend/internal/events"
	"skm_agent_backend/internal/whatsapp"
	"skm_agent_backend/platform/apperr"
	"skm_agent_backend/platform/logger"
)

// fakeRepo is an in-memory repository for service tests.
type fakeRepo struct {
	mu            sync.Mutex
	customers     map[uuid.UUID]repository.Customer
	byNumber      map[string]uuid.UUID
	conversations map[uuid.UUID]repository.Conversation
	messages      []repository.Message
	documents     []repository.Document
	seenChannelID map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		customers:     make(map[uuid.UUID]repository.Customer),
		byNumber:      make(map[string]uuid.UUID),
		conversations: make(map[uuid.UUID]repository.Conversation),
		seenChannelID: make(map[string]bool),
	}
}

var _ repository.Repository = (*fakeRepo)(nil)

func (f *fakeRepo) GetOrCreateCustomer(_ context.Context, waNumber, name string) (repository.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.byNumber[waNumber]; ok {
		return f.customers[id], nil
	}
	c := repository.Customer{ID: uuid.New(), WaNumber: waNumber}
	if name != "" {
		c.Name = &name
	}
	f.customers[c.ID] = c
	f.byNumber[waNumber] = c.ID
	return c, nil
}

func (f *fakeRepo) GetCustomer(_ context.Context, id uuid.UUID) (repository.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		return repository.Customer{}, apperr.NotFound("customer not found")
	}
	return c, nil
}

func (f *fakeRepo) UpdateCustomerProfile(_ context.Context, id uuid.UUID, name, email, city string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.customers[id]
	if name != "" {
		c.Name = &name
	}
	if email != "" {
		c.Email = &email
	}
	if city != "" {
		c.City = &city
	}
	f.customers[id] = c
	return nil
}

func (f *fakeRepo) SetCustomerFolder(_ context.Context, id uuid.UUID, key, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.customers[id]
	if c.FolderKey == nil {
		c.FolderKey = &key
		c.FolderURL = &url
	}
	f.customers[id] = c
	return nil
}

func (f *fakeRepo) FindActiveConversation(_ context.Context, customerID uuid.UUID) (repository.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conv := range f.conversations {
		if conv.CustomerID == customerID && !conv.Status.IsTerminal() {
			return conv, nil
		}
	}
	return repository.Conversation{}, apperr.NotFound("conversation not found")
}

func (f *fakeRepo) CreateConversation(_ context.Context, customerID uuid.UUID) (repository.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv := repository.Conversation{
		ID:         uuid.New(),
		CustomerID: customerID,
		Status:     domain.StatusActive,
		Mode:       domain.ModeBot,
		Stage:      domain.StageGreeting,
	}
	f.conversations[conv.ID] = conv
	return conv, nil
}

func (f *fakeRepo) GetConversation(_ context.Context, id uuid.UUID) (repository.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[id]
	if !ok {
		return repository.Conversation{}, apperr.NotFound("conversation not found")
	}
	return conv, nil
}

func (f *fakeRepo) UpdateConversationState(_ context.Context, params repository.UpdateStateParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv := f.conversations[params.ID]
	conv.Stage = params.Stage
	if params.ServiceType != "" {
		conv.ServiceType = params.ServiceType
	}
	conv.Status = params.Status
	conv.Data = params.Data
	conv.History = params.History
	f.conversations[params.ID] = conv
	return nil
}

func (f *fakeRepo) SetConversationMode(_ context.Context, params repository.SetModeParams) (repository.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[params.ID]
	if !ok {
		return repository.Conversation{}, apperr.NotFound("conversation not found")
	}
	conv.Mode = params.Mode
	conv.Status = params.Status
	conv.AssignedAgent = params.AssignedAgent
	conv.TakeoverReason = params.TakeoverReason
	f.conversations[params.ID] = conv
	return conv, nil
}

func (f *fakeRepo) ListConversations(_ context.Context, _ repository.ListConversationsParams) ([]repository.ConversationSummary, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) MarkAbandoned(_ context.Context, _ time.Time) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeRepo) SaveMessage(_ context.Context, params repository.SaveMessageParams) (repository.Message, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if params.ChannelMessageID != "" {
		if f.seenChannelID[params.ChannelMessageID] {
			return repository.Message{}, false, nil
		}
		f.seenChannelID[params.ChannelMessageID] = true
	}
	m := repository.Message{
		ID:             uuid.New(),
		ConversationID: params.ConversationID,
		Direction:      params.Direction,
		SenderType:     params.SenderType,
		MessageType:    params.MessageType,
		CreatedAt:      time.Now(),
	}
	if params.Content != "" {
		m.Content = &params.Content
	}
	f.messages = append(f.messages, m)
	return m, true, nil
}

func (f *fakeRepo) ListMessages(_ context.Context, conversationID uuid.UUID, _ int) ([]repository.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) SaveDocument(_ context.Context, params repository.SaveDocumentParams) (repository.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := repository.Document{
		ID:             uuid.New(),
		CustomerID:     params.CustomerID,
		ConversationID: params.ConversationID,
		DocumentType:   params.DocumentType,
		UploadedAt:     time.Now(),
	}
	f.documents = append(f.documents, d)
	return d, nil
}

func (f *fakeRepo) ListDocuments(_ context.Context, conversationID uuid.UUID) ([]repository.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Document
	for _, d := range f.documents {
		if d.ConversationID == conversationID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListDocumentTypes(_ context.Context, conversationID uuid.UUID) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, d := range f.documents {
		if d.ConversationID == conversationID {
			out = append(out, d.DocumentType)
		}
	}
	return out, nil
}

func (f *fakeRepo) countMessages(direction string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.messages {
		if m.Direction == direction {
			n++
		}
	}
	return n
}

// fakeGenerator returns canned replies and extractions.
type fakeGenerator struct {
	mu         sync.Mutex
	reply      ai.Reply
	replyErr   error
	extractFn  func(userText string) domain.CollectedData
	generated  int
}

func (g *fakeGenerator) GenerateReply(_ context.Context, _ ai.GenerateInput) (ai.Reply, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generated++
	if g.replyErr != nil {
		return ai.Reply{}, g.replyErr
	}
	return g.reply, nil
}

func (g *fakeGenerator) ExtractData(_ context.Context, in ai.ExtractInput) (domain.CollectedData, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.extractFn != nil {
		return g.extractFn(in.UserText), nil
	}
	return domain.CollectedData{}, nil
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generated
}

// fakeSender records outbound texts.
type fakeSender struct {
	mu    sync.Mutex
	sent  []string
}

func (s *fakeSender) SendText(_ context.Context, _, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, text)
	return nil
}

func (s *fakeSender) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

// fakeMedia serves a fixed attachment.
type fakeMedia struct {
	media whatsapp.Media
	err   error
}

func (m *fakeMedia) DownloadMedia(_ context.Context, _ string) (whatsapp.Media, error) {
	if m.err != nil {
		return whatsapp.Media{}, m.err
	}
	return m.media, nil
}

// fakeVault stores nothing; it can be told to fail uploads.
type fakeVault struct {
	uploadErr error
	uploads   int
	mu        sync.Mutex
}

func (v *fakeVault) EnsureBucketExists(_ context.Context) error { return nil }

func (v *fakeVault) EnsureCustomerFolder(_ context.Context, fullName, waNumber string) (storage.Folder, error) {
	key := storage.FolderKey(fullName, waNumber)
	return storage.Folder{Key: key, URL: "http://vault/" + key}, nil
}

func (v *fakeVault) UploadDocument(_ context.Context, folderKey, fileName, _ string, _ io.Reader, _ int64) (storage.StoredObject, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.uploadErr != nil {
		return storage.StoredObject{}, v.uploadErr
	}
	v.uploads++
	return storage.StoredObject{Key: folderKey + fileName, URL: "http://vault/" + folderKey + fileName}, nil
}

type testHarness struct {
	svc    *Service
	repo   *fakeRepo
	gen    *fakeGenerator
	sender *fakeSender
	vault  *fakeVault
	media  *fakeMedia
	bus    events.Bus
}

func newHarness() *testHarness {
	log := logger.New("test")
	repo := newFakeRepo()
	gen := &fakeGenerator{reply: ai.Reply{Text: "Hello! Which service do you need today?"}}
	sender := &fakeSender{}
	vault := &fakeVault{}
	media := &fakeMedia{media: whatsapp.Media{Data: []byte("fake-bytes"), MimeType: "image/jpeg"}}
	bus := events.NewInMemoryBus(log)
	return &testHarness{
		svc:    New(repo, gen, sender, media, vault, bus, log),
		repo:   repo,
		gen:    gen,
		sender: sender,
		vault:  vault,
		media:  media,
		bus:    bus,
	}
}

var errBoom = errors.New("boom")
