package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/application/usecase"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/internal/domain/service"
	vo "github.com/bibbank/credit-service/internal/domain/valueobject"
	"github.com/bibbank/credit-service/internal/infrastructure/persistence/memory"
	"github.com/bibbank/credit-service/pkg/auth"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockAudit struct {
	mu      sync.Mutex
	records []port.AuditRecord
	logFunc func(ctx context.Context, r port.AuditRecord) error
}

func (m *mockAudit) LogAction(ctx context.Context, r port.AuditRecord) error {
	m.mu.Lock()
	m.records = append(m.records, r)
	m.mu.Unlock()
	if m.logFunc != nil {
		return m.logFunc(ctx, r)
	}
	return nil
}

func (m *mockAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r.Action)
	}
	return out
}

type mockNotifier struct {
	mu         sync.Mutex
	sent       []port.Notification
	notifyFunc func(ctx context.Context, n port.Notification) error
}

func (m *mockNotifier) Notify(ctx context.Context, n port.Notification) error {
	m.mu.Lock()
	m.sent = append(m.sent, n)
	m.mu.Unlock()
	if m.notifyFunc != nil {
		return m.notifyFunc(ctx, n)
	}
	return nil
}

type mockMetrics struct {
	mu          sync.Mutex
	transitions []string
	failures    map[string]int
	conflicts   int
}

func (m *mockMetrics) TransitionApplied(from, to, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, from+"-"+action+"->"+to)
}

func (m *mockMetrics) SideEffectFailed(sink string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures == nil {
		m.failures = map[string]int{}
	}
	m.failures[sink]++
}

func (m *mockMetrics) ConflictRetried() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts++
}

type mockBlacklist struct {
	isBlacklistedFunc func(ctx context.Context, docType, docNumber string) (bool, error)
}

func (m mockBlacklist) IsBlacklisted(ctx context.Context, docType, docNumber string) (bool, error) {
	if m.isBlacklistedFunc != nil {
		return m.isBlacklistedFunc(ctx, docType, docNumber)
	}
	return false, nil
}

type mockRisk struct {
	hasAdverseFunc func(ctx context.Context, a model.Applicant) (bool, error)
}

func (m mockRisk) HasAdverseRecords(ctx context.Context, a model.Applicant) (bool, error) {
	if m.hasAdverseFunc != nil {
		return m.hasAdverseFunc(ctx, a)
	}
	return false, nil
}

type mockSignature struct {
	createLinkFunc func(ctx context.Context, applicationID, radication string) (string, string, error)
}

func (m mockSignature) CreateLink(ctx context.Context, applicationID, radication string) (string, string, error) {
	if m.createLinkFunc != nil {
		return m.createLinkFunc(ctx, applicationID, radication)
	}
	return "https://sign.example.com/" + radication, "tok-" + applicationID, nil
}

// conflictingRepo fails the first conflicts updates with a version conflict
// before delegating.
type conflictingRepo struct {
	*memory.ApplicationRepo
	updateFunc func(ctx context.Context, app model.CreditApplication) error
}

func (r *conflictingRepo) Update(ctx context.Context, app model.CreditApplication) error {
	if r.updateFunc != nil {
		return r.updateFunc(ctx, app)
	}
	return r.ApplicationRepo.Update(ctx, app)
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

var baseTime = time.Date(2026, time.April, 6, 10, 0, 0, 0, time.UTC)

type harness struct {
	repo     *memory.ApplicationRepo
	store    *usecase.Store
	effects  *usecase.SideEffects
	rules    *service.ApprovalRules
	scoring  *service.ScoringEngine
	audit    *mockAudit
	notifier *mockNotifier
	metrics  *mockMetrics

	clockMu sync.Mutex
	now     time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		repo:     memory.NewApplicationRepo(),
		audit:    &mockAudit{},
		notifier: &mockNotifier{},
		metrics:  &mockMetrics{},
		now:      baseTime,
	}
	rules, err := service.NewApprovalRules(service.DefaultRulesConfig())
	require.NoError(t, err)
	h.rules = rules
	h.scoring = service.NewScoringEngine(mockBlacklist{}, mockRisk{})
	h.store = usecase.NewStore(h.repo, h.metrics, h.clock).WithRetry(3, time.Millisecond)
	h.effects = usecase.NewSideEffects(h.notifier, h.audit, h.metrics, nil)
	return h
}

func (h *harness) clock() time.Time {
	h.clockMu.Lock()
	defer h.clockMu.Unlock()
	h.now = h.now.Add(time.Minute)
	return h.now
}

func actor(id string, roles ...string) dto.Actor {
	return dto.Actor{ID: id, Roles: roles}
}

var (
	applicant = actor("applicant-1", auth.RoleApplicant)
	analyst1  = actor("analyst-1", auth.RoleAnalyst1)
	analyst2  = actor("analyst-2", auth.RoleAnalyst2)
	analyst3  = actor("analyst-3", auth.RoleAnalyst3)
	servicing = actor("ops-1", auth.RoleServicing)
	admin     = actor("admin-1", auth.RoleAdmin)
)

func applicantInput(requested int64) dto.ApplicantInput {
	return dto.ApplicantInput{
		FirstName:       "Valentina",
		LastName:        "Gómez",
		DocumentType:    "CC",
		DocumentNumber:  "1032456789",
		Email:           "valentina@example.com",
		Phone:           "3105551234",
		DateOfBirth:     "1987-09-14",
		Company:         "Andes Logistics SAS",
		CompanyPhone:    "6014567890",
		Position:        "Coordinator",
		ContractType:    "indefinite",
		AdmissionDate:   "2018-02-01",
		MonthlyIncome:   decimal.NewFromInt(6_000_000),
		MonthlyExpenses: decimal.NewFromInt(1_200_000),
		RequestedAmount: decimal.NewFromInt(requested),
		TermMonths:      24,
	}
}

func (h *harness) create(t *testing.T, requested int64) dto.ApplicationResponse {
	t.Helper()
	uc := usecase.NewCreateApplicationUseCase(h.store, h.effects, h.rules)
	resp, err := uc.Execute(context.Background(), dto.CreateApplicationRequest{
		Actor:     applicant,
		Source:    "web",
		Applicant: applicantInput(requested),
	})
	require.NoError(t, err)
	return resp
}

func (h *harness) startReview(t *testing.T, id string) dto.StartReviewResponse {
	t.Helper()
	uc := usecase.NewStartReviewUseCase(h.store, h.effects, h.rules, h.scoring)
	resp, err := uc.Execute(context.Background(), dto.ApplicationRef{Actor: analyst1, ApplicationID: id})
	require.NoError(t, err)
	return resp
}

func (h *harness) process(req dto.ProcessApplicationRequest) (dto.ApplicationResponse, error) {
	uc := usecase.NewProcessApplicationUseCase(h.store, h.effects, h.rules)
	return uc.Execute(context.Background(), req)
}

// seed stores app with a raw status, bypassing the lifecycle.
func (h *harness) seed(t *testing.T, rawStatus string) model.CreditApplication {
	t.Helper()
	resp := h.create(t, 20_000_000)
	app, err := h.repo.FindByID(context.Background(), resp.ID)
	require.NoError(t, err)
	status, err := vo.NormalizeStatus(rawStatus)
	require.NoError(t, err)
	snap := app.Snapshot()
	snap.Status = rawStatus
	snap.StatusHistory = append(snap.StatusHistory, model.StatusEntry{Status: status, At: h.clock(), ActorID: "seed"})
	h.repo.Put(snap)
	app, err = h.repo.FindByID(context.Background(), resp.ID)
	require.NoError(t, err)
	return app
}
