package grpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/application/usecase"
	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/service"
	"github.com/bibbank/credit-service/internal/infrastructure/adapter"
	"github.com/bibbank/credit-service/internal/infrastructure/config"
	"github.com/bibbank/credit-service/internal/infrastructure/metrics"
	"github.com/bibbank/credit-service/internal/infrastructure/persistence/memory"
	"github.com/bibbank/credit-service/pkg/auth"
	"github.com/prometheus/client_golang/prometheus"
)

type testClient struct {
	conn *grpclib.ClientConn
	jwt  *auth.JWTService
}

func startServer(t *testing.T) *testClient {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rules, err := service.NewApprovalRules(service.DefaultRulesConfig())
	require.NoError(t, err)
	signature, err := adapter.NewLinkSignatureProvider("https://sign.example.com")
	require.NoError(t, err)

	suite := usecase.NewSuite(usecase.Dependencies{
		Repo:      memory.NewApplicationRepo(),
		Notifier:  adapter.NewLogNotificationSink(logger),
		Audit:     adapter.NewLogAuditSink(logger),
		Metrics:   metrics.NewPrometheus(prometheus.NewRegistry()),
		Blacklist: adapter.NewStubBlacklistChecker(),
		Risk:      adapter.NewStubRiskCentralsChecker(),
		Signature: signature,
		Rules:     rules,
		Logger:    logger,
		Clock:     func() time.Time { return time.Date(2026, 4, 6, 10, 0, 0, 0, time.UTC) },
	})

	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "bib-credit", Expiration: time.Hour})
	require.NoError(t, err)

	srv, err := NewServer(NewCreditReviewHandler(suite, logger), jwtService, config.GRPCConfig{}, logger)
	require.NoError(t, err)
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.gs.Serve(lis) }()
	t.Cleanup(srv.GracefulStop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
		grpclib.WithDefaultCallOptions(grpclib.CallContentSubtype(CodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &testClient{conn: conn, jwt: jwtService}
}

func (c *testClient) as(t *testing.T, actorID string, roles ...string) context.Context {
	t.Helper()
	token, err := c.jwt.GenerateToken(actorID, roles)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func (c *testClient) invoke(ctx context.Context, method string, req, resp any) error {
	return c.conn.Invoke(ctx, FullMethod(method), req, resp)
}

func TestServer_PublicMethodsNeedNoToken(t *testing.T) {
	c := startServer(t)

	var level dto.ApprovalLevelResponse
	require.NoError(t, c.invoke(context.Background(), "GetRequiredApprovalLevel",
		&ApprovalLevelRequest{Amount: decimal.NewFromInt(3_000)}, &level))
	assert.Equal(t, "AUTO", level.Level)

	var plan model.AmortizationPlan
	require.NoError(t, c.invoke(context.Background(), "CalculateAmortization", &dto.AmortizationRequest{
		Principal:         decimal.NewFromInt(20_000_000),
		AnnualRatePercent: decimal.NewFromInt(18),
		TermMonths:        24,
		StartDate:         "2026-01-15",
	}, &plan))
	assert.Len(t, plan.Schedule, 24)
}

func TestServer_ProtectedMethodsNeedToken(t *testing.T) {
	c := startServer(t)

	var resp dto.InboxResponse
	err := c.invoke(context.Background(), "ListInbox", &dto.ListInboxRequest{Stage: "analyst1"}, &resp)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestServer_IntakeAndReviewFlow(t *testing.T) {
	c := startServer(t)
	applicantCtx := c.as(t, "applicant-1", auth.RoleApplicant)

	var created dto.ApplicationResponse
	require.NoError(t, c.invoke(applicantCtx, "CreateApplication", &dto.CreateApplicationRequest{
		Source: "web",
		Applicant: dto.ApplicantInput{
			FirstName:       "Valentina",
			LastName:        "Gómez",
			DocumentType:    "CC",
			DocumentNumber:  "1020304050",
			Email:           "v.gomez@example.com",
			Phone:           "3001234567",
			DateOfBirth:     "1987-09-14",
			Company:         "Andes Logistics",
			CompanyPhone:    "6015550100",
			Position:        "Coordinator",
			ContractType:    "indefinite",
			AdmissionDate:   "2018-02-01",
			MonthlyIncome:   decimal.NewFromInt(6_000_000),
			MonthlyExpenses: decimal.NewFromInt(1_200_000),
			RequestedAmount: decimal.NewFromInt(20_000_000),
			TermMonths:      24,
		},
	}, &created))
	assert.Equal(t, "SUBMITTED", created.Status)
	assert.Equal(t, "applicant-1", created.SubmitterID)

	var review dto.StartReviewResponse
	analystCtx := c.as(t, "analyst-1", auth.RoleAnalyst1)
	require.NoError(t, c.invoke(analystCtx, "StartReview", &dto.ApplicationRef{ApplicationID: created.ID}, &review))
	assert.Equal(t, "ANALYST1_REVIEW", review.Application.Status)
	assert.False(t, review.AutoApproved)

	t.Run("wrong stage is permission denied", func(t *testing.T) {
		var resp dto.ApplicationResponse
		err := c.invoke(c.as(t, "analyst-2", auth.RoleAnalyst2), "ProcessApplication", &dto.ProcessApplicationRequest{
			ApplicationID: created.ID, Stage: "analyst1", Action: "APPROVE",
		}, &resp)
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("return without reason is invalid argument", func(t *testing.T) {
		var resp dto.ApplicationResponse
		err := c.invoke(analystCtx, "ProcessApplication", &dto.ProcessApplicationRequest{
			ApplicationID: created.ID, Stage: "analyst1", Action: "RETURN",
		}, &resp)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("approve moves to stage 2", func(t *testing.T) {
		var resp dto.ApplicationResponse
		require.NoError(t, c.invoke(analystCtx, "ProcessApplication", &dto.ProcessApplicationRequest{
			ApplicationID: created.ID, Stage: "analyst1", Action: "APPROVE", Reason: "documents complete",
		}, &resp))
		assert.Equal(t, "ANALYST1_APPROVED", resp.Status)
	})

	t.Run("public tracking", func(t *testing.T) {
		var tracking dto.TrackingResponse
		require.NoError(t, c.invoke(context.Background(), "TrackApplication",
			&TrackApplicationRequest{Radication: created.Radication}, &tracking))
		assert.Equal(t, "ANALYST1_APPROVED", tracking.Status)
	})
}

func TestCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{errs.Validation("op", "bad"), codes.InvalidArgument},
		{errs.Permission("op", "no"), codes.PermissionDenied},
		{errs.NotFound("op", "gone"), codes.NotFound},
		{errs.Conflict("op", "stale"), codes.Aborted},
		{errs.IllegalTransition("op", "PAID", "APPROVE"), codes.FailedPrecondition},
		{errs.External("op", errors.New("down")), codes.Unavailable},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CodeFor(tt.err), tt.err.Error())
	}
}

func TestRecoverInterceptor(t *testing.T) {
	interceptor := recoverInterceptor(slog.New(slog.NewTextHandler(io.Discard, nil)))
	info := &grpclib.UnaryServerInfo{FullMethod: FullMethod("GetApplication")}

	resp, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		panic("nil aggregate")
	})
	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestNewServer_BadTLSMaterial(t *testing.T) {
	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: "s", Expiration: time.Minute})
	require.NoError(t, err)

	_, err = NewServer(nil, jwtService, config.GRPCConfig{TLSCertFile: "missing.pem", TLSKeyFile: "missing-key.pem"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorContains(t, err, "grpc tls")
}
