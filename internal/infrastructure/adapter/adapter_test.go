package adapter

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/pkg/events"
)

func TestStubBlacklistChecker(t *testing.T) {
	c := NewStubBlacklistChecker()
	ctx := context.Background()

	hit, err := c.IsBlacklisted(ctx, "CC", "1020304000")
	require.NoError(t, err)
	assert.True(t, hit)

	hit, err = c.IsBlacklisted(ctx, "CC", "1020304050")
	require.NoError(t, err)
	assert.False(t, hit)

	_, err = c.IsBlacklisted(ctx, "CC", "  ")
	assert.Error(t, err)
}

func TestStubRiskCentralsChecker(t *testing.T) {
	c := NewStubRiskCentralsChecker()
	ctx := context.Background()

	tests := []struct {
		experience string
		want       bool
	}{
		{"", false},
		{"two credit cards always paid on time", false},
		{"Reportado en centrales por mora en 2022", true},
		{"loan in DEFAULT since 2021", true},
	}
	for _, tt := range tests {
		t.Run(tt.experience, func(t *testing.T) {
			got, err := c.HasAdverseRecords(ctx, model.Applicant{DocumentNumber: "1020304050", CreditExperience: tt.experience})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := c.HasAdverseRecords(ctx, model.Applicant{})
	assert.Error(t, err)
}

func TestLinkSignatureProvider(t *testing.T) {
	p, err := NewLinkSignatureProvider("https://sign.bib.local/contracts")
	require.NoError(t, err)

	link, token, err := p.CreateLink(context.Background(), "app-1", "RAD-2026-0406-00001")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/contracts/RAD-2026-0406-00001", u.Path)
	assert.Equal(t, token, u.Query().Get("token"))

	_, second, err := p.CreateLink(context.Background(), "app-1", "RAD-2026-0406-00001")
	require.NoError(t, err)
	assert.NotEqual(t, token, second)

	_, _, err = p.CreateLink(context.Background(), "", "RAD-2026-0406-00001")
	assert.Error(t, err)

	_, err = NewLinkSignatureProvider("ftp://files")
	assert.Error(t, err)
}

func TestLogSinks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	require.NoError(t, NewLogNotificationSink(logger).Notify(context.Background(), port.Notification{
		UserID: "applicant-1", Type: "CREDIT_APPLICATION_RETURNED",
	}))
	require.NoError(t, NewLogAuditSink(logger).LogAction(context.Background(), port.AuditRecord{
		Action: "RETURN", ResourceID: "app-1",
	}))
	require.NoError(t, NewLogEventPublisher(logger).Publish(context.Background(), events.OutboxEntry{
		ID: "evt-1", EventType: "credit.status_changed", AggregateID: "app-1",
	}))

	assert.Contains(t, buf.String(), "type=CREDIT_APPLICATION_RETURNED")
	assert.Contains(t, buf.String(), "action=RETURN")
	assert.Contains(t, buf.String(), "event_type=credit.status_changed")
}
