package service

import (
	"context"
	"encoding/json"
	"testing"

	"receivables/internal/config"
	"receivables/internal/model"
	"receivables/internal/repository"
	"receivables/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func amountPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func eventsConfig(enabled bool) *config.Config {
	cfg := &config.Config{}
	cfg.Kafka.Enabled = enabled
	cfg.Kafka.Topic.PaymentEvents = "payment_events"
	return cfg
}

func newPaymentService(t *testing.T, events bool) (*PaymentService, *gorm.DB) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	return NewPaymentService(db, eventsConfig(events), zap.NewNop()), db
}

func createPayment(t *testing.T, svc *PaymentService, date, amount string) *model.Payment {
	t.Helper()
	p, err := svc.Create(context.Background(), &CreatePaymentRequest{
		Date:         date,
		CustomerID:   "c1",
		CustomerName: "上海宏泰塑胶有限公司",
		Amount:       amountPtr(amount),
	})
	require.NoError(t, err)
	return p
}

func outboxRows(t *testing.T, db *gorm.DB) []*model.OutboxMessage {
	t.Helper()
	rows, err := repository.NewOutboxRepository(db).GetPendingMessages(context.Background(), 100)
	require.NoError(t, err)
	return rows
}

func TestPaymentService_CreateForcesUnverified(t *testing.T) {
	svc, _ := newPaymentService(t, false)

	p := createPayment(t, svc, "2023-11-05", "12800")
	assert.Equal(t, model.PaymentStatusUnverified, p.Status)
	assert.Nil(t, p.BusinessDate)
	assert.Nil(t, p.Remarks)
	assert.NotEmpty(t, p.CreatedAt)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
	assert.True(t, list[0].Amount.Equal(decimal.NewFromInt(12800)))
}

func TestPaymentService_VerifyAndUndo(t *testing.T) {
	svc, _ := newPaymentService(t, false)
	ctx := context.Background()

	a := createPayment(t, svc, "2023-11-05", "100")
	b := createPayment(t, svc, "2023-11-06", "200")
	c := createPayment(t, svc, "2023-11-07", "300")

	require.NoError(t, svc.Verify(ctx, &VerifyRequest{
		IDs:          []string{a.ID, b.ID, a.ID},
		BusinessDate: strPtr("2023-12-01"),
		Remarks:      strPtr("月结款项"),
	}))

	byID := func() map[string]*model.Payment {
		list, err := svc.List(ctx)
		require.NoError(t, err)
		m := make(map[string]*model.Payment, len(list))
		for _, p := range list {
			m[p.ID] = p
		}
		return m
	}

	got := byID()
	for _, id := range []string{a.ID, b.ID} {
		assert.Equal(t, model.PaymentStatusVerified, got[id].Status)
		assert.Equal(t, "2023-12-01", *got[id].BusinessDate)
		assert.Equal(t, "月结款项", *got[id].Remarks)
	}
	assert.Equal(t, model.PaymentStatusUnverified, got[c.ID].Status)

	require.NoError(t, svc.UndoVerification(ctx, a.ID))
	got = byID()
	assert.Equal(t, model.PaymentStatusUnverified, got[a.ID].Status)
	assert.Nil(t, got[a.ID].BusinessDate)
	assert.Nil(t, got[a.ID].Remarks)
	assert.Equal(t, model.PaymentStatusVerified, got[b.ID].Status)

	// 空列表不报错
	require.NoError(t, svc.Verify(ctx, &VerifyRequest{IDs: []string{}}))
	// 不存在的记录撤销也视为成功
	require.NoError(t, svc.UndoVerification(ctx, "missing"))
}

func TestPaymentService_Update(t *testing.T) {
	svc, _ := newPaymentService(t, false)
	ctx := context.Background()
	p := createPayment(t, svc, "2023-11-05", "100")

	updated, err := svc.Update(ctx, p.ID, &UpdatePaymentRequest{
		Date:         "2023-11-08",
		CustomerID:   "c2",
		CustomerName: "深圳飞龙模具制造厂",
		Amount:       amountPtr("150.25"),
		Status:       model.PaymentStatusVerified,
		BusinessDate: strPtr("2023-11-09"),
		Remarks:      strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "2023-11-08", updated.Date)
	assert.Equal(t, "c2", updated.CustomerID)
	assert.True(t, updated.Amount.Equal(decimal.RequireFromString("150.25")))
	assert.Equal(t, model.PaymentStatusVerified, updated.Status)
	assert.Equal(t, "2023-11-09", *updated.BusinessDate)
	assert.Nil(t, updated.Remarks, "空备注按 NULL 存储")
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)

	_, err = svc.Update(ctx, p.ID, &UpdatePaymentRequest{
		Date: "2023-11-08", CustomerID: "c2", CustomerName: "x", Amount: amountPtr("1"), Status: "paid",
	})
	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)

	_, err = svc.Update(ctx, "missing", &UpdatePaymentRequest{
		Date: "2023-11-08", CustomerID: "c2", CustomerName: "x", Amount: amountPtr("1"), Status: model.PaymentStatusUnverified,
	})
	assert.ErrorIs(t, err, repository.ErrPaymentNotFound)
}

func TestPaymentService_DeleteIsIdempotent(t *testing.T) {
	svc, _ := newPaymentService(t, false)
	ctx := context.Background()
	p := createPayment(t, svc, "2023-11-05", "100")

	require.NoError(t, svc.Delete(ctx, p.ID))
	require.NoError(t, svc.Delete(ctx, p.ID))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPaymentService_WritesOutboxWhenEventsEnabled(t *testing.T) {
	svc, db := newPaymentService(t, true)
	ctx := context.Background()

	p := createPayment(t, svc, "2023-11-05", "100")
	require.NoError(t, svc.Verify(ctx, &VerifyRequest{IDs: []string{p.ID, "missing"}, BusinessDate: strPtr("2023-11-06")}))
	require.NoError(t, svc.UndoVerification(ctx, p.ID))
	require.NoError(t, svc.Delete(ctx, p.ID))
	require.NoError(t, svc.Delete(ctx, p.ID)) // 第二次没有删除任何行，不产生事件

	rows := outboxRows(t, db)
	require.Len(t, rows, 4)

	types := make([]string, 0, len(rows))
	for _, row := range rows {
		types = append(types, row.EventType)
		assert.Equal(t, p.ID, row.MessageKey)
		assert.Equal(t, "payment_events", row.Topic)
	}
	assert.Equal(t, []string{
		model.EventPaymentCreated,
		model.EventPaymentVerified,
		model.EventPaymentUnverified,
		model.EventPaymentDeleted,
	}, types)

	var event paymentEvent
	require.NoError(t, json.Unmarshal([]byte(rows[0].Payload), &event))
	assert.Equal(t, model.EventPaymentCreated, event.Type)
	assert.Equal(t, p.ID, event.PaymentID)
	assert.NotEmpty(t, event.EventID)
}

func TestPaymentService_NoOutboxWhenEventsDisabled(t *testing.T) {
	svc, db := newPaymentService(t, false)
	createPayment(t, svc, "2023-11-05", "100")

	assert.Empty(t, outboxRows(t, db))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, dedupe([]string{"a", "b", "a", "c", "b"}))
	assert.Empty(t, dedupe(nil))
}
