package order_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/billing/order"
	"garage-client-api/internal/billing/order/db"
	"garage-client-api/internal/config"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

type capturePublisher struct {
	topics []string
}

func (p *capturePublisher) Publish(topic string, key string, value []byte) error {
	p.topics = append(p.topics, topic)
	return nil
}

var testTopics = config.TopicConfig{
	OrderCreated:   "orders.created",
	OrderProcessed: "orders.processed",
	OrderFailed:    "orders.failed",
}

func setupOrderService(t *testing.T) (*order.Service[*models.ClientPaymentOrder], *bun.DB, *capturePublisher) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	for _, model := range []interface{}{
		(*models.ClientPaymentOrder)(nil),
		(*models.ClientPaymentMethod)(nil),
		(*models.ClientProfile)(nil),
		(*models.Currency)(nil),
		(*models.PremiumOffer)(nil),
	} {
		if _, err := bunDB.NewCreateTable().Model(model).Exec(context.Background()); err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	ctx := context.Background()
	_, err = bunDB.NewInsert().Model(&models.ClientProfile{
		ID: 1, UserID: 100, FirstName: "Nadia", LastName: "Perera", CountryID: 1,
	}).Exec(ctx)
	require.NoError(t, err)
	_, err = bunDB.NewInsert().Model(&models.Currency{ID: 1, CurrDesc: "EUR"}).Exec(ctx)
	require.NoError(t, err)
	_, err = bunDB.NewInsert().Model(&models.PremiumOffer{
		ID: 1, UserTypeID: 1, PremiumDesc: "Client yearly", PremiumCost: 49.99, CurrencyID: 1,
	}).Exec(ctx)
	require.NoError(t, err)
	_, err = bunDB.NewInsert().Model(&models.ClientPaymentMethod{
		ID: 1, ClientID: 1, PaymentType: "Visa", CardNumber: "4111111111111111",
		CardHolderName: "Nadia Perera", IsPrimary: true, IsActive: true,
	}).Exec(ctx)
	require.NoError(t, err)

	publisher := &capturePublisher{}
	log := logger.NewLogger()
	events := order.NewEventPublisher(publisher, testTopics, log)
	store := db.NewStore[models.ClientPaymentOrder](bunDB, "client_id")
	refs := db.NewRefs(bunDB, "client_profiles", "client_payment_methods")
	service := order.NewService[*models.ClientPaymentOrder](store, refs, events, models.OwnerClient, models.ClientOrderPrefix, log)
	return service, bunDB, publisher
}

func newOrder() *models.ClientPaymentOrder {
	return &models.ClientPaymentOrder{
		ClientID:        1,
		Amount:          49.99,
		CurrencyID:      1,
		PaymentMethodID: 1,
		PremiumOfferID:  1,
	}
}

func TestCreateSetsPendingAndOrderNumber(t *testing.T) {
	service, bunDB, publisher := setupOrderService(t)
	defer bunDB.Close()

	o := newOrder()
	require.NoError(t, service.Create(o))

	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.False(t, o.CreatedDate.IsZero())
	assert.Nil(t, o.ProcessedDate)

	pattern := regexp.MustCompile(`^ORD-\d{8}-[A-Z0-9]{8}$`)
	assert.Regexp(t, pattern, o.OrderNumber)
	assert.Contains(t, o.OrderNumber, time.Now().Format("20060102"))

	assert.Equal(t, []string{testTopics.OrderCreated}, publisher.topics)

	got, err := service.GetByOrderNumber(o.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestOrderNumbersAreUnique(t *testing.T) {
	service, bunDB, _ := setupOrderService(t)
	defer bunDB.Close()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		o := newOrder()
		require.NoError(t, service.Create(o))
		assert.False(t, seen[o.OrderNumber])
		seen[o.OrderNumber] = true
	}
}

func TestCreateRejectsMissingReferences(t *testing.T) {
	service, bunDB, publisher := setupOrderService(t)
	defer bunDB.Close()

	cases := []struct {
		name   string
		mutate func(o *models.ClientPaymentOrder)
	}{
		{"missing client", func(o *models.ClientPaymentOrder) { o.ClientID = 99 }},
		{"missing currency", func(o *models.ClientPaymentOrder) { o.CurrencyID = 99 }},
		{"missing offer", func(o *models.ClientPaymentOrder) { o.PremiumOfferID = 99 }},
		{"missing method", func(o *models.ClientPaymentOrder) { o.PaymentMethodID = 99 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := newOrder()
			tc.mutate(o)
			assert.ErrorIs(t, service.Create(o), apperrors.ErrInvalidInput)
		})
	}
	assert.Empty(t, publisher.topics)
}

func TestSettleProcessesPendingOrder(t *testing.T) {
	service, bunDB, publisher := setupOrderService(t)
	defer bunDB.Close()

	o := newOrder()
	require.NoError(t, service.Create(o))

	require.NoError(t, service.Settle(o.ID))

	got, err := service.Get(o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessed, got.Status)
	require.NotNil(t, got.ProcessedDate)
	assert.WithinDuration(t, time.Now(), *got.ProcessedDate, 5*time.Second)

	assert.Equal(t, []string{testTopics.OrderCreated, testTopics.OrderProcessed}, publisher.topics)
}

func TestSettleIsIdempotent(t *testing.T) {
	service, bunDB, publisher := setupOrderService(t)
	defer bunDB.Close()

	o := newOrder()
	require.NoError(t, service.Create(o))
	require.NoError(t, service.Settle(o.ID))

	processed, err := service.Get(o.ID)
	require.NoError(t, err)
	firstProcessedAt := *processed.ProcessedDate

	require.NoError(t, service.Settle(o.ID))

	got, err := service.Get(o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessed, got.Status)
	assert.Equal(t, firstProcessedAt, *got.ProcessedDate)

	// Only one processed event despite two settle calls
	assert.Equal(t, []string{testTopics.OrderCreated, testTopics.OrderProcessed}, publisher.topics)
}

func TestSettleFailsWhenMethodGone(t *testing.T) {
	service, bunDB, publisher := setupOrderService(t)
	defer bunDB.Close()

	o := newOrder()
	require.NoError(t, service.Create(o))

	_, err := bunDB.NewDelete().
		Model((*models.ClientPaymentMethod)(nil)).
		Where("id = ?", 1).
		Exec(context.Background())
	require.NoError(t, err)

	require.NoError(t, service.Settle(o.ID))

	got, err := service.Get(o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusInvalidMethod, got.Status)
	assert.Nil(t, got.ProcessedDate)

	assert.Equal(t, []string{testTopics.OrderCreated, testTopics.OrderFailed}, publisher.topics)
}

func TestSettleSkipsDeletedOrder(t *testing.T) {
	service, bunDB, publisher := setupOrderService(t)
	defer bunDB.Close()

	o := newOrder()
	require.NoError(t, service.Create(o))
	require.NoError(t, service.Delete(o.ID))

	// The scheduled settlement fires after the delete and must do nothing
	require.NoError(t, service.Settle(o.ID))

	_, err := service.Get(o.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, []string{testTopics.OrderCreated}, publisher.topics)
}

func TestDeleteOrder(t *testing.T) {
	service, bunDB, _ := setupOrderService(t)
	defer bunDB.Close()

	o := newOrder()
	require.NoError(t, service.Create(o))

	require.NoError(t, service.Delete(o.ID))
	_, err := service.Get(o.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.ErrorIs(t, service.Delete(o.ID), apperrors.ErrNotFound)
}

// flakyOrderDB delegates to the real store but refuses the Processed write.
type flakyOrderDB struct {
	order.DBLayer[*models.ClientPaymentOrder]
}

func (f *flakyOrderDB) Update(o *models.ClientPaymentOrder) error {
	if o.Status == models.OrderStatusProcessed {
		return errors.New("connection reset")
	}
	return f.DBLayer.Update(o)
}

func TestSettleFailureLeavesNoProcessedDate(t *testing.T) {
	service, bunDB, publisher := setupOrderService(t)
	defer bunDB.Close()

	o := newOrder()
	require.NoError(t, service.Create(o))

	failing := order.NewService[*models.ClientPaymentOrder](
		&flakyOrderDB{DBLayer: service.DB}, service.Refs, service.Events,
		models.OwnerClient, models.ClientOrderPrefix, logger.NewLogger())

	require.NoError(t, failing.Settle(o.ID))

	got, err := service.Get(o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusFailed, got.Status)
	assert.Nil(t, got.ProcessedDate)
	assert.Equal(t, []string{testTopics.OrderCreated, testTopics.OrderFailed}, publisher.topics)
}

func TestUpdateStatusOverride(t *testing.T) {
	service, bunDB, _ := setupOrderService(t)
	defer bunDB.Close()

	o := newOrder()
	require.NoError(t, service.Create(o))

	updated, err := service.UpdateStatus(o.ID, models.OrderStatusProcessed)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessed, updated.Status)
	require.NotNil(t, updated.ProcessedDate)

	// No terminal-state guard: a processed order can be forced to Failed
	updated, err = service.UpdateStatus(o.ID, models.OrderStatusFailed)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusFailed, updated.Status)

	_, err = service.UpdateStatus(o.ID, "Shipped")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = service.UpdateStatus(9999, models.OrderStatusFailed)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	service, bunDB, _ := setupOrderService(t)
	defer bunDB.Close()

	first := newOrder()
	second := newOrder()
	require.NoError(t, service.Create(first))
	require.NoError(t, service.Create(second))
	require.NoError(t, service.Settle(first.ID))

	pending, err := service.ListByStatus(models.OrderStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	byOwner, err := service.ListByOwner(1)
	require.NoError(t, err)
	assert.Len(t, byOwner, 2)

	byMethod, err := service.ListByMethod(1)
	require.NoError(t, err)
	assert.Len(t, byMethod, 2)
}

func TestQueueSettlesAfterDelay(t *testing.T) {
	settled := make(chan int64, 1)
	queue := order.NewQueue(func(orderID int64) error {
		settled <- orderID
		return nil
	}, 20*time.Millisecond, 8, 2, logger.NewLogger())
	defer queue.Stop()

	start := time.Now()
	queue.Schedule(42)

	select {
	case id := <-settled:
		assert.Equal(t, int64(42), id)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("settlement did not run")
	}
}
