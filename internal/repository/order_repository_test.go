package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"testing"
	"time"

	"stayraw/internal/domain"

	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	// Bring the schema up with the real migrations.
	if err := goose.SetDialect("postgres"); err != nil {
		return dbContainer.Terminate, err
	}
	if err := goose.Up(testDB, "../../migrations"); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

func mustParseDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func sampleOrder(t *testing.T, id string, userID int64, createdAt time.Time) *domain.Order {
	t.Helper()
	return &domain.Order{
		ID:             id,
		UserID:         userID,
		UserName:       "John Doe",
		Status:         domain.OrderStatusPlaced,
		Subtotal:       mustParseDecimal(t, "799.00"),
		GSTAmount:      mustParseDecimal(t, "39.95"),
		DeliveryCharge: mustParseDecimal(t, "50.00"),
		DiscountAmount: mustParseDecimal(t, "0.00"),
		TotalAmount:    mustParseDecimal(t, "888.95"),
		Address:        "12 Main St",
		Phone:          "5551234",
		CreatedAt:      createdAt,
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 1, Price: mustParseDecimal(t, "799.00"), Size: "M"},
		},
	}
}

func TestOrderCreateAndFindRoundTrip(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	order := sampleOrder(t, "SR-roundtrip", 10, time.Now().UTC().Truncate(time.Second))
	order.DiscountCode = "SAVE50"
	order.DiscountAmount = mustParseDecimal(t, "50.00")
	order.TotalAmount = mustParseDecimal(t, "838.95")

	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if order.Items[0].ID == 0 {
		t.Error("item id was not written back")
	}

	found, err := repo.FindByID(ctx, "SR-roundtrip")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}

	if found.UserName != "John Doe" {
		t.Errorf("user name = %q, want John Doe", found.UserName)
	}
	if found.Status != domain.OrderStatusPlaced {
		t.Errorf("status = %q, want Placed", found.Status)
	}
	if found.DiscountCode != "SAVE50" {
		t.Errorf("discount code = %q, want SAVE50", found.DiscountCode)
	}
	if !found.TotalAmount.Equal(order.TotalAmount) {
		t.Errorf("total = %s, want %s", found.TotalAmount, order.TotalAmount)
	}
	if !found.GSTAmount.Equal(order.GSTAmount) {
		t.Errorf("gst = %s, want %s", found.GSTAmount, order.GSTAmount)
	}
	if len(found.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(found.Items))
	}
	if !found.Items[0].Price.Equal(order.Items[0].Price) {
		t.Errorf("item price = %s, want %s", found.Items[0].Price, order.Items[0].Price)
	}
	if found.Items[0].Size != "M" {
		t.Errorf("item size = %q, want M", found.Items[0].Size)
	}
}

func TestOrderWithoutDiscountStoresNullCode(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	order := sampleOrder(t, "SR-nodiscount", 11, time.Now().UTC())
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var code sql.NullString
	if err := testDB.QueryRow(`SELECT discount_code FROM orders WHERE id = $1`, "SR-nodiscount").Scan(&code); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if code.Valid {
		t.Errorf("expected NULL discount_code, got %q", code.String)
	}

	found, err := repo.FindByID(ctx, "SR-nodiscount")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.DiscountCode != "" {
		t.Errorf("discount code = %q, want empty", found.DiscountCode)
	}
}

func TestOrderItemsSurviveProductDeletion(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	order := sampleOrder(t, "SR-dangling", 12, time.Now().UTC())
	// No product with this id exists; the snapshot must still persist.
	order.Items[0].ProductID = 987654

	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create with dangling product reference failed: %v", err)
	}

	found, err := repo.FindByID(ctx, "SR-dangling")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Items[0].ProductID != 987654 {
		t.Errorf("product id = %d, want 987654", found.Items[0].ProductID)
	}
}

func TestUpdateStatusKeepsReturnReason(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	order := sampleOrder(t, "SR-return", 13, time.Now().UTC())
	order.Status = domain.OrderStatusDelivered
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.UpdateStatus(ctx, "SR-return", domain.OrderStatusDelivered, domain.OrderStatusReturnRequested, "does not fit"); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	found, err := repo.FindByID(ctx, "SR-return")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Status != domain.OrderStatusReturnRequested {
		t.Errorf("status = %q, want Return Requested", found.Status)
	}
	if found.ReturnReason != "does not fit" {
		t.Errorf("return reason = %q, want %q", found.ReturnReason, "does not fit")
	}

	// A later update with no reason must not erase the stored one.
	if err := repo.UpdateStatus(ctx, "SR-return", domain.OrderStatusReturnRequested, domain.OrderStatusReturned, ""); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	found, err = repo.FindByID(ctx, "SR-return")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.ReturnReason != "does not fit" {
		t.Errorf("return reason after second update = %q, want %q", found.ReturnReason, "does not fit")
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	repo := NewOrderRepository(testDB)

	err := repo.UpdateStatus(context.Background(), "SR-missing", domain.OrderStatusPlaced, domain.OrderStatusDispatched, "")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestUpdateStatusStaleReadConflicts(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	order := sampleOrder(t, "SR-race", 14, time.Now().UTC())
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Two admins read the same Placed order; the first cancels it.
	if err := repo.UpdateStatus(ctx, "SR-race", domain.OrderStatusPlaced, domain.OrderStatusCancelled, ""); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	// The second write still carries the stale Placed read and must lose.
	err := repo.UpdateStatus(ctx, "SR-race", domain.OrderStatusPlaced, domain.OrderStatusDispatched, "")
	if !errors.Is(err, ErrOrderStatusConflict) {
		t.Errorf("expected ErrOrderStatusConflict, got %v", err)
	}

	found, err := repo.FindByID(ctx, "SR-race")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Status != domain.OrderStatusCancelled {
		t.Errorf("status = %q, want Cancelled", found.Status)
	}
}

func TestListByUserNewestFirst(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"SR-hist-1", "SR-hist-2", "SR-hist-3"} {
		order := sampleOrder(t, id, 20, base.Add(time.Duration(i)*time.Minute))
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	orders, err := repo.ListByUser(ctx, 20)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("orders = %d, want 3", len(orders))
	}
	if orders[0].ID != "SR-hist-3" || orders[2].ID != "SR-hist-1" {
		t.Errorf("unexpected ordering: %s, %s, %s", orders[0].ID, orders[1].ID, orders[2].ID)
	}
	for _, order := range orders {
		if len(order.Items) != 1 {
			t.Errorf("order %s items = %d, want 1", order.ID, len(order.Items))
		}
	}
}

func TestHasDeliveredProductCountsOnlyDelivered(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	order := sampleOrder(t, "SR-purchase", 30, time.Now().UTC())
	order.Items[0].ProductID = 77
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	delivered, err := repo.HasDeliveredProduct(ctx, 30, 77)
	if err != nil {
		t.Fatalf("HasDeliveredProduct failed: %v", err)
	}
	if delivered {
		t.Error("Placed order must not count as delivered")
	}

	if err := repo.UpdateStatus(ctx, "SR-purchase", domain.OrderStatusPlaced, domain.OrderStatusDelivered, ""); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	delivered, err = repo.HasDeliveredProduct(ctx, 30, 77)
	if err != nil {
		t.Fatalf("HasDeliveredProduct failed: %v", err)
	}
	if !delivered {
		t.Error("Delivered order must count as delivered")
	}

	// A different user never inherits the purchase.
	delivered, err = repo.HasDeliveredProduct(ctx, 31, 77)
	if err != nil {
		t.Fatalf("HasDeliveredProduct failed: %v", err)
	}
	if delivered {
		t.Error("another user's delivery must not count")
	}
}
