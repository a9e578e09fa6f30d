package handler

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/opengive/donation-ledger/internal/api/middleware"
	"github.com/opengive/donation-ledger/internal/auth"
	"github.com/opengive/donation-ledger/internal/coordinator"
	"github.com/opengive/donation-ledger/internal/domain/ngo"
	"github.com/opengive/donation-ledger/internal/domain/transaction"
	"github.com/opengive/donation-ledger/internal/domain/user"
	"github.com/opengive/donation-ledger/internal/gateway"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// asUser injects verified claims the way the auth middleware would
func asUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &auth.Claims{UserID: userID, Username: "tester"})
		c.Next()
	}
}

type MockCoordinator struct{ mock.Mock }

func (m *MockCoordinator) SubmitDirect(ctx context.Context, p coordinator.DirectParams) (*transaction.Transaction, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockCoordinator) CreateOrder(ctx context.Context, ngoID, userID uuid.UUID, amount int64) (*gateway.Order, error) {
	args := m.Called(ctx, ngoID, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Order), args.Error(1)
}

func (m *MockCoordinator) ConfirmPayment(ctx context.Context, p coordinator.ConfirmParams) (*transaction.Transaction, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockCoordinator) GatewayKeyID() string {
	return m.Called().String(0)
}

type MockNGORepo struct{ mock.Mock }

func (m *MockNGORepo) Create(ctx context.Context, n *ngo.NGO) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNGORepo) GetByID(ctx context.Context, id uuid.UUID) (*ngo.NGO, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ngo.NGO), args.Error(1)
}

func (m *MockNGORepo) GetByAdminID(ctx context.Context, adminID uuid.UUID) (*ngo.NGO, error) {
	args := m.Called(ctx, adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ngo.NGO), args.Error(1)
}

func (m *MockNGORepo) List(ctx context.Context) ([]*ngo.NGO, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ngo.NGO), args.Error(1)
}

func (m *MockNGORepo) Update(ctx context.Context, n *ngo.NGO) error {
	return m.Called(ctx, n).Error(0)
}

type MockTransactionRepo struct{ mock.Mock }

func (m *MockTransactionRepo) Create(ctx context.Context, tx *transaction.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) FilterByNGOAndKind(ctx context.Context, ngoID uuid.UUID, kind transaction.Kind) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, ngoID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) WithTx(tx pgx.Tx) transaction.Repository { return m }

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}
