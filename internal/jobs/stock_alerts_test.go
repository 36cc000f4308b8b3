package jobs

import (
	"context"
	"errors"
	"testing"

	"catalog/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockPriceRepository mocks the ProductVariantPriceRepository interface for testing
type MockPriceRepository struct {
	mock.Mock
}

func (m *MockPriceRepository) Create(ctx context.Context, price *models.ProductVariantPrice) error {
	return m.Called(ctx, price).Error(0)
}

func (m *MockPriceRepository) Update(ctx context.Context, price *models.ProductVariantPrice) error {
	return m.Called(ctx, price).Error(0)
}

func (m *MockPriceRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductVariantPrice, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]*models.ProductVariantPrice), args.Error(1)
}

func (m *MockPriceRepository) DeleteByIDs(ctx context.Context, productID uuid.UUID, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, productID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPriceRepository) FindProductIDsByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]uuid.UUID, error) {
	args := m.Called(ctx, min, max)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockPriceRepository) FindProductIDsByOptionText(ctx context.Context, text string) ([]uuid.UUID, error) {
	args := m.Called(ctx, text)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockPriceRepository) ListSummaries(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]models.PriceRowSummary, error) {
	args := m.Called(ctx, productIDs)
	return args.Get(0).(map[uuid.UUID][]models.PriceRowSummary), args.Error(1)
}

func (m *MockPriceRepository) FindLowStock(ctx context.Context, threshold int) ([]*models.StockLevel, error) {
	args := m.Called(ctx, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StockLevel), args.Error(1)
}

type StockAlertServiceTestSuite struct {
	suite.Suite
	repo    *MockPriceRepository
	service *StockAlertService
	ctx     context.Context
}

func (suite *StockAlertServiceTestSuite) SetupTest() {
	suite.repo = new(MockPriceRepository)
	suite.service = NewStockAlertService(suite.repo)
	suite.ctx = context.Background()
}

func (suite *StockAlertServiceTestSuite) TearDownTest() {
	suite.repo.AssertExpectations(suite.T())
}

func TestStockAlertServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StockAlertServiceTestSuite))
}

func (suite *StockAlertServiceTestSuite) TestCheckLowStock_ReturnsRows() {
	levels := []*models.StockLevel{
		{PriceRowID: uuid.New(), ProductTitle: "Shirt", VariantTitle: "Red/Large", Stock: 0},
		{PriceRowID: uuid.New(), ProductTitle: "Shirt", VariantTitle: "Blue", Stock: 3},
	}
	suite.repo.On("FindLowStock", suite.ctx, 3).Return(levels, nil).Once()

	got, err := suite.service.CheckLowStock(suite.ctx, 3)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), levels, got)
	suite.service.LogLowStockAlerts(got, 3)
}

func (suite *StockAlertServiceTestSuite) TestCheckLowStock_NegativeThresholdUsesDefault() {
	suite.repo.On("FindLowStock", suite.ctx, defaultLowStockThreshold).Return([]*models.StockLevel{}, nil).Once()

	got, err := suite.service.CheckLowStock(suite.ctx, -1)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), got)
	suite.service.LogLowStockAlerts(got, defaultLowStockThreshold)
}

func (suite *StockAlertServiceTestSuite) TestCheckLowStock_RepoError() {
	suite.repo.On("FindLowStock", suite.ctx, 5).Return(nil, errors.New("db down")).Once()

	got, err := suite.service.CheckLowStock(suite.ctx, 5)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), got)
}
