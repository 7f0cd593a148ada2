package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/eventala/eventala/internal/core/model"
	"github.com/eventala/eventala/internal/core/ports"
)

// StockServiceArgs contains the mandatory arguments for the StockService.
type StockServiceArgs struct {
	// Stocks is the stock document store.
	Stocks ports.StockStore
}

// NewStockService creates a new StockService.
func NewStockService(args StockServiceArgs) *StockService {
	return &StockService{stocks: args.Stocks}
}

// StockService gathers the functionality around stock items. Stock carries
// no relationship to events.
type StockService struct {
	stocks ports.StockStore
}

// CreateStock creates a stock item with a generated immutable id.
func (s *StockService) CreateStock(ctx context.Context, args model.CreateStockArgs) (*model.CreateStockResponse, error) {
	stock := &model.Stock{
		StockID:  uuid.NewString(),
		Label:    args.Label,
		Quantity: args.Quantity,
	}
	if err := s.stocks.PutStock(ctx, stock); err != nil {
		return nil, fmt.Errorf("error saving stock: %w", err)
	}
	return &model.CreateStockResponse{Stock: *stock}, nil
}

// GetStock fetches a stock item by id.
func (s *StockService) GetStock(ctx context.Context, stockID string) (*model.Stock, error) {
	stock, err := s.stocks.GetStock(ctx, stockID)
	if err != nil {
		return nil, fmt.Errorf("error fetching stock: %w", err)
	}
	return stock, nil
}

// ListStocks scans all stock items.
func (s *StockService) ListStocks(ctx context.Context) ([]model.Stock, error) {
	stocks, err := s.stocks.ListStocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing stocks: %w", err)
	}
	return stocks, nil
}

// UpdateStock replaces the descriptive fields of a stock item.
func (s *StockService) UpdateStock(ctx context.Context, args model.UpdateStockArgs) (*model.UpdateStockResponse, error) {
	for attempt := 0; attempt < editRetries; attempt++ {
		stock, err := s.stocks.GetStock(ctx, args.StockID)
		if err != nil {
			return nil, fmt.Errorf("error fetching stock: %w", err)
		}

		stock.Label = args.Label
		stock.Quantity = args.Quantity

		err = s.stocks.PutStock(ctx, stock)
		if err == nil {
			return &model.UpdateStockResponse{Stock: *stock}, nil
		}
		if !errors.Is(err, model.ErrConflict) {
			return nil, fmt.Errorf("error writing stock: %w", err)
		}
	}
	return nil, model.ErrConflict
}

// DeleteStock removes the stock item.
func (s *StockService) DeleteStock(ctx context.Context, stockID string) error {
	if err := s.stocks.DeleteStock(ctx, stockID); err != nil {
		return fmt.Errorf("error deleting stock: %w", err)
	}
	return nil
}
