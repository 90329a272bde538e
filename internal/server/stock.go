package server

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/ribbon-tracker/internal/common"
	"github.com/joseph-ayodele/ribbon-tracker/internal/ribbon"
	"github.com/joseph-ayodele/ribbon-tracker/internal/stock"
)

func (s *RibbonService) ListStock(ctx context.Context, req *ListStockRequest) (*ListStockResponse, error) {
	order, err := stock.ParseOrder(req.Sort)
	if err != nil {
		return nil, common.InvalidArgumentErrorf("%v", err)
	}
	entries, err := s.stocks.List(ctx)
	if err != nil {
		s.logger.Error("failed to list stock", "error", err)
		return nil, common.InternalErrorf("list stock: %v", err)
	}
	if entries == nil {
		entries = []stock.Entry{}
	}
	stock.Sort(entries, order)
	return &ListStockResponse{Entries: entries}, nil
}

// SetStock creates or replaces the entry of one colour. The colour is
// normalized first.
func (s *RibbonService) SetStock(ctx context.Context, req *SetStockRequest) (*SetStockResponse, error) {
	v := common.NewValidator().
		Field("colour", req.Colour, common.Required, common.MaxLength(100)).
		Field("quantity", req.Quantity, common.NonNegative)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	colour := ribbon.NormalizeColour(req.Colour)
	if colour == "" {
		return nil, common.InvalidArgumentErrorf("colour %q is empty after normalization", req.Colour)
	}

	seeder, ok := s.stocks.(stock.Seeder)
	if !ok {
		return nil, status.Error(codes.Unimplemented, "stock store does not support seeding")
	}
	if err := seeder.Upsert(ctx, colour, req.Quantity); err != nil {
		s.logger.Error("failed to set stock", "colour", colour, "error", err)
		return nil, common.InternalErrorf("set stock: %v", err)
	}
	s.logger.Info("stock set", "colour", colour, "quantity", req.Quantity, "request_id", common.RequestIDFromContext(ctx))
	return &SetStockResponse{Entry: stock.Entry{Colour: colour, Quantity: req.Quantity}}, nil
}
