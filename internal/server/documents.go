package server

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/ribbon-tracker/internal/common"
	"github.com/joseph-ayodele/ribbon-tracker/internal/entity"
)

// ListDocuments lists ledger entries, newest first.
func (s *RibbonService) ListDocuments(ctx context.Context, req *ListDocumentsRequest) (*ListDocumentsResponse, error) {
	if s.ledger == nil {
		return nil, status.Error(codes.FailedPrecondition, "document ledger is not configured")
	}
	v := common.NewValidator().Field("limit", req.Limit, common.NonNegative)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	docs, err := s.ledger.List(ctx, req.Limit)
	if err != nil {
		s.logger.Error("failed to list documents", "error", err)
		return nil, common.InternalErrorf("list documents: %v", err)
	}
	if docs == nil {
		docs = []*entity.ProcessedDocument{}
	}
	return &ListDocumentsResponse{Documents: docs}, nil
}
