package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/activity"
)

// ActivityService reads the audit log for the admin export route.
type ActivityService struct {
	repo activity.Repository
}

// NewActivityService builds the activity service.
func NewActivityService(repo activity.Repository) *ActivityService {
	return &ActivityService{repo: repo}
}

func (s *ActivityService) ListByStore(ctx context.Context, storeID int64, limit int) ([]*activity.Entry, error) {
	return s.repo.ListByStore(ctx, storeID, limit)
}

// ExportCSV streams a store's audit log as CSV.
func (s *ActivityService) ExportCSV(ctx context.Context, storeID int64, limit int, w io.Writer) error {
	entries, err := s.repo.ListByStore(ctx, storeID, limit)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"entry_uid", "created_at", "actor_uid", "action", "order_id", "reference", "detail"}); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			e.EntryUID,
			e.CreatedAt.Format(time.RFC3339),
			e.ActorUID,
			e.Action,
			strconv.FormatInt(e.OrderID, 10),
			e.Reference,
			e.Detail,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
