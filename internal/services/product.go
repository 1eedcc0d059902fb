package services

import (
	"context"

	"github.com/launchhub-app/apiserver/internal/mq"
	"github.com/launchhub-app/apiserver/internal/policy"
	"github.com/launchhub-app/apiserver/types"
	"go.uber.org/zap"
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	ListModerationQueue(ctx context.Context) ([]types.Product, error)
	ListAccepted(ctx context.Context, search string, offset, limit int) ([]types.Product, int, error)
	ListFeatured(ctx context.Context, limit int) ([]types.Product, error)
	ListTrending(ctx context.Context, limit int) ([]types.Product, error)
	ListByOwner(ctx context.Context, email string) ([]types.Product, error)
	ListReported(ctx context.Context) ([]types.Product, error)
	Get(ctx context.Context, id int) (types.Product, error)
	Create(ctx context.Context, product types.Product) (types.Product, error)
	Update(ctx context.Context, product types.Product) (types.Product, error)
	SetImage(ctx context.Context, id int, imageURL string) error
	Delete(ctx context.Context, id int) error
	ToggleVote(ctx context.Context, id int, email string) (types.Product, policy.VoteAction, error)
	Report(ctx context.Context, id int, email string) error
	IgnoreReport(ctx context.Context, id int) (bool, error)
	Moderate(ctx context.Context, id int, patch policy.ModerationPatch) (bool, error)
}

// ProductService encapsulates product use-cases. Lifecycle events are
// published best-effort; a broker failure never fails the request.
type ProductService struct {
	repo   ProductRepository
	events *mq.EventPublisher
	logger *zap.Logger
}

func NewProductService(repo ProductRepository, events *mq.EventPublisher, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{repo: repo, events: events, logger: logger}
}

func (s *ProductService) ListModerationQueue(ctx context.Context) ([]types.Product, error) {
	return s.repo.ListModerationQueue(ctx)
}

func (s *ProductService) ListAccepted(ctx context.Context, search string, offset, limit int) ([]types.Product, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.ListAccepted(ctx, search, offset, limit)
}

func (s *ProductService) ListFeatured(ctx context.Context, limit int) ([]types.Product, error) {
	return s.repo.ListFeatured(ctx, limit)
}

func (s *ProductService) ListTrending(ctx context.Context, limit int) ([]types.Product, error) {
	return s.repo.ListTrending(ctx, limit)
}

func (s *ProductService) ListByOwner(ctx context.Context, email string) ([]types.Product, error) {
	return s.repo.ListByOwner(ctx, email)
}

func (s *ProductService) ListReported(ctx context.Context) ([]types.Product, error) {
	return s.repo.ListReported(ctx)
}

func (s *ProductService) Get(ctx context.Context, id int) (types.Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, product types.Product) (types.Product, error) {
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return types.Product{}, err
	}
	s.publish(ctx, mq.ProductEvent{
		Type:        mq.EventProductSubmitted,
		ProductID:   created.ID,
		ProductName: created.ProductName,
		Actor:       created.OwnerEmail,
	})
	return created, nil
}

func (s *ProductService) Update(ctx context.Context, product types.Product) (types.Product, error) {
	return s.repo.Update(ctx, product)
}

func (s *ProductService) SetImage(ctx context.Context, id int, imageURL string) error {
	return s.repo.SetImage(ctx, id, imageURL)
}

func (s *ProductService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// ToggleVote resolves the idempotent vote toggle for (product, identity)
// and returns the refreshed product with the server-confirmed direction.
func (s *ProductService) ToggleVote(ctx context.Context, id int, email string) (types.Product, policy.VoteAction, error) {
	return s.repo.ToggleVote(ctx, id, email)
}

// Report files a report for the identity. policy.ErrAlreadyReported is
// passed through so the caller can answer success=false rather than
// treating the duplicate as a failure.
func (s *ProductService) Report(ctx context.Context, id int, email string) error {
	if err := s.repo.Report(ctx, id, email); err != nil {
		return err
	}
	s.publish(ctx, mq.ProductEvent{
		Type:      mq.EventProductReported,
		ProductID: id,
		Actor:     email,
	})
	return nil
}

func (s *ProductService) IgnoreReport(ctx context.Context, id int) (bool, error) {
	return s.repo.IgnoreReport(ctx, id)
}

func (s *ProductService) Moderate(ctx context.Context, id int, actor string, patch policy.ModerationPatch) (bool, error) {
	changed, err := s.repo.Moderate(ctx, id, patch)
	if err != nil || !changed {
		return changed, err
	}
	detail := ""
	if patch.Status != nil {
		detail = *patch.Status
	}
	s.publish(ctx, mq.ProductEvent{
		Type:      mq.EventProductModerated,
		ProductID: id,
		Actor:     actor,
		Detail:    detail,
	})
	return changed, nil
}

func (s *ProductService) publish(ctx context.Context, event mq.ProductEvent) {
	if s.events == nil {
		return
	}
	if _, err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish product event",
			zap.String("type", event.Type),
			zap.Int("productId", event.ProductID),
			zap.Error(err),
		)
	}
}
