package repositories

import (
	"context"
	"errors"
	"fmt"

	"ayah/internal/clientstore"
	"ayah/internal/models"
)

// OrderRepository keeps the last completed order of a client. There is no server-side order
// history; each save replaces the previous snapshot.
type OrderRepository interface {
	SaveLast(ctx context.Context, order *models.Order) error
	GetLast(ctx context.Context) (*models.Order, error)
}

// ClientOrderRepository stores the snapshot in the client's store under "lastOrder".
type ClientOrderRepository struct {
	scope clientstore.Scoped
}

// NewClientOrderRepository creates a repository bound to one client.
func NewClientOrderRepository(scope clientstore.Scoped) *ClientOrderRepository {
	return &ClientOrderRepository{
		scope: scope,
	}
}

// SaveLast overwrites the last order snapshot.
func (r *ClientOrderRepository) SaveLast(ctx context.Context, order *models.Order) error {
	if err := r.scope.SetJSON(ctx, clientstore.KeyLastOrder, order); err != nil {
		return fmt.Errorf("failed to save order %s: %w", order.OrderID, err)
	}
	return nil
}

// GetLast reads the last order snapshot.
func (r *ClientOrderRepository) GetLast(ctx context.Context) (*models.Order, error) {
	var order models.Order
	if err := r.scope.GetJSON(ctx, clientstore.KeyLastOrder, &order); err != nil {
		if errors.Is(err, clientstore.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to read last order: %w", err)
	}
	return &order, nil
}
