// Package repository defines the persistence ports of the storefront.
package repository

import (
	"context"

	"github.com/utafrali/litreads/internal/domain"
)

// Store is a per-visitor key-value namespace, the server-side stand-in for
// browser local storage. Get returns an error wrapping apperrors.ErrNotFound
// when the key is absent.
type Store interface {
	Get(ctx context.Context, visitorID, key string) ([]byte, error)
	Set(ctx context.Context, visitorID, key string, value []byte) error
	Delete(ctx context.Context, visitorID, key string) error
	Ping(ctx context.Context) error
}

// CatalogRepository lists catalog products in declaration order.
type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// Key returns the storage key for key inside the visitor's namespace.
func Key(visitorID, key string) string {
	return "visitor:" + visitorID + ":" + key
}
