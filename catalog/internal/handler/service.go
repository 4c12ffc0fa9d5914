package handler

import (
	"context"

	"github.com/alaaeid/catalog-service/catalog/internal/model"
	"github.com/alaaeid/catalog-service/catalog/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CatalogService interface {
	ListBooks(ctx context.Context, startDate, endDate string) ([]model.Book, error)
	GetBook(ctx context.Context, id string) (model.Book, error)
	ListReviews(ctx context.Context, bookID string) ([]model.Review, error)
	TopRated(ctx context.Context) ([]model.RatedBook, error)
	Featured(ctx context.Context) ([]model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	CreateReview(ctx context.Context, review model.Review) (model.Review, error)
}

var _ CatalogService = (*service.Service)(nil)
