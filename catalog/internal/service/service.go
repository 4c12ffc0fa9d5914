package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/alaaeid/catalog-service/catalog/internal/errs"
	"github.com/alaaeid/catalog-service/catalog/internal/model"
	"github.com/alaaeid/catalog-service/catalog/internal/repository"
)

const topRatedLimit = 10

type Service struct {
	log  *zap.Logger
	repo repository.Repository
	now  func() time.Time
}

func NewService(repo repository.Repository, log *zap.Logger) *Service {
	return &Service{
		log:  log,
		repo: repo,
		now:  time.Now,
	}
}

// ListBooks returns the collection, optionally narrowed to books whose
// datePublished falls within the inclusive [startDate, endDate] range. A
// missing bound leaves that side open. Books without a parsable
// datePublished are excluded once a bound is active.
func (s *Service) ListBooks(ctx context.Context, startDate, endDate string) ([]model.Book, error) {
	var (
		start, end time.Time
		err        error
	)
	if startDate != "" {
		if start, err = parseDate(startDate); err != nil {
			return nil, errs.ErrInvalidDate
		}
	}
	if endDate != "" {
		if end, err = parseDate(endDate); err != nil {
			return nil, errs.ErrInvalidDate
		}
	}

	books, err := s.repo.LoadBooks(ctx)
	if err != nil {
		return nil, err
	}
	if startDate == "" && endDate == "" {
		return books, nil
	}

	filtered := make([]model.Book, 0, len(books))
	for _, b := range books {
		pub, err := parseDate(b.DatePublished)
		if err != nil {
			continue
		}
		if startDate != "" && pub.Before(start) {
			continue
		}
		if endDate != "" && pub.After(end) {
			continue
		}
		filtered = append(filtered, b)
	}
	return filtered, nil
}

func (s *Service) GetBook(ctx context.Context, id string) (model.Book, error) {
	books, err := s.repo.LoadBooks(ctx)
	if err != nil {
		return model.Book{}, err
	}
	for _, b := range books {
		if b.ID == id {
			return b, nil
		}
	}
	return model.Book{}, errs.ErrNotFound
}

// ListReviews returns every review for the given book id. An unknown book
// yields an empty result, not an error.
func (s *Service) ListReviews(ctx context.Context, bookID string) ([]model.Review, error) {
	reviews, err := s.repo.LoadReviews(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]model.Review, 0, len(reviews))
	for _, rv := range reviews {
		if rv.BookID == bookID {
			matched = append(matched, rv)
		}
	}
	return matched, nil
}

// TopRated ranks books by rating x reviewCount, descending, ties keeping
// collection order, and returns at most the first ten.
func (s *Service) TopRated(ctx context.Context) ([]model.RatedBook, error) {
	books, err := s.repo.LoadBooks(ctx)
	if err != nil {
		return nil, err
	}
	rated := make([]model.RatedBook, 0, len(books))
	for _, b := range books {
		rated = append(rated, model.RatedBook{
			Book:  b,
			Score: b.Rating * float64(b.ReviewCount),
		})
	}
	sort.SliceStable(rated, func(i, j int) bool {
		return rated[i].Score > rated[j].Score
	})
	if len(rated) > topRatedLimit {
		rated = rated[:topRatedLimit]
	}
	return rated, nil
}

func (s *Service) Featured(ctx context.Context) ([]model.Book, error) {
	books, err := s.repo.LoadBooks(ctx)
	if err != nil {
		return nil, err
	}
	featured := make([]model.Book, 0, len(books))
	for _, b := range books {
		if b.Featured != nil && *b.Featured {
			featured = append(featured, b)
		}
	}
	return featured, nil
}

// CreateBook validates the candidate, fills defaults for fields the caller
// left unset, allocates the next id and appends it to the collection.
func (s *Service) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	if book.Title == "" || book.Author == "" {
		return model.Book{}, errs.NewValidationError("title and author are required")
	}
	err := s.repo.UpdateBooks(ctx, func(books []model.Book) ([]model.Book, error) {
		book.ID = nextBookID(books)
		applyBookDefaults(&book)
		return append(books, book), nil
	})
	if err != nil {
		return model.Book{}, err
	}
	s.log.Debug("book created", zap.String("id", book.ID))
	return book, nil
}

// CreateReview validates the candidate against the current books snapshot,
// allocates the next review id, stamps the server timestamp and appends it
// to the collection. Nothing is allocated or persisted for rejected input.
func (s *Service) CreateReview(ctx context.Context, review model.Review) (model.Review, error) {
	if err := validateReview(review); err != nil {
		return model.Review{}, err
	}
	books, err := s.repo.LoadBooks(ctx)
	if err != nil {
		return model.Review{}, err
	}
	if !bookExists(books, review.BookID) {
		return model.Review{}, errs.NewValidationError("invalid bookId: book does not exist")
	}

	err = s.repo.UpdateReviews(ctx, func(reviews []model.Review) ([]model.Review, error) {
		review.ID = nextReviewID(reviews)
		review.Timestamp = s.now().UTC().Format(time.RFC3339)
		if review.Verified == nil {
			verified := false
			review.Verified = &verified
		}
		return append(reviews, review), nil
	})
	if err != nil {
		return model.Review{}, err
	}
	s.log.Debug("review created", zap.String("id", review.ID), zap.String("bookId", review.BookID))
	return review, nil
}

// applyBookDefaults fires only on unset fields: an explicit false for
// inStock or featured survives. Rating and reviewCount default through the
// zero value, so an explicit 0 and an absent field land the same.
func applyBookDefaults(book *model.Book) {
	if book.InStock == nil {
		inStock := true
		book.InStock = &inStock
	}
	if book.Featured == nil {
		featured := false
		book.Featured = &featured
	}
}

// validateReview checks presence before range: a zero rating is rejected
// as missing, never reaching the bounds check.
func validateReview(review model.Review) error {
	if review.BookID == "" || review.Author == "" || review.Rating == 0 ||
		review.Title == "" || review.Comment == "" {
		return errs.NewValidationError("bookId, author, rating, title, and comment are required")
	}
	if review.Rating < 1 || review.Rating > 5 {
		return errs.NewValidationError("rating must be an integer between 1 and 5")
	}
	return nil
}

func bookExists(books []model.Book, id string) bool {
	for _, b := range books {
		if b.ID == id {
			return true
		}
	}
	return false
}

// parseDate accepts plain YYYY-MM-DD dates and full RFC3339 timestamps.
func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}
