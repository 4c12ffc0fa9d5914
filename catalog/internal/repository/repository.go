package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/alaaeid/catalog-service/catalog/internal/errs"
	"github.com/alaaeid/catalog-service/catalog/internal/model"
)

type Repository interface {
	LoadBooks(ctx context.Context) ([]model.Book, error)
	LoadReviews(ctx context.Context) ([]model.Review, error)
	UpdateBooks(ctx context.Context, mutate func(books []model.Book) ([]model.Book, error)) error
	UpdateReviews(ctx context.Context, mutate func(reviews []model.Review) ([]model.Review, error)) error
}

// repository persists each collection as one whole JSON document. Reads
// always go back to the file; nothing is cached between requests. A
// per-collection mutex serializes load-mutate-save so two concurrent
// writers cannot overwrite each other's update.
type repository struct {
	booksFile   string
	reviewsFile string

	booksMu   sync.Mutex
	reviewsMu sync.Mutex

	log *zap.Logger
}

func NewRepository(booksFile, reviewsFile string, log *zap.Logger) (*repository, error) {
	return &repository{
		booksFile:   booksFile,
		reviewsFile: reviewsFile,
		log:         log.Named("repo"),
	}, nil
}

func (r *repository) LoadBooks(_ context.Context) ([]model.Book, error) {
	var doc model.BooksDocument
	if err := r.readDocument(r.booksFile, &doc); err != nil {
		return nil, err
	}
	if doc.Books == nil {
		r.log.Error("books document missing books key", zap.String("file", r.booksFile))
		return nil, errors.WithMessage(errs.ErrStorage, "books document malformed")
	}
	return doc.Books, nil
}

func (r *repository) LoadReviews(_ context.Context) ([]model.Review, error) {
	var doc model.ReviewsDocument
	if err := r.readDocument(r.reviewsFile, &doc); err != nil {
		return nil, err
	}
	if doc.Reviews == nil {
		r.log.Error("reviews document missing reviews key", zap.String("file", r.reviewsFile))
		return nil, errors.WithMessage(errs.ErrStorage, "reviews document malformed")
	}
	return doc.Reviews, nil
}

func (r *repository) UpdateBooks(ctx context.Context, mutate func(books []model.Book) ([]model.Book, error)) error {
	r.booksMu.Lock()
	defer r.booksMu.Unlock()

	books, err := r.LoadBooks(ctx)
	if err != nil {
		return err
	}
	if books, err = mutate(books); err != nil {
		return err
	}
	return r.writeDocument(r.booksFile, model.BooksDocument{Books: books})
}

func (r *repository) UpdateReviews(ctx context.Context, mutate func(reviews []model.Review) ([]model.Review, error)) error {
	r.reviewsMu.Lock()
	defer r.reviewsMu.Unlock()

	reviews, err := r.LoadReviews(ctx)
	if err != nil {
		return err
	}
	if reviews, err = mutate(reviews); err != nil {
		return err
	}
	return r.writeDocument(r.reviewsFile, model.ReviewsDocument{Reviews: reviews})
}

func (r *repository) readDocument(file string, doc interface{}) error {
	data, err := os.ReadFile(file)
	if err != nil {
		r.log.Error("read document", zap.String("file", file), zap.Error(err))
		return errors.WithMessage(errs.ErrStorage, "read document")
	}
	if err := json.Unmarshal(data, doc); err != nil {
		r.log.Error("parse document", zap.String("file", file), zap.Error(err))
		return errors.WithMessage(errs.ErrStorage, "parse document")
	}
	return nil
}

// writeDocument overwrites the collection file through a temp file and
// rename, so a crash mid-write never leaves a half-written document.
func (r *repository) writeDocument(file string, doc interface{}) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		r.log.Error("marshal document", zap.String("file", file), zap.Error(err))
		return errors.WithMessage(errs.ErrStorage, "marshal document")
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(file), "."+filepath.Base(file)+".*")
	if err != nil {
		r.log.Error("create temp document", zap.String("file", file), zap.Error(err))
		return errors.WithMessage(errs.ErrStorage, "write document")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		r.log.Error("write temp document", zap.String("file", file), zap.Error(err))
		return errors.WithMessage(errs.ErrStorage, "write document")
	}
	if err := tmp.Close(); err != nil {
		r.log.Error("close temp document", zap.String("file", file), zap.Error(err))
		return errors.WithMessage(errs.ErrStorage, "write document")
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		r.log.Error("chmod temp document", zap.String("file", file), zap.Error(err))
		return errors.WithMessage(errs.ErrStorage, "write document")
	}
	if err := os.Rename(tmp.Name(), file); err != nil {
		r.log.Error("rename temp document", zap.String("file", file), zap.Error(err))
		return errors.WithMessage(errs.ErrStorage, "write document")
	}
	return nil
}
