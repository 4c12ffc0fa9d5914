package service

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alaaeid/catalog-service/catalog/internal/errs"
	"github.com/alaaeid/catalog-service/catalog/internal/model"
	"github.com/alaaeid/catalog-service/catalog/internal/repository"
)

func newService(t *testing.T, booksJSON, reviewsJSON string) *Service {
	t.Helper()
	dir := t.TempDir()
	booksFile := filepath.Join(dir, "books.json")
	reviewsFile := filepath.Join(dir, "reviews.json")
	require.NoError(t, os.WriteFile(booksFile, []byte(booksJSON), 0o644))
	require.NoError(t, os.WriteFile(reviewsFile, []byte(reviewsJSON), 0o644))
	repo, err := repository.NewRepository(booksFile, reviewsFile, zap.NewNop())
	require.NoError(t, err)

	svc := NewService(repo, zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	}
	return svc
}

func TestService_CreateBook_DefaultsAndRoundTrip(t *testing.T) {
	t.Parallel()
	svc := newService(t, `{"books":[]}`, `{"reviews":[]}`)

	created, err := svc.CreateBook(context.Background(), model.Book{Title: "A", Author: "B"})
	require.NoError(t, err)
	require.Equal(t, "1", created.ID)
	require.Equal(t, float64(0), created.Rating)
	require.Equal(t, 0, created.ReviewCount)
	require.NotNil(t, created.InStock)
	require.True(t, *created.InStock)
	require.NotNil(t, created.Featured)
	require.False(t, *created.Featured)

	got, err := svc.GetBook(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func TestService_CreateBook_PreservesExplicitFalse(t *testing.T) {
	t.Parallel()
	svc := newService(t, `{"books":[]}`, `{"reviews":[]}`)

	inStock := false
	created, err := svc.CreateBook(context.Background(), model.Book{Title: "A", Author: "B", InStock: &inStock})
	require.NoError(t, err)
	require.NotNil(t, created.InStock)
	require.False(t, *created.InStock)
}

func TestService_CreateBook_NextIDSkipsGapsAndGarbage(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		books string
		want  string
	}{
		{name: "empty collection", books: `{"books":[]}`, want: "1"},
		{name: "gap in ids", books: `{"books":[{"id":"3","title":"x","author":"y"},{"id":"7","title":"x","author":"y"}]}`, want: "8"},
		{name: "unparsable id ignored", books: `{"books":[{"id":"abc","title":"x","author":"y"},{"id":"2","title":"x","author":"y"}]}`, want: "3"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newService(t, tt.books, `{"reviews":[]}`)
			created, err := svc.CreateBook(context.Background(), model.Book{Title: "A", Author: "B"})
			require.NoError(t, err)
			require.Equal(t, tt.want, created.ID)
		})
	}
}

func TestService_CreateBook_MissingFields(t *testing.T) {
	t.Parallel()
	svc := newService(t, `{"books":[]}`, `{"reviews":[]}`)

	_, err := svc.CreateBook(context.Background(), model.Book{Author: "B"})
	var ve *errs.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "title and author are required", ve.Message)

	books, err := svc.ListBooks(context.Background(), "", "")
	require.NoError(t, err)
	require.Empty(t, books)
}

func TestService_CreateReview(t *testing.T) {
	t.Parallel()
	svc := newService(t,
		`{"books":[{"id":"1","title":"T","author":"A"}]}`,
		`{"reviews":[]}`)

	created, err := svc.CreateReview(context.Background(), model.Review{
		BookID: "1", Author: "C", Rating: 5, Title: "Great", Comment: "Loved it",
	})
	require.NoError(t, err)
	require.Equal(t, "review-1", created.ID)
	require.Equal(t, "2024-05-01T12:30:00Z", created.Timestamp)
	require.NotNil(t, created.Verified)
	require.False(t, *created.Verified)

	next, err := svc.CreateReview(context.Background(), model.Review{
		BookID: "1", Author: "D", Rating: 4, Title: "Good", Comment: "Liked it",
	})
	require.NoError(t, err)
	require.Equal(t, "review-2", next.ID)
}

func TestService_CreateReview_Rejections(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		review  model.Review
		wantMsg string
	}{
		{
			name:    "rating zero fails presence before range",
			review:  model.Review{BookID: "1", Author: "C", Rating: 0, Title: "T", Comment: "C"},
			wantMsg: "bookId, author, rating, title, and comment are required",
		},
		{
			name:    "missing comment",
			review:  model.Review{BookID: "1", Author: "C", Rating: 3, Title: "T"},
			wantMsg: "bookId, author, rating, title, and comment are required",
		},
		{
			name:    "rating above range",
			review:  model.Review{BookID: "1", Author: "C", Rating: 6, Title: "T", Comment: "C"},
			wantMsg: "rating must be an integer between 1 and 5",
		},
		{
			name:    "unknown book",
			review:  model.Review{BookID: "99", Author: "C", Rating: 3, Title: "T", Comment: "C"},
			wantMsg: "invalid bookId: book does not exist",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newService(t,
				`{"books":[{"id":"1","title":"T","author":"A"}]}`,
				`{"reviews":[{"id":"review-2","bookId":"1","author":"x","rating":4,"title":"t","comment":"c","timestamp":"2024-01-01T00:00:00Z","verified":true}]}`)

			_, err := svc.CreateReview(context.Background(), tt.review)
			var ve *errs.ValidationError
			require.True(t, errors.As(err, &ve))
			require.Equal(t, tt.wantMsg, ve.Message)

			// rejected input must not mutate the collection or burn an id
			created, err := svc.CreateReview(context.Background(), model.Review{
				BookID: "1", Author: "C", Rating: 3, Title: "T", Comment: "C",
			})
			require.NoError(t, err)
			require.Equal(t, "review-3", created.ID)
		})
	}
}

func TestService_ListBooks_DateFilter(t *testing.T) {
	t.Parallel()
	books := `{"books":[
		{"id":"1","title":"a","author":"x","datePublished":"2019-06-15"},
		{"id":"2","title":"b","author":"x","datePublished":"2020-01-01"},
		{"id":"3","title":"c","author":"x","datePublished":"2021-03-10"},
		{"id":"4","title":"d","author":"x"}
	]}`
	svc := newService(t, books, `{"reviews":[]}`)
	ctx := context.Background()

	all, err := svc.ListBooks(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, all, 4)

	// inclusive on both bounds; the undated book drops out
	got, err := svc.ListBooks(ctx, "2020-01-01", "2021-03-10")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "2", got[0].ID)
	require.Equal(t, "3", got[1].ID)

	onlyStart, err := svc.ListBooks(ctx, "2020-06-01", "")
	require.NoError(t, err)
	require.Len(t, onlyStart, 1)
	require.Equal(t, "3", onlyStart[0].ID)

	_, err = svc.ListBooks(ctx, "2020-01-01", "not-a-date")
	require.True(t, errors.Is(err, errs.ErrInvalidDate))
}

func TestService_GetBook_NotFound(t *testing.T) {
	t.Parallel()
	svc := newService(t, `{"books":[]}`, `{"reviews":[]}`)

	_, err := svc.GetBook(context.Background(), "42")
	require.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestService_ListReviews(t *testing.T) {
	t.Parallel()
	svc := newService(t,
		`{"books":[]}`,
		`{"reviews":[
			{"id":"review-1","bookId":"1","author":"x","rating":4,"title":"t","comment":"c"},
			{"id":"review-2","bookId":"2","author":"x","rating":5,"title":"t","comment":"c"},
			{"id":"review-3","bookId":"1","author":"y","rating":2,"title":"t","comment":"c"}
		]}`)

	got, err := svc.ListReviews(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "review-1", got[0].ID)
	require.Equal(t, "review-3", got[1].ID)

	// unknown book is an empty result, not an error
	none, err := svc.ListReviews(context.Background(), "99")
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
}

func TestService_TopRated_StableOrderAndLimit(t *testing.T) {
	t.Parallel()
	svc := newService(t, `{"books":[
		{"id":"1","title":"a","author":"x","rating":5,"reviewCount":2},
		{"id":"2","title":"b","author":"x","rating":5,"reviewCount":10},
		{"id":"3","title":"c","author":"x","rating":10,"reviewCount":5},
		{"id":"4","title":"d","author":"x","rating":0,"reviewCount":7}
	]}`, `{"reviews":[]}`)

	got, err := svc.TopRated(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 4)
	// scores [10, 50, 50, 0]: the tied 50s keep collection order
	require.Equal(t, "2", got[0].ID)
	require.Equal(t, "3", got[1].ID)
	require.Equal(t, "1", got[2].ID)
	require.Equal(t, "4", got[3].ID)
	require.Equal(t, float64(50), got[0].Score)
}

func TestService_TopRated_TruncatesToTen(t *testing.T) {
	t.Parallel()
	doc := `{"books":[`
	for i := 0; i < 12; i++ {
		if i > 0 {
			doc += ","
		}
		doc += `{"id":"` + strconv.Itoa(i+1) + `","title":"t","author":"a","rating":1,"reviewCount":1}`
	}
	doc += `]}`
	svc := newService(t, doc, `{"reviews":[]}`)

	got, err := svc.TopRated(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 10)
}

func TestService_Featured_ExactMatchOnly(t *testing.T) {
	t.Parallel()
	svc := newService(t, `{"books":[
		{"id":"1","title":"a","author":"x","featured":true},
		{"id":"2","title":"b","author":"x","featured":false},
		{"id":"3","title":"c","author":"x"}
	]}`, `{"reviews":[]}`)

	got, err := svc.Featured(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "1", got[0].ID)
}
