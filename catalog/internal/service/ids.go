package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alaaeid/catalog-service/catalog/internal/model"
)

const reviewIDPrefix = "review-"

// nextBookID is max existing numeric id + 1, as a decimal string. Ids that
// do not parse as integers contribute no maximum.
func nextBookID(books []model.Book) string {
	maxID := 0
	for _, b := range books {
		n, err := strconv.Atoi(b.ID)
		if err != nil {
			continue
		}
		if n > maxID {
			maxID = n
		}
	}
	return strconv.Itoa(maxID + 1)
}

// nextReviewID is review-<N> with N = max existing suffix + 1. Ids without
// the prefix or with a non-numeric suffix are skipped.
func nextReviewID(reviews []model.Review) string {
	maxN := 0
	for _, rv := range reviews {
		suffix, found := strings.CutPrefix(rv.ID, reviewIDPrefix)
		if !found {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > maxN {
			maxN = n
		}
	}
	return fmt.Sprintf("%s%d", reviewIDPrefix, maxN+1)
}
