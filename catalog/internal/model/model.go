package model

import (
	"bytes"
	"encoding/json"
	"sort"
)

// BooksDocument is the on-disk shape of the books collection.
type BooksDocument struct {
	Books []Book `json:"books"`
}

// ReviewsDocument is the on-disk shape of the reviews collection.
type ReviewsDocument struct {
	Reviews []Review `json:"reviews"`
}

// Book keeps any JSON members beyond the typed fields in Extra so that
// caller-supplied fields round-trip through storage verbatim. InStock and
// Featured are pointers: an absent field and an explicit false must stay
// distinguishable until defaulting runs.
type Book struct {
	ID            string  `json:"id"`
	Title         string  `json:"title" validate:"required"`
	Author        string  `json:"author" validate:"required"`
	DatePublished string  `json:"datePublished,omitempty"`
	Rating        float64 `json:"rating"`
	ReviewCount   int     `json:"reviewCount"`
	InStock       *bool   `json:"inStock"`
	Featured      *bool   `json:"featured"`

	Extra map[string]json.RawMessage `json:"-"`
}

// bookAlias drops the methods so the codec below does not recurse.
type bookAlias Book

var bookKnownKeys = []string{
	"id", "title", "author", "datePublished", "rating", "reviewCount", "inStock", "featured",
}

func (b *Book) UnmarshalJSON(data []byte) error {
	var alias bookAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range bookKnownKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		alias.Extra = raw
	}
	*b = Book(alias)
	return nil
}

func (b Book) MarshalJSON() ([]byte, error) {
	obj, err := json.Marshal(bookAlias(b))
	if err != nil {
		return nil, err
	}
	return mergeJSON(obj, b.Extra)
}

// Review's rating tag order matters: a zero rating fails the presence
// check before the range check, matching the required-field contract.
type Review struct {
	ID        string `json:"id"`
	BookID    string `json:"bookId" validate:"required"`
	Author    string `json:"author" validate:"required"`
	Rating    int    `json:"rating" validate:"required,gte=1,lte=5"`
	Title     string `json:"title" validate:"required"`
	Comment   string `json:"comment" validate:"required"`
	Timestamp string `json:"timestamp"`
	Verified  *bool  `json:"verified"`
}

// RatedBook is a Book with its derived ranking score merged into the same
// JSON object.
type RatedBook struct {
	Book
	Score float64 `json:"-"`
}

func (rb RatedBook) MarshalJSON() ([]byte, error) {
	obj, err := rb.Book.MarshalJSON()
	if err != nil {
		return nil, err
	}
	score, err := json.Marshal(rb.Score)
	if err != nil {
		return nil, err
	}
	return mergeJSON(obj, map[string]json.RawMessage{"score": score})
}

// mergeJSON appends extra members to a marshaled JSON object, keys in
// sorted order for stable output.
func mergeJSON(obj []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return obj, nil
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(obj[:len(obj)-1]) // strip closing brace
	for _, k := range keys {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
