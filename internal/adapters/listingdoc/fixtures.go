package listingdoc

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"property-search-service/internal/core/domain"
)

// DecodeJSON читает JSON-массив документов в формате коллекции.
func DecodeJSON(r io.Reader) ([]domain.Listing, error) {
	var docs []Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode listing documents: %w", err)
	}

	listings := make([]domain.Listing, 0, len(docs))
	for i := range docs {
		listings = append(listings, docs[i].ToDomain())
	}
	return listings, nil
}

// LoadFile - DecodeJSON для файла на диске (фикстуры CLI)
func LoadFile(path string) ([]domain.Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures %s: %w", path, err)
	}
	defer f.Close()

	return DecodeJSON(f)
}
