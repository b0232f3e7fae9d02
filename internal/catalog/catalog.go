// Package catalog provides the read-only product list sent with every
// webhook call.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"ev-voice-shop/internal/domain"
)

//go:embed products.json
var embeddedProducts []byte

// Source lists the catalog. *repository.Client satisfies it for
// DynamoDB-backed catalogs.
type Source interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// Static is a Source over an in-memory product list.
type Static []domain.Product

func (s Static) ListProducts(_ context.Context) ([]domain.Product, error) {
	return append([]domain.Product(nil), s...), nil
}

// Embedded returns the catalog bundled with the binary.
func Embedded() (Static, error) {
	products, err := DecodeJSON(embeddedProducts)
	if err != nil {
		return nil, fmt.Errorf("catalog: embedded: %w", err)
	}
	return Static(products), nil
}

// File is a Source that reads a JSON or YAML catalog from disk on every call.
type File struct {
	Path string
}

func (f File) ListProducts(_ context.Context) ([]domain.Product, error) {
	path := strings.TrimSpace(f.Path)
	if path == "" {
		return nil, errors.New("catalog: file path must not be empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return DecodeJSON(data)
	}
}

// DecodeJSON parses a JSON array of products.
func DecodeJSON(data []byte) ([]domain.Product, error) {
	var products []domain.Product
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&products); err != nil {
		return nil, fmt.Errorf("catalog: decode json: %w", err)
	}
	if products == nil {
		return nil, errors.New("catalog: decode json: expected an array of products")
	}
	return products, nil
}

// DecodeYAML parses a YAML sequence of products.
func DecodeYAML(data []byte) ([]domain.Product, error) {
	var products []domain.Product
	if err := yaml.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("catalog: decode yaml: %w", err)
	}
	if products == nil {
		return nil, errors.New("catalog: decode yaml: expected a sequence of products")
	}
	return products, nil
}
