package repository

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"ev-voice-shop/internal/domain"
)

// maxScanPages guards against a runaway scan of a table that is not a catalog.
const maxScanPages = 100

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Client reads the product catalog from a DynamoDB table keyed by sku.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// ListProducts scans the whole catalog table and returns the products
// ordered by sku.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var (
		products []domain.Product
		startKey map[string]types.AttributeValue
	)
	for page := 0; ; page++ {
		if page >= maxScanPages {
			return nil, fmt.Errorf("repository: ListProducts: more than %d pages", maxScanPages)
		}
		out, err := c.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(c.tableName),
			ExclusiveStartKey: startKey,
			ConsistentRead:    aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("repository: ListProducts scan: %w", err)
		}
		for _, item := range out.Items {
			p, err := itemToProduct(item)
			if err != nil {
				return nil, fmt.Errorf("repository: ListProducts unmarshal: %w", err)
			}
			products = append(products, p)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	slices.SortStableFunc(products, func(a, b domain.Product) int {
		return cmp.Compare(a.SKU, b.SKU)
	})
	return products, nil
}

// itemToProduct converts a DynamoDB attribute map to a Product.
func itemToProduct(item map[string]types.AttributeValue) (domain.Product, error) {
	sku, err := strAttr(item, "sku")
	if err != nil {
		return domain.Product{}, err
	}
	name, err := strAttr(item, "name")
	if err != nil {
		return domain.Product{}, err
	}
	category, err := strAttr(item, "category")
	if err != nil {
		return domain.Product{}, err
	}
	price, err := floatAttr(item, "price")
	if err != nil {
		return domain.Product{}, err
	}
	warranty, err := optionalIntAttr(item, "warranty_months")
	if err != nil {
		return domain.Product{}, err
	}
	stock, err := optionalIntAttr(item, "stock")
	if err != nil {
		return domain.Product{}, err
	}
	tags, err := optionalStringListAttr(item, "tags")
	if err != nil {
		return domain.Product{}, err
	}

	return domain.Product{
		Name:           name,
		Price:          price,
		SKU:            sku,
		Category:       category,
		WarrantyMonths: warranty,
		Stock:          stock,
		Tags:           tags,
	}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func floatAttr(item map[string]types.AttributeValue, key string) (float64, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}

func optionalIntAttr(item map[string]types.AttributeValue, key string) (*int, error) {
	v, ok := item[key]
	if !ok {
		return nil, nil
	}
	if _, isNull := v.(*types.AttributeValueMemberNULL); isNull {
		return nil, nil
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return nil, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return nil, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return &parsed, nil
}

// optionalStringListAttr accepts tags stored either as a string set or as a
// list of strings.
func optionalStringListAttr(item map[string]types.AttributeValue, key string) ([]string, error) {
	v, ok := item[key]
	if !ok {
		return nil, nil
	}
	switch tv := v.(type) {
	case *types.AttributeValueMemberNULL:
		return nil, nil
	case *types.AttributeValueMemberSS:
		return append([]string(nil), tv.Value...), nil
	case *types.AttributeValueMemberL:
		out := make([]string, 0, len(tv.Value))
		for i, el := range tv.Value {
			s, ok := el.(*types.AttributeValueMemberS)
			if !ok {
				return nil, fmt.Errorf("repository: attribute %q[%d] is not a string", key, i)
			}
			out = append(out, s.Value)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("repository: attribute %q is not a string list", key)
	}
}
