package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// ErrNotFound is returned when the named parameter does not exist.
var ErrNotFound = errors.New("paramstore: parameter not found")

// ssmAPI is the minimal AWS SSM interface required by Client.
// *ssm.Client from aws-sdk-go-v2 satisfies this interface.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Getter is the interface that wraps GetParameter.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Client wraps an AWS SSM API for parameter retrieval.
type Client struct {
	api ssmAPI
}

// New creates a Client with the given SSM API implementation.
func New(api ssmAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	return &Client{api: api}, nil
}

func (c *Client) GetParameter(ctx context.Context, name string) (string, error) {
	if c.api == nil {
		return "", errors.New("paramstore: client not initialized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("paramstore: name is required")
	}

	withDecryption := true
	out, err := c.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: &withDecryption,
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return "", fmt.Errorf("paramstore: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", errors.New("paramstore: parameter missing value")
	}
	return *out.Parameter.Value, nil
}

// urlPayload is the JSON shape accepted for URL parameters, next to a bare string.
type urlPayload struct {
	URL string `json:"url"`
}

// URLResolver resolves the webhook destination. A static value (usually from
// the environment) wins; otherwise the named SSM parameter is read.
type URLResolver struct {
	static string
	getter Getter
	name   string
}

// NewURLResolver creates a URLResolver. getter may be nil when no parameter
// name is configured.
func NewURLResolver(static string, getter Getter, name string) *URLResolver {
	return &URLResolver{
		static: strings.TrimSpace(static),
		getter: getter,
		name:   strings.TrimSpace(name),
	}
}

// WebhookURL returns the configured URL, or "" when none is configured.
// A missing SSM parameter counts as not configured.
func (r *URLResolver) WebhookURL(ctx context.Context) (string, error) {
	if r.static != "" {
		return r.static, nil
	}
	if r.getter == nil || r.name == "" {
		return "", nil
	}
	raw, err := r.getter.GetParameter(ctx, r.name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("paramstore: resolve webhook url: %w", err)
	}
	return parseURLValue(raw)
}

func parseURLValue(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "{") {
		return raw, nil
	}
	var p urlPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return "", fmt.Errorf("paramstore: unmarshal url parameter as JSON: %w", err)
	}
	return strings.TrimSpace(p.URL), nil
}
