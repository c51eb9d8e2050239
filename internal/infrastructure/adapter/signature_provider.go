package adapter

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// LinkSignatureProvider issues signing links under a fixed base URL. The
// token is random and the link embeds the radication number so the signing
// portal can display it. It implements port.SignatureProvider.
type LinkSignatureProvider struct {
	base *url.URL
}

// NewLinkSignatureProvider validates baseURL and returns a provider.
func NewLinkSignatureProvider(baseURL string) (*LinkSignatureProvider, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse signature base url: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("signature base url %q must be http(s)", baseURL)
	}
	return &LinkSignatureProvider{base: u}, nil
}

// CreateLink returns base/<radication>?token=<uuid>.
func (p *LinkSignatureProvider) CreateLink(_ context.Context, applicationID, radication string) (string, string, error) {
	if applicationID == "" || radication == "" {
		return "", "", fmt.Errorf("application id and radication are required")
	}
	token := uuid.NewString()
	link := p.base.JoinPath(radication)
	link.RawQuery = url.Values{"token": {token}}.Encode()
	return link.String(), token, nil
}
