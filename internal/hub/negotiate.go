package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

type negotiateTransport struct {
	Transport       string   `json:"transport"`
	TransferFormats []string `json:"transferFormats"`
}

type negotiateResponse struct {
	ConnectionID        string               `json:"connectionId"`
	ConnectionToken     string               `json:"connectionToken"`
	NegotiateVersion    int                  `json:"negotiateVersion"`
	AvailableTransports []negotiateTransport `json:"availableTransports"`
	URL                 string               `json:"url"`
	AccessToken         string               `json:"accessToken"`
	Error               string               `json:"error"`
}

// negotiation is the outcome of the negotiate round-trip.
type negotiation struct {
	endpoint    string
	token       string
	accessToken string
}

// maxRedirects bounds the negotiate redirect chain.
const maxRedirects = 100

func negotiate(ctx context.Context, client *retryablehttp.Client, endpoint string) (negotiation, error) {
	result := negotiation{endpoint: endpoint}
	for i := 0; i < maxRedirects; i++ {
		resp, err := negotiateOnce(ctx, client, result.endpoint, result.accessToken)
		if err != nil {
			return negotiation{}, err
		}
		if resp.Error != "" {
			return negotiation{}, fmt.Errorf("negotiate %s: %s", result.endpoint, resp.Error)
		}
		if resp.URL != "" {
			result.endpoint = resp.URL
			result.accessToken = resp.AccessToken
			continue
		}
		if !supportsWebSockets(resp.AvailableTransports) {
			return negotiation{}, fmt.Errorf("negotiate %s: server does not offer WebSockets", result.endpoint)
		}
		result.token = resp.ConnectionToken
		if resp.NegotiateVersion < 1 || result.token == "" {
			result.token = resp.ConnectionID
		}
		return result, nil
	}
	return negotiation{}, fmt.Errorf("negotiate %s: too many redirects", endpoint)
}

func negotiateOnce(ctx context.Context, client *retryablehttp.Client, endpoint, accessToken string) (negotiateResponse, error) {
	negotiateURL, err := appendPath(endpoint, "negotiate")
	if err != nil {
		return negotiateResponse{}, err
	}
	q := negotiateURL.Query()
	q.Set("negotiateVersion", "1")
	negotiateURL.RawQuery = q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, negotiateURL.String(), nil)
	if err != nil {
		return negotiateResponse{}, fmt.Errorf("build negotiate request: %w", err)
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		return negotiateResponse{}, fmt.Errorf("negotiate %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return negotiateResponse{}, fmt.Errorf("read negotiate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return negotiateResponse{}, fmt.Errorf("negotiate %s: unexpected status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out negotiateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return negotiateResponse{}, fmt.Errorf("decode negotiate response: %w", err)
	}
	return out, nil
}

func supportsWebSockets(transports []negotiateTransport) bool {
	for _, t := range transports {
		if strings.EqualFold(t.Transport, "WebSockets") {
			return true
		}
	}
	return false
}

func appendPath(endpoint, segment string) (*url.URL, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid hub url %q: %w", endpoint, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + segment
	return u, nil
}

// websocketURL turns an http(s) hub endpoint into its ws(s) form, adding the
// connection token when one was negotiated.
func websocketURL(endpoint, token string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid hub url %q: %w", endpoint, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported hub url scheme %q", u.Scheme)
	}
	if token != "" {
		q := u.Query()
		q.Set("id", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
