package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"market-buzz/src/helpers"
	"market-buzz/src/interfaces"
	"market-buzz/src/logger"
	"market-buzz/src/models"
)

const defaultMaxBodyBytes = 16 << 20

// ErrResponseTooLarge is returned when a body exceeds MaxBodyBytes.
var ErrResponseTooLarge = errors.New("response body too large")

type AsyncNetworkManager struct {
	Config       *models.MConfig
	ProxyManager interfaces.IProxyManager
	Client       *http.Client
	Logger       *logger.Logger

	// BaseDelay is multiplied by attempt² between retries.
	BaseDelay    time.Duration
	MaxBodyBytes int64
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}
	if log == nil {
		log = logger.NewLogger(cfg, "Network")
	}

	nm := &AsyncNetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(proxies, cfg.Network.UserAgent),
		Logger:       log,
		BaseDelay:    time.Second,
		MaxBodyBytes: defaultMaxBodyBytes,
	}
	nm.Client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if nm.ProxyManager.HasProxies() {
		// Resolved per request so rotation takes effect without rebuilding the client.
		transport.Proxy = func(*http.Request) (*url.URL, error) {
			proxyStr, err := nm.ProxyManager.GetCurrentProxy()
			if err != nil || proxyStr == "" {
				return nil, err
			}
			return url.Parse(proxyStr)
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(nm.Config.Network.RequestTimeout) * time.Second,
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries and proxy rotation.
func (nm *AsyncNetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, helpers.NewValidationError("invalid url "+urlStr, err)
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	reqUrl.RawQuery = q.Encode()

	finalUrl := reqUrl.String()

	maxRetries := nm.Config.Network.MaxRetries
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-time.After(time.Duration(i*i) * nm.BaseDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			nm.ProxyManager.RotateProxy()
		}

		body, status, err := nm.do(ctx, finalUrl)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, ErrResponseTooLarge) {
				// The same payload would come back on every attempt.
				return nil, helpers.NewNetworkError(fmt.Sprintf("GET %s", reqUrl.Path), err)
			}
			lastErr = err
			nm.Logger.Info("Request failed (attempt %d/%d): %v", i+1, maxRetries+1, err)
			continue
		}

		switch {
		case status == http.StatusTooManyRequests || status == http.StatusForbidden:
			lastErr = fmt.Errorf("blocked (status %d)", status)
			nm.Logger.Info("Request blocked (%d). Rotating proxy.", status)
			continue
		case status == http.StatusNotFound:
			// Retrying won't make an unknown symbol or subreddit appear.
			return nil, helpers.NewNetworkError(fmt.Sprintf("GET %s", reqUrl.Path), fmt.Errorf("not found (status %d)", status))
		case status != http.StatusOK:
			lastErr = fmt.Errorf("bad status: %d", status)
			nm.Logger.Info("Bad status %d", status)
			continue
		}

		return body, nil
	}

	return nil, helpers.NewNetworkError(fmt.Sprintf("GET %s: max retries exceeded", reqUrl.Path), lastErr)
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) do(ctx context.Context, finalUrl string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalUrl, nil)
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("User-Agent", nm.ProxyManager.GetUserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := nm.Client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	limit := nm.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, limit))
		return nil, resp.StatusCode, nil
	}

	// One byte past the limit tells a full body from a truncated one
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if int64(len(body)) > limit {
		return nil, resp.StatusCode, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, limit)
	}
	return body, resp.StatusCode, nil
}
