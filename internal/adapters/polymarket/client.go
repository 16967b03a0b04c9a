package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultGammaBase = "https://gamma-api.polymarket.com"

	// Rate limit al 60% del límite real documentado de Gamma /markets:
	// 300/10s → 180/10s → 18/s.
	gammaRatePerSec = 18

	listTimeout   = 15 * time.Second
	lookupTimeout = 10 * time.Second
)

// Client es el HTTP client de Gamma con rate limiting. No reintenta:
// el poll interval del tracker es el único throttle — un fallo degrada
// a "sin datos este ciclo".
type Client struct {
	http      *http.Client
	gammaBase string
	limiter   *rate.Limiter
}

// NewClient crea un Client con el base URL dado.
// Si gammaBase está vacío, usa el URL de producción.
func NewClient(gammaBase string) *Client {
	if gammaBase == "" {
		gammaBase = defaultGammaBase
	}
	return &Client{
		http:      &http.Client{Timeout: listTimeout},
		gammaBase: gammaBase,
		limiter:   rate.NewLimiter(gammaRatePerSec, 10),
	}
}

// statusError es una respuesta non-200 de Gamma.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.code, e.body)
}

// get hace un GET con rate limiting y decodifica la respuesta JSON en out.
func (c *Client) get(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
