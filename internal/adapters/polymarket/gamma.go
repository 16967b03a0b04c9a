package polymarket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/alejandrodnm/polytrack/internal/domain"
)

const (
	gammaMarketsPath = "/markets"
	listLimit        = 100
)

// ListActiveMarkets devuelve los mercados abiertos actuales
// (GET /markets?closed=false&limit=100).
func (c *Client) ListActiveMarkets(ctx context.Context) ([]domain.MarketSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	u := fmt.Sprintf("%s%s?closed=false&limit=%d", c.gammaBase, gammaMarketsPath, listLimit)

	var raw []gammaMarket
	if err := c.get(ctx, u, &raw); err != nil {
		return nil, fmt.Errorf("gamma.ListActiveMarkets: %w", err)
	}

	markets := mapMarkets(raw)
	slog.Debug("fetched active markets", "count", len(markets))
	return markets, nil
}

// GetMarketByID devuelve un mercado concreto con su estado de resolución
// (GET /markets/{id}), o nil si Gamma no lo conoce.
func (c *Client) GetMarketByID(ctx context.Context, id string) (*domain.MarketSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	u := fmt.Sprintf("%s%s/%s", c.gammaBase, gammaMarketsPath, url.PathEscape(id))

	var raw gammaMarket
	if err := c.get(ctx, u, &raw); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("gamma.GetMarketByID %s: %w", id, err)
	}

	m := mapMarket(raw)
	return &m, nil
}
