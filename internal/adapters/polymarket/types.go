package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DTOs raw de la API de Gamma. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// looseNumber decodifica los campos numéricos de Gamma, que llegan como
// número, como string numérico o como string vacío ("" cuando el campo no
// aplica). Un valor no parseable queda en 0 en vez de abortar el decode:
// un mercado malformado se descarta solo, nunca tumba el batch entero.
type looseNumber float64

func (n *looseNumber) UnmarshalJSON(b []byte) error {
	*n = 0
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*n = looseNumber(v)
	}
	return nil
}

// gammaMarket es un mercado tal como lo devuelve GET /markets.
// outcomePrices llega a veces como array y a veces como string con un array
// JSON dentro — se conserva raw y se parsea en mapping.go.
type gammaMarket struct {
	ID              string          `json:"id"`
	Question        string          `json:"question"`
	Volume          looseNumber     `json:"volume"`
	Liquidity       looseNumber     `json:"liquidity"`
	OutcomePrices   json.RawMessage `json:"outcomePrices"`
	Active          bool            `json:"active"`
	Closed          bool            `json:"closed"`
	Resolved        bool            `json:"resolved"`
	ResolvedOutcome string          `json:"resolvedOutcome"`
}
