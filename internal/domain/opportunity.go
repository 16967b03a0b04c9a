package domain

import "math"

// Opportunity es el resultado del análisis de un mercado: el lado elegido,
// su precio y el edge estimado. Un ciclo produce como máximo una.
type Opportunity struct {
	Market MarketSnapshot
	Side   string
	Price  float64
	Edge   float64
}

// Score devuelve el edge amortiguado por volumen usado para rankear
// candidatos: edge * volume^0.2. El exponente evita que mercados enormes
// dominen solo por tamaño.
func (o Opportunity) Score() float64 {
	return o.Edge * math.Pow(o.Market.Volume, 0.2)
}
