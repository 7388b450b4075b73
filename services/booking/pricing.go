package booking

import (
	"math"

	"beautycita/models"
)

const (
	TravelFee       = 10.0
	PlatformFeeRate = 0.10
)

// CalculateTotalPrice adds the flat travel fee and the platform fee to a service's base price.
func CalculateTotalPrice(service models.ServiceRef) models.PriceBreakdown {
	platform := roundCents(service.BasePrice * PlatformFeeRate)
	return models.PriceBreakdown{
		BasePrice:   service.BasePrice,
		TravelFee:   TravelFee,
		PlatformFee: platform,
		Total:       roundCents(service.BasePrice + TravelFee + platform),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
