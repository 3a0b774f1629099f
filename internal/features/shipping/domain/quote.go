package domain

import (
	"math"
	"strconv"
	"strings"

	"microshop/internal/core/apperr"

	"github.com/shopspring/decimal"
)

// ShippingType is the delivery speed a shipment is billed for.
type ShippingType string

const (
	ShippingTypeStandard  ShippingType = "standard"
	ShippingTypeExpress   ShippingType = "express"
	ShippingTypeOvernight ShippingType = "overnight"
)

// Currency of every quoted amount.
const Currency = "IDR"

var (
	baseCost = map[ShippingType]int64{
		ShippingTypeStandard:  10000,
		ShippingTypeExpress:   25000,
		ShippingTypeOvernight: 50000,
	}
	estimatedDays = map[ShippingType]int{
		ShippingTypeStandard:  5,
		ShippingTypeExpress:   2,
		ShippingTypeOvernight: 1,
	}
	outOfTownFactor = decimal.RequireFromString("1.5")
)

// ParseShippingType accepts the known types. An empty string means standard.
func ParseShippingType(s string) (ShippingType, error) {
	if s == "" {
		return ShippingTypeStandard, nil
	}
	t := ShippingType(s)
	if _, ok := baseCost[t]; !ok {
		return "", apperr.NewValidation("Invalid shipping type. Must be one of: standard, express, overnight")
	}
	return t, nil
}

// EstimatedDays returns the delivery estimate for t.
func (t ShippingType) EstimatedDays() int {
	return estimatedDays[t]
}

// Cost returns base × ceil(weight in kg) × distance factor. Destinations
// containing "jakarta" are local, everything else costs half as much again.
func Cost(destination string, weightGrams float64, t ShippingType) decimal.Decimal {
	kilos := decimal.NewFromFloat(math.Ceil(weightGrams / 1000))
	cost := decimal.NewFromInt(baseCost[t]).Mul(kilos)

	if !strings.Contains(strings.ToLower(destination), "jakarta") {
		cost = cost.Mul(outOfTownFactor)
	}
	return cost
}

// Quote is the answer to a cost enquiry.
type Quote struct {
	Destination   string          `json:"destination"`
	Weight        string          `json:"weight"`
	ShippingType  ShippingType    `json:"shippingType"`
	EstimatedCost decimal.Decimal `json:"estimatedCost"`
	Currency      string          `json:"currency"`
	EstimatedDays int             `json:"estimatedDays"`
}

// QuoteCost prices a parcel without storing anything.
func QuoteCost(destination string, weightGrams float64, shippingType string) (*Quote, error) {
	var problems []string

	destination = strings.TrimSpace(destination)
	if destination == "" {
		problems = append(problems, "Destination is required")
	}
	if !(weightGrams > 0) || math.IsInf(weightGrams, 0) {
		problems = append(problems, "Weight must be greater than 0")
	}

	t, err := ParseShippingType(shippingType)
	if err != nil {
		problems = append(problems, err.Error())
	}

	if err := apperr.NewValidation(problems...); err != nil {
		return nil, err
	}

	return &Quote{
		Destination:   destination,
		Weight:        strconv.FormatFloat(weightGrams, 'f', -1, 64) + "g",
		ShippingType:  t,
		EstimatedCost: Cost(destination, weightGrams, t),
		Currency:      Currency,
		EstimatedDays: t.EstimatedDays(),
	}, nil
}
