package estimation

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"flooring-cost/pkg/money"
)

const (
	// sqftPerLaborHour is the install throughput used to estimate labor hours.
	sqftPerLaborHour = 100.0
	laborTypeInstall = "Installation"
)

// Calculator prices estimates. It holds no state between calls and is safe
// for concurrent use.
type Calculator struct {
	newID func() string
}

// NewCalculator returns a Calculator that tags items with random UUIDs.
func NewCalculator() *Calculator {
	return &Calculator{newID: uuid.NewString}
}

// WithIDGenerator replaces the item ID source. Used by tests that need stable IDs.
func (c *Calculator) WithIDGenerator(fn func() string) *Calculator {
	c.newID = fn
	return c
}

var defaultCalculator = NewCalculator()

// CalculateEstimateItems prices rooms with the default Calculator.
func CalculateEstimateItems(
	rooms []string,
	dimensions map[string]RoomDimension,
	config PricingConfig,
	materialType, materialGrade string,
	ai *AIRecommendation,
) Estimate {
	return defaultCalculator.Calculate(rooms, dimensions, config, materialType, materialGrade, ai)
}

// Calculate emits one material and one labor item per room, material items
// first, and totals them. Rounding to cents happens at every step: item
// totals, then subtotal, then tax, then the grand total.
//
// A room missing from dimensions is priced at zero square feet. Nothing is
// validated here; see ValidateEstimate.
func (c *Calculator) Calculate(
	rooms []string,
	dimensions map[string]RoomDimension,
	config PricingConfig,
	materialType, materialGrade string,
	ai *AIRecommendation,
) Estimate {
	if len(rooms) == 0 {
		return Estimate{Items: []EstimateItem{}}
	}

	effective := config
	if ai != nil {
		effective = ai.Apply(config)
	}

	materials := make([]EstimateItem, 0, len(rooms))
	labor := make([]EstimateItem, 0, len(rooms))

	for _, room := range rooms {
		sqft := dimensions[room].Sqft

		materials = append(materials, EstimateItem{
			ID:           c.newID(),
			Description:  fmt.Sprintf("%s Hardwood Flooring - %s", materialType, room),
			Area:         sqft,
			UnitPrice:    effective.MaterialPrice,
			Quantity:     sqft,
			Total:        money.Round2(sqft * effective.MaterialPrice),
			Type:         ItemTypeMaterial,
			Room:         room,
			MaterialType: materialType,
			Brand:        "Premium " + materialGrade,
		})

		hourlyRate := effective.InstallRate
		hours := laborHours(sqft)
		labor = append(labor, EstimateItem{
			ID:          c.newID(),
			Description: "Professional Installation - " + room,
			Area:        sqft,
			UnitPrice:   effective.InstallRate,
			Quantity:    sqft,
			Total:       money.Round2(sqft * effective.InstallRate),
			Type:        ItemTypeLabor,
			Room:        room,
			LaborType:   laborTypeInstall,
			HourlyRate:  &hourlyRate,
			Hours:       &hours,
		})
	}

	items := append(materials, labor...)

	totals := make([]float64, len(items))
	for i, item := range items {
		totals[i] = item.Total
	}

	subtotal := money.Sum(totals)
	tax := money.Round2(subtotal * config.TaxRate)

	return Estimate{
		Items:    items,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    money.Round2(subtotal + tax),
	}
}

// laborHours estimates install hours, one per started 100 sqft.
func laborHours(sqft float64) float64 {
	return math.Ceil(sqft / sqftPerLaborHour)
}

// Summary breaks an estimate down for reports.
type Summary struct {
	MaterialSubtotal float64 `json:"material_subtotal"`
	LaborSubtotal    float64 `json:"labor_subtotal"`
	TotalArea        float64 `json:"total_area"`
	LaborHours       float64 `json:"labor_hours"`
	RoomCount        int     `json:"room_count"`
	ItemCount        int     `json:"item_count"`
}

// Summary totals the estimate per item type. Area and room count come from
// the material items, one per room.
func (e Estimate) Summary() Summary {
	var materialTotals, laborTotals []float64
	s := Summary{ItemCount: len(e.Items)}

	for _, item := range e.Items {
		switch item.Type {
		case ItemTypeMaterial:
			materialTotals = append(materialTotals, item.Total)
			s.TotalArea += item.Area
			s.RoomCount++
		case ItemTypeLabor:
			laborTotals = append(laborTotals, item.Total)
			if item.Hours != nil {
				s.LaborHours += *item.Hours
			}
		}
	}

	s.MaterialSubtotal = money.Sum(materialTotals)
	s.LaborSubtotal = money.Sum(laborTotals)
	return s
}

// RoomsWithoutArea lists the rooms priced at zero square feet, in item order.
func (e Estimate) RoomsWithoutArea() []string {
	var rooms []string
	for _, item := range e.Items {
		if item.Type == ItemTypeMaterial && item.Area == 0 {
			rooms = append(rooms, item.Room)
		}
	}
	return rooms
}
