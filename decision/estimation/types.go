// Package estimation provides the flooring estimate pricing engine.
// It turns rooms, dimensions and a pricing configuration into priced
// material and labor line items with tax-totaled aggregates.
package estimation

// RoomDimension holds one room's floor measurements in feet and its area in square feet.
type RoomDimension struct {
	Length float64 `json:"length" yaml:"length"`
	Width  float64 `json:"width" yaml:"width"`
	Sqft   float64 `json:"sqft" yaml:"sqft"`
}

// NewRoomDimension builds a RoomDimension whose area is length × width.
func NewRoomDimension(length, width float64) RoomDimension {
	return RoomDimension{Length: length, Width: width, Sqft: length * width}
}

// PricingConfig holds the unit economics for one estimate run.
type PricingConfig struct {
	MaterialPrice float64 `json:"material_price" yaml:"material_price"` // per sqft
	InstallRate   float64 `json:"install_rate" yaml:"install_rate"`     // per sqft
	TaxRate       float64 `json:"tax_rate" yaml:"tax_rate"`             // fractional, e.g. 0.08
}

// AIRecommendation carries fractional rate adjustments produced by an
// external advisor. An adjustment of 0.1 raises the rate by 10%.
type AIRecommendation struct {
	Materials MaterialAdjustment `json:"materials" yaml:"materials"`
	Labor     LaborAdjustment    `json:"labor" yaml:"labor"`
}

// MaterialAdjustment scales the material price per sqft.
type MaterialAdjustment struct {
	PriceAdjustment float64 `json:"price_adjustment" yaml:"price_adjustment"`
}

// LaborAdjustment scales the install rate per sqft.
type LaborAdjustment struct {
	RateAdjustment float64 `json:"rate_adjustment" yaml:"rate_adjustment"`
}

// Apply returns cfg with the adjustments applied. The tax rate is left untouched.
func (r AIRecommendation) Apply(cfg PricingConfig) PricingConfig {
	cfg.MaterialPrice = cfg.MaterialPrice * (1 + r.Materials.PriceAdjustment)
	cfg.InstallRate = cfg.InstallRate * (1 + r.Labor.RateAdjustment)
	return cfg
}

// ItemType classifies an estimate line item.
type ItemType string

const (
	ItemTypeMaterial ItemType = "material"
	ItemTypeLabor    ItemType = "labor"
)

// EstimateItem is one priced line of an estimate.
type EstimateItem struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Area        float64  `json:"area"`
	UnitPrice   float64  `json:"unit_price"`
	Quantity    float64  `json:"quantity"`
	Total       float64  `json:"total"`
	Type        ItemType `json:"type"`
	Room        string   `json:"room"`

	// Material items only
	MaterialType string `json:"material_type,omitempty"`
	Brand        string `json:"brand,omitempty"`

	// Labor items only
	LaborType  string   `json:"labor_type,omitempty"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`
	Hours      *float64 `json:"hours,omitempty"`
}

// Estimate is the priced aggregate returned by CalculateEstimateItems.
type Estimate struct {
	Items    []EstimateItem `json:"items"`
	Subtotal float64        `json:"subtotal"`
	Tax      float64        `json:"tax"`
	Total    float64        `json:"total"`
}

// EstimateRequest bundles the calculator arguments as they arrive from a
// form, a request file or the HTTP API. Either Config or Tier must be set;
// Tier and Species are looked up in a pricing catalog.
type EstimateRequest struct {
	Rooms            []string                 `json:"rooms" yaml:"rooms"`
	Dimensions       map[string]RoomDimension `json:"dimensions" yaml:"dimensions"`
	Config           *PricingConfig           `json:"config,omitempty" yaml:"config,omitempty"`
	Tier             string                   `json:"tier,omitempty" yaml:"tier,omitempty"`
	Species          string                   `json:"species,omitempty" yaml:"species,omitempty"`
	MaterialType     string                   `json:"material_type" yaml:"material_type"`
	MaterialGrade    string                   `json:"material_grade" yaml:"material_grade"`
	AIRecommendation *AIRecommendation        `json:"ai_recommendation,omitempty" yaml:"ai_recommendation,omitempty"`
}
