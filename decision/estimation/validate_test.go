package estimation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fcerrors "flooring-cost/pkg/errors"
)

func TestValidateEstimate(t *testing.T) {
	tests := []struct {
		name  string
		rooms []string
		dims  map[string]RoomDimension
		want  ValidationResult
	}{
		{
			name: "empty room list",
			want: ValidationResult{IsValid: true},
		},
		{
			name:  "valid rooms",
			rooms: []string{"Kitchen", "Den"},
			dims: map[string]RoomDimension{
				"Kitchen": NewRoomDimension(12, 14),
				"Den":     NewRoomDimension(200, 200),
			},
			want: ValidationResult{IsValid: true},
		},
		{
			name:  "missing dimensions",
			rooms: []string{"Kitchen", "Pantry"},
			dims:  map[string]RoomDimension{"Kitchen": NewRoomDimension(12, 14)},
			want:  ValidationResult{Error: "Please add dimensions for Pantry", Room: "Pantry"},
		},
		{
			name:  "zero length",
			rooms: []string{"Den"},
			dims:  map[string]RoomDimension{"Den": {Length: 0, Width: 10}},
			want:  ValidationResult{Error: "Please enter a valid length for Den", Room: "Den"},
		},
		{
			name:  "NaN length",
			rooms: []string{"Den"},
			dims:  map[string]RoomDimension{"Den": {Length: math.NaN(), Width: 10}},
			want:  ValidationResult{Error: "Please enter a valid length for Den", Room: "Den"},
		},
		{
			name:  "negative width",
			rooms: []string{"Den"},
			dims:  map[string]RoomDimension{"Den": {Length: 10, Width: -3}},
			want:  ValidationResult{Error: "Please enter a valid width for Den", Room: "Den"},
		},
		{
			name:  "oversized length",
			rooms: []string{"Hall"},
			dims:  map[string]RoomDimension{"Hall": {Length: 250, Width: 10, Sqft: 2500}},
			want: ValidationResult{
				Error: "Room dimensions for Hall seem unusually large (max 200ft). Please verify.",
				Room:  "Hall",
			},
		},
		{
			name:  "oversized width",
			rooms: []string{"Hall"},
			dims:  map[string]RoomDimension{"Hall": {Length: 10, Width: 200.5}},
			want: ValidationResult{
				Error: "Room dimensions for Hall seem unusually large (max 200ft). Please verify.",
				Room:  "Hall",
			},
		},
		{
			name:  "first failure wins",
			rooms: []string{"Attic", "Basement"},
			dims: map[string]RoomDimension{
				"Attic":    {Length: 10, Width: 0},
				"Basement": {Length: 0, Width: 0},
			},
			want: ValidationResult{Error: "Please enter a valid width for Attic", Room: "Attic"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateEstimate(tt.rooms, tt.dims))
		})
	}
}

func TestValidationResultErr(t *testing.T) {
	assert.NoError(t, ValidationResult{IsValid: true}.Err())

	res := ValidateEstimate([]string{"Pantry"}, nil)
	err := res.Err()
	require.Error(t, err)
	assert.True(t, fcerrors.HasCode(err, fcerrors.ErrCodeInvalidDimensions))

	var estErr *fcerrors.EstimateError
	require.ErrorAs(t, err, &estErr)
	assert.Equal(t, "Pantry", estErr.Room)
	assert.Equal(t, "Please add dimensions for Pantry", estErr.Message)
}
