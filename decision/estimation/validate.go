package estimation

import (
	"fmt"

	fcerrors "flooring-cost/pkg/errors"
)

// MaxRoomSideFeet is the longest room side accepted without a second look.
const MaxRoomSideFeet = 200.0

// ValidationResult is the outcome of ValidateEstimate. Error is a message
// fit to show next to the form.
type ValidationResult struct {
	IsValid bool   `json:"is_valid"`
	Error   string `json:"error,omitempty"`
	Room    string `json:"room,omitempty"`
}

// Err returns the failure as a structured error, or nil when valid.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return fcerrors.NewInvalidDimensionsError(r.Error, r.Room)
}

// ValidateEstimate checks room dimensions in room order and stops at the
// first problem. An empty room list is valid.
func ValidateEstimate(rooms []string, dimensions map[string]RoomDimension) ValidationResult {
	for _, room := range rooms {
		dim, ok := dimensions[room]
		if !ok {
			return invalid(room, "Please add dimensions for %s", room)
		}
		// Negated comparisons so NaN fails too.
		if !(dim.Length > 0) {
			return invalid(room, "Please enter a valid length for %s", room)
		}
		if !(dim.Width > 0) {
			return invalid(room, "Please enter a valid width for %s", room)
		}
		if dim.Length > MaxRoomSideFeet || dim.Width > MaxRoomSideFeet {
			return invalid(room, "Room dimensions for %s seem unusually large (max 200ft). Please verify.", room)
		}
	}
	return ValidationResult{IsValid: true}
}

func invalid(room, format string, args ...any) ValidationResult {
	return ValidationResult{
		IsValid: false,
		Error:   fmt.Sprintf(format, args...),
		Room:    room,
	}
}
