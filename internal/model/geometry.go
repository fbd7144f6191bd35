package model

import "math"

// IsValidBevelAngle reports whether a is a valid corner angle: 0 <= a < 90.
func IsValidBevelAngle(a float64) bool {
	return a >= 0 && a < 90
}

// CanAnglesMatch reports whether two corner angles can share a bevel cut
// within tol. Zero angles (square corners) never match, even to each other.
func CanAnglesMatch(a1, a2, tol float64) bool {
	return a1 > 0 && a2 > 0 && math.Abs(a1-a2) <= tol
}

// SharedCutSavings is the geometric margin a shared bevel cut saves: the
// projection of the thinner part's thickness onto the cut angle. It is 0 at
// angle=0 and approaches min(t1, t2) as angle approaches 90°.
//
// math.Sin is deterministic for identical inputs on a given platform, so
// repeated calls with the same arguments yield bit-identical results.
func SharedCutSavings(angle, t1, t2 float64) float64 {
	thinner := t1
	if t2 < thinner {
		thinner = t2
	}
	return math.Sin(angle*math.Pi/180) * thinner
}

// ValidatePartAngles enforces the range and side-exclusion rules for a
// part's four corner angles, collecting every violation instead of
// stopping at the first. Returns nil when angles are fully valid.
func ValidatePartAngles(a PartAngles) error {
	var errs []FieldError

	checks := []struct {
		pos   CornerPosition
		value float64
	}{
		{TopLeft, a.TopLeft},
		{TopRight, a.TopRight},
		{BottomLeft, a.BottomLeft},
		{BottomRight, a.BottomRight},
	}
	for _, c := range checks {
		if !IsValidBevelAngle(c.value) {
			errs = append(errs, FieldError{
				Field:   c.pos.String(),
				Message: "angle must be in [0, 90)",
			})
		}
	}

	if a.TopLeft > 0 && a.BottomLeft > 0 {
		errs = append(errs, FieldError{
			Field:   "left",
			Message: "topLeft and bottomLeft cannot both be beveled",
		})
	}
	if a.TopRight > 0 && a.BottomRight > 0 {
		errs = append(errs, FieldError{
			Field:   "right",
			Message: "topRight and bottomRight cannot both be beveled",
		})
	}

	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}

// ValidatePart checks a Part as handed directly to the optimizer (as
// opposed to built through PartCatalog.AddPart, which additionally
// requires Quantity >= 1). Quantity == 0 is accepted here and simply
// yields zero instances; only a negative quantity is a validation error.
func ValidatePart(p Part) error {
	var errs []FieldError
	if p.Length <= 0 {
		errs = append(errs, FieldError{Field: "length", Message: "must be positive"})
	}
	if p.Quantity < 0 {
		errs = append(errs, FieldError{Field: "quantity", Message: "must not be negative"})
	}
	if p.Thickness < 0 {
		errs = append(errs, FieldError{Field: "thickness", Message: "must be positive"})
	}
	if angleErr := ValidatePartAngles(p.Angles); angleErr != nil {
		if ve, ok := angleErr.(*ValidationError); ok {
			errs = append(errs, ve.Errors...)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}
