package model

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// MaterialCatalog manages a caller-supplied set of stock material types:
// CRUD plus derived queries.
type MaterialCatalog struct {
	materials []Material
}

// AddMaterial validates and appends a new Material, rejecting duplicate
// lengths and non-positive/non-finite values.
func (c *MaterialCatalog) AddMaterial(length float64) (Material, error) {
	if length <= 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return Material{}, &ValidationError{Errors: []FieldError{
			{Field: "length", Message: "must be positive and finite"},
		}}
	}
	for _, m := range c.materials {
		if m.Length == length {
			return Material{}, &ValidationError{Errors: []FieldError{
				{Field: "length", Message: fmt.Sprintf("duplicate material length %g", length)},
			}}
		}
	}
	m := NewMaterial(uuid.New().String()[:8], length)
	c.materials = append(c.materials, m)
	return m, nil
}

// Remove deletes a material by id. Reports false if no material matched.
func (c *MaterialCatalog) Remove(id string) bool {
	for i, m := range c.materials {
		if m.ID == id {
			c.materials = append(c.materials[:i], c.materials[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of every material in the catalog.
func (c *MaterialCatalog) List() []Material {
	out := make([]Material, len(c.materials))
	copy(out, c.materials)
	return out
}

// Longest returns the material with the greatest length, if any.
func (c *MaterialCatalog) Longest() (Material, bool) {
	return extremeMaterial(c.materials, func(a, b float64) bool { return a > b })
}

// Shortest returns the material with the smallest length, if any.
func (c *MaterialCatalog) Shortest() (Material, bool) {
	return extremeMaterial(c.materials, func(a, b float64) bool { return a < b })
}

func extremeMaterial(materials []Material, better func(a, b float64) bool) (Material, bool) {
	if len(materials) == 0 {
		return Material{}, false
	}
	best := materials[0]
	for _, m := range materials[1:] {
		if better(m.Length, best.Length) {
			best = m
		}
	}
	return best, true
}

// PartCatalog manages the caller's part demand list: CRUD plus derived
// queries over it.
type PartCatalog struct {
	parts []Part
}

// AddPart validates and appends a new Part. Quantity must be a positive
// integer, angles must pass ValidatePartAngles, and length must be
// positive. Thickness must not be negative; 0 selects DefaultThickness.
func (c *PartCatalog) AddPart(length float64, quantity int, angles PartAngles, thickness float64) (Part, error) {
	var errs []FieldError
	if length <= 0 {
		errs = append(errs, FieldError{Field: "length", Message: "must be positive"})
	}
	if quantity < 1 {
		errs = append(errs, FieldError{Field: "quantity", Message: "must be a positive integer"})
	}
	if thickness < 0 {
		errs = append(errs, FieldError{Field: "thickness", Message: "must be positive"})
	}
	if angleErr := ValidatePartAngles(angles); angleErr != nil {
		if ve, ok := angleErr.(*ValidationError); ok {
			errs = append(errs, ve.Errors...)
		}
	}
	if len(errs) > 0 {
		return Part{}, &ValidationError{Errors: errs}
	}

	p := NewPart(length, quantity, angles)
	if thickness > 0 {
		p.Thickness = thickness
	}
	c.parts = append(c.parts, p)
	return p, nil
}

// Remove deletes a part by id. Reports false if no part matched.
func (c *PartCatalog) Remove(id string) bool {
	for i, p := range c.parts {
		if p.ID == id {
			c.parts = append(c.parts[:i], c.parts[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of every part in the catalog.
func (c *PartCatalog) List() []Part {
	out := make([]Part, len(c.parts))
	copy(out, c.parts)
	return out
}

// Longest returns the part with the greatest length, if any.
func (c *PartCatalog) Longest() (Part, bool) {
	return extremePart(c.parts, func(a, b float64) bool { return a > b })
}

// Shortest returns the part with the smallest length, if any.
func (c *PartCatalog) Shortest() (Part, bool) {
	return extremePart(c.parts, func(a, b float64) bool { return a < b })
}

func extremePart(parts []Part, better func(a, b float64) bool) (Part, bool) {
	if len(parts) == 0 {
		return Part{}, false
	}
	best := parts[0]
	for _, p := range parts[1:] {
		if better(p.Length, best.Length) {
			best = p
		}
	}
	return best, true
}

// FilterByAngle returns parts with (or without) any usable bevel angle.
func (c *PartCatalog) FilterByAngle(hasUsableAngles bool) []Part {
	var out []Part
	for _, p := range c.parts {
		if p.HasUsableAngles() == hasUsableAngles {
			out = append(out, p)
		}
	}
	return out
}

// FilterByLengthRange returns parts whose length falls within [min, max].
func (c *PartCatalog) FilterByLengthRange(min, max float64) []Part {
	var out []Part
	for _, p := range c.parts {
		if p.Length >= min && p.Length <= max {
			out = append(out, p)
		}
	}
	return out
}

// FilterByThickness returns parts with the given effective thickness.
func (c *PartCatalog) FilterByThickness(thickness float64) []Part {
	var out []Part
	for _, p := range c.parts {
		if p.EffectiveThickness() == thickness {
			out = append(out, p)
		}
	}
	return out
}
