package model

import "time"

// Property represents a single rentable unit in the host's portfolio.
// Properties are read-only inputs to the offer engine: they are created
// and maintained by inventory tooling and never mutated here.
//
// Fields:
//  ID              - primary key identifier (slug-style, e.g. "prop_villa_01").
//  Name            - public facing name, unique across the portfolio.
//  Location        - neighborhood or area used for location scoring.
//  Beds            - number of beds; the primary upgrade eligibility filter.
//  Baths           - number of bathrooms.
//  ListNightlyRate - standard (rack) nightly rate before any discount.
//  Type            - internal categorization (e.g. "Apartment", "Villa").
//  Category        - qualitative tier (e.g. "Standard", "Premium").
//  Amenities       - feature list; stored as a JSON column, decoded by the
//                    repository layer.
//  Images          - image URLs or paths, same storage treatment.
type Property struct {
	ID              string    `json:"id"`                // properties.id
	Name            string    `json:"name"`              // properties.name
	Location        string    `json:"location"`          // properties.location
	Beds            int       `json:"beds"`              // properties.beds
	Baths           int       `json:"baths"`             // properties.baths
	ListNightlyRate float64   `json:"list_nightly_rate"` // properties.list_nightly_rate
	Type            string    `json:"type"`              // properties.type
	Category        string    `json:"category"`          // properties.category
	Amenities       []string  `json:"amenities"`         // properties.amenities (JSON text)
	Images          []string  `json:"images"`            // properties.images (JSON text)
	CreatedAt       time.Time `json:"created_at"`        // properties.created_at
	UpdatedAt       time.Time `json:"updated_at"`        // properties.updated_at
}
