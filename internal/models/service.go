package models

import (
	"fmt"
	"time"
)

// Service is a bookable offering of a provider. Duration and price are
// copied onto each booking at creation time, so editing a service never
// rewrites history.
type Service struct {
	ID              string    `json:"id" yaml:"id"`
	ProviderID      string    `json:"provider_id" yaml:"provider_id"`
	Name            string    `json:"name" yaml:"name"`
	DurationMinutes int       `json:"duration_minutes" yaml:"duration_minutes"`
	Price           float64   `json:"price" yaml:"price"`
	Active          bool      `json:"active" yaml:"active"`
	CreatedAt       time.Time `json:"created_at" yaml:"-"`
	UpdatedAt       time.Time `json:"updated_at" yaml:"-"`
}

// Validate rejects malformed services before they reach storage or the
// slot generator.
func (s *Service) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("service name is required")
	}
	if s.DurationMinutes <= 0 {
		return fmt.Errorf("service %q: duration must be positive, got %d", s.Name, s.DurationMinutes)
	}
	if s.Price < 0 {
		return fmt.Errorf("service %q: price must not be negative", s.Name)
	}
	return nil
}
