package models

import "time"

// Catch represents a row in the catches table. PointValue is derived at
// write time from the species point value and the catch measurements.
type Catch struct {
	ID          string    `json:"id"`
	Length      float64   `json:"length"`
	Weight      float64   `json:"weight"`
	Location    string    `json:"location"`
	Pictures    []string  `json:"pictures"`
	Description string    `json:"description"`
	PointValue  int       `json:"point_value"`
	Date        time.Time `json:"date"`
	SpeciesID   string    `json:"species_id"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Species represents a row in the species table.
type Species struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PointValue int    `json:"point_value"`
}

// Location represents a fishing spot registered by a user.
type Location struct {
	ID          string    `json:"id"`
	Longitude   string    `json:"longitude"`
	Latitude    string    `json:"latitude"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
