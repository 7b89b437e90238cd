package model

import "time"

// Registration is one participant/vehicle entry for the festival.  Email is
// unique (case-insensitive) within whichever registration store is active.
type Registration struct {
	ID                 string    `json:"id"`
	RegistrationNumber string    `json:"registrationNumber"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone,omitempty"`
	City               string    `json:"city,omitempty"`
	VehicleMake        string    `json:"vehicleMake"`
	VehicleModel       string    `json:"vehicleModel"`
	VehicleYear        int       `json:"vehicleYear,omitempty"`
	VehicleCategory    string    `json:"vehicleCategory,omitempty"`
	PlateNumber        string    `json:"plateNumber,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// FullName joins first and last name with a single space.
func (r Registration) FullName() string {
	switch {
	case r.FirstName == "":
		return r.LastName
	case r.LastName == "":
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}
