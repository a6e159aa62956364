package models

import "time"

// ImporterRecord is one row of the importer reference registry, populated by
// a separate ingestion feed and read-only from the classifier's perspective.
type ImporterRecord struct {
	PermitNumber  string    `json:"permit_number"`
	OwnerName     string    `json:"owner_name"`
	OperatingName string    `json:"operating_name,omitempty"`
	Street        string    `json:"street,omitempty"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	Zip           string    `json:"zip,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProducerRecord is one row of a producer reference registry (spirit or
// wine), keyed by permit number within its registry.
type ProducerRecord struct {
	PermitNumber  string           `json:"permit_number"`
	Registry      ProducerRegistry `json:"registry"`
	OwnerName     string           `json:"owner_name"`
	OperatingName string           `json:"operating_name,omitempty"`
	Street        string           `json:"street,omitempty"`
	City          string           `json:"city,omitempty"`
	State         string           `json:"state,omitempty"`
	Zip           string           `json:"zip,omitempty"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Detail converts a registry row into the detail payload stored on a brand.
func (p *ProducerRecord) Detail(originalPermit string) *ProducerDetail {
	d := &ProducerDetail{
		PermitNumber:  p.PermitNumber,
		OwnerName:     p.OwnerName,
		OperatingName: p.OperatingName,
		Street:        p.Street,
		City:          p.City,
		State:         p.State,
		Zip:           p.Zip,
		Registry:      p.Registry,
	}
	if originalPermit != "" && originalPermit != p.PermitNumber {
		d.OriginalPermit = originalPermit
	}
	return d
}
