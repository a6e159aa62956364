package models

// ResolvedImporter carries pre-resolved importer context attached to an
// ingested filing when an upstream matching step has already run. The permit
// number here is the importer-registry identifier, which may differ from the
// raw permit on the filing.
type ResolvedImporter struct {
	PermitNumber  string `json:"permit_number"`
	OwnerName     string `json:"owner_name"`
	OperatingName string `json:"operating_name,omitempty"`
	Street        string `json:"street,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	Zip           string `json:"zip,omitempty"`
}

// IngestRecord is one normalized row of the filing feed.
type IngestRecord struct {
	BrandName            string            `json:"brand_name"`
	TTBID                string            `json:"ttb_id"`
	PermitNumber         string            `json:"permit_number"`
	SerialNumber         string            `json:"serial_number,omitempty"`
	CompletionDate       string            `json:"completion_date,omitempty"`
	FancifulName         string            `json:"fanciful_name,omitempty"`
	Origin               string            `json:"origin,omitempty"`
	OriginDescription    string            `json:"origin_description,omitempty"`
	ClassType            string            `json:"class_type,omitempty"`
	ClassTypeDescription string            `json:"class_type_description,omitempty"`
	Importer             *ResolvedImporter `json:"importer,omitempty"`
}

// Country returns the origin value recorded on the brand's country set,
// preferring the description over the raw code.
func (r *IngestRecord) Country() string {
	if r.OriginDescription != "" {
		return r.OriginDescription
	}
	return r.Origin
}

// ClassTypeValue returns the product-category value recorded on the brand's
// class-type set, preferring the description over the raw code.
func (r *IngestRecord) ClassTypeValue() string {
	if r.ClassTypeDescription != "" {
		return r.ClassTypeDescription
	}
	return r.ClassType
}

// UpsertResult reports what one permit-record upsert changed, for caller-side
// batch statistics.
type UpsertResult struct {
	BrandCreated bool
	SKUCreated   bool
	SKUUpdated   bool
}
