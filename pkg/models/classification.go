package models

// PermitTier describes the relationship a classified permit represents for a
// brand. Each permit number belongs to exactly one tier per brand.
type PermitTier string

const (
	TierImporter    PermitTier = "importer"
	TierProducer    PermitTier = "producer"
	TierBrandPermit PermitTier = "brand_permit"
)

// ProducerRegistry identifies which reference registry a producer permit
// matched.
type ProducerRegistry string

const (
	RegistrySpirit ProducerRegistry = "spirit"
	RegistryWine   ProducerRegistry = "wine"
)

// ImporterDetail is the detail payload stored for an importer-tier permit,
// keyed by the resolved importer permit number.
type ImporterDetail struct {
	PermitNumber  string `json:"permit_number"`
	OwnerName     string `json:"owner_name"`
	OperatingName string `json:"operating_name,omitempty"`
	Street        string `json:"street,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	Zip           string `json:"zip,omitempty"`
}

// ProducerDetail is the detail payload stored for a producer-tier permit.
// OriginalPermit is set when the match came through a reformatted key probe,
// recording the permit number as it appeared on the filing.
type ProducerDetail struct {
	PermitNumber   string           `json:"permit_number"`
	OwnerName      string           `json:"owner_name"`
	OperatingName  string           `json:"operating_name,omitempty"`
	Street         string           `json:"street,omitempty"`
	City           string           `json:"city,omitempty"`
	State          string           `json:"state,omitempty"`
	Zip            string           `json:"zip,omitempty"`
	Registry       ProducerRegistry `json:"registry"`
	OriginalPermit string           `json:"original_permit,omitempty"`
}

// Classification is the tagged outcome of classifying one permit for one
// brand. Exactly one of Importer/Producer is set for the matching tier;
// brand-permit classifications carry no detail payload. Permit is the key
// under which the classification is recorded (for importer matches this is
// the resolved importer permit, which may differ from the filing's raw
// permit).
type Classification struct {
	Tier     PermitTier
	Permit   string
	Importer *ImporterDetail
	Producer *ProducerDetail
}
