package entity

// AddressCandidate is a single accepted address produced by the extraction
// pipeline. Candidates are owned by the pipeline's in-memory batch until
// handed to the record store and are never mutated after creation.
type AddressCandidate struct {
	StreetName  string `json:"street_name"`
	City        string `json:"city"`
	FullAddress string `json:"fulladdress"`
}

// StoredAddress is the persisted shape of a candidate. The natural key is
// (Country, FullAddress); duplicate inserts are expected and ignored.
type StoredAddress struct {
	Country         string `json:"country"`
	CountryName     string `json:"country_name"`
	StreetName      string `json:"street_name"`
	City            string `json:"city"`
	FullAddress     string `json:"fulladdress"`
	ProcessingState int    `json:"status"`
	WorkerID        string `json:"worker_id"`
}
