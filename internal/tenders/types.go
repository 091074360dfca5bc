package tenders

// Release is one OCDS release as served by the eTenders API. Records are
// read-only; comparison defaults are applied at sort time, never written back.
type Release struct {
	OCID   string   `json:"ocid"`
	ID     string   `json:"id"`
	Date   string   `json:"date"`
	Tag    []string `json:"tag,omitempty"`
	Buyer  *Party   `json:"buyer,omitempty"`
	Tender *Tender  `json:"tender,omitempty"`
}

// Tender is the nested tender block of a release.
type Tender struct {
	ID                       string     `json:"id"`
	Title                    string     `json:"title"`
	Description              string     `json:"description"`
	Status                   string     `json:"status"`
	MainProcurementCategory  string     `json:"mainProcurementCategory"`
	ProcurementMethodDetails string     `json:"procurementMethodDetails,omitempty"`
	Value                    *Value     `json:"value,omitempty"`
	TenderPeriod             *Period    `json:"tenderPeriod,omitempty"`
	ProcuringEntity          *Party     `json:"procuringEntity,omitempty"`
	Documents                []Document `json:"documents,omitempty"`
}

// Value is an OCDS monetary amount.
type Value struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Period is an OCDS date range. Dates stay as the upstream ISO strings.
type Period struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// Party is a named organisation reference.
type Party struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Document is one tender attachment.
type Document struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	URL    string `json:"url,omitempty"`
	Format string `json:"format,omitempty"`
}

// Filters drives the pure filter and sort stages.
type Filters struct {
	Query    string `json:"query"`
	Status   string `json:"status"`
	Category string `json:"category"`
	SortBy   string `json:"sortBy"`
}

// Input is one search request.
type Input struct {
	Page     int
	PageSize int
	Province string
	Filters  Filters
}

// Result is one page of the filtered, sorted release set.
type Result struct {
	Releases   []Release `json:"releases"`
	Total      int       `json:"total"`
	TotalPages int       `json:"total_pages"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}

// releasePackage is the upstream OCDS envelope.
type releasePackage struct {
	URI      string    `json:"uri"`
	Releases []Release `json:"releases"`
}
