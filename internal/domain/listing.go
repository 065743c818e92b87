package domain

// Coordinate is a point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DefaultReference is used when the caller cannot supply a workplace location.
var DefaultReference = Coordinate{Lat: 10.848, Lon: 106.787}

// Binding is one cell of a SPARQL JSON result row.
type Binding struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// RawRecord is one result row keyed by query variable. Unbound variables are
// missing from the map, which is different from a bound empty string.
type RawRecord map[string]Binding

// Query variables emitted by the listings query.
const (
	FieldProject      = "project"
	FieldProjectID    = "project_id"
	FieldProjectName  = "project_name"
	FieldShortIntro   = "short_intro"
	FieldProcess      = "process"
	FieldTypeName     = "type_name"
	FieldGeo          = "geo"
	FieldRegionName   = "region_name"
	FieldAreaName     = "area_name"
	FieldWardName     = "ward_name"
	FieldStreetName   = "street_name"
	FieldInvestorName = "investor_name"
	FieldFacilities   = "all_facilities"
	FieldSurroundings = "all_surroundings"
	FieldPrice        = "price"
	FieldRooms        = "rooms"
	FieldSize         = "size"
	FieldToilets      = "toilets"
	FieldPricePerM2   = "price_million_per_m2"
	FieldImages       = "all_images"
)

// Candidate is a normalized project. Optional values are nil when the
// upstream row did not bind them.
type Candidate struct {
	Name         string      `json:"name"`
	ProjectIRI   *string     `json:"project_iri,omitempty"`
	ProjectID    *string     `json:"project_id,omitempty"`
	Type         *string     `json:"type,omitempty"`
	ShortIntro   *string     `json:"short_intro,omitempty"`
	Process      *string     `json:"process,omitempty"`
	Ward         *string     `json:"ward,omitempty"`
	Area         *string     `json:"area,omitempty"`
	Region       *string     `json:"region,omitempty"`
	Street       *string     `json:"street,omitempty"`
	Investor     *string     `json:"investor,omitempty"`
	Coordinate   *Coordinate `json:"coordinate,omitempty"`
	Facilities   []string    `json:"facilities"`
	Surroundings []string    `json:"surroundings"`
	Images       []string    `json:"images,omitempty"`

	// display only
	Price      *string `json:"price,omitempty"`
	Rooms      *string `json:"rooms,omitempty"`
	Size       *string `json:"size,omitempty"`
	Toilets    *string `json:"toilets,omitempty"`
	PricePerM2 *string `json:"price_million_per_m2,omitempty"`
}

// ScoredCandidate is a Candidate with its score and one reason per point.
type ScoredCandidate struct {
	Candidate
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// Recommendation is the outcome of one request.
type Recommendation struct {
	Reference  Coordinate        `json:"reference"`
	Considered int               `json:"considered"`
	Ranked     []ScoredCandidate `json:"-"`
	Top        []ScoredCandidate `json:"top"`
	Text       string            `json:"text"`
}
