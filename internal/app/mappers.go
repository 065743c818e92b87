package app

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"estate_reco/internal/domain"
)

// NameFallback is shown for a project whose name is not bound.
const NameFallback = "N/A"

// listSep separates values aggregated by GROUP_CONCAT in the listings query.
const listSep = ", "

/********** tiny helpers **********/

// bindingStr returns the NFC-normalized value bound to field, or nil when the
// row does not bind it.
func bindingStr(r domain.RawRecord, field string) *string {
	b, ok := r[field]
	if !ok {
		return nil
	}
	v := norm.NFC.String(b.Value)
	return &v
}

// bindingList splits an aggregated field. An unbound field and an empty
// aggregate yield no items; otherwise every item is kept as given, including
// duplicates and empty ones, in input order.
func bindingList(r domain.RawRecord, field string) []string {
	s := bindingStr(r, field)
	if s == nil || *s == "" {
		return []string{}
	}
	return strings.Split(*s, listSep)
}

// ParseCoordinate reads a "lat,lon" literal. Anything other than exactly two
// finite numbers yields ok == false.
func ParseCoordinate(s string) (*domain.Coordinate, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, false
	}
	lat, ok := parseFinite(parts[0])
	if !ok {
		return nil, false
	}
	lon, ok := parseFinite(parts[1])
	if !ok {
		return nil, false
	}
	return &domain.Coordinate{Lat: lat, Lon: lon}, true
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

/********** record normalizer **********/

// NormalizeRecord maps one listings row into a Candidate. It never fails:
// missing or malformed values become absent fields.
func NormalizeRecord(r domain.RawRecord) domain.Candidate {
	c := domain.Candidate{
		Name:         NameFallback,
		ProjectIRI:   bindingStr(r, domain.FieldProject),
		ProjectID:    bindingStr(r, domain.FieldProjectID),
		Type:         bindingStr(r, domain.FieldTypeName),
		ShortIntro:   bindingStr(r, domain.FieldShortIntro),
		Process:      bindingStr(r, domain.FieldProcess),
		Ward:         bindingStr(r, domain.FieldWardName),
		Area:         bindingStr(r, domain.FieldAreaName),
		Region:       bindingStr(r, domain.FieldRegionName),
		Street:       bindingStr(r, domain.FieldStreetName),
		Investor:     bindingStr(r, domain.FieldInvestorName),
		Facilities:   bindingList(r, domain.FieldFacilities),
		Surroundings: bindingList(r, domain.FieldSurroundings),
		Images:       bindingList(r, domain.FieldImages),
		Price:        bindingStr(r, domain.FieldPrice),
		Rooms:        bindingStr(r, domain.FieldRooms),
		Size:         bindingStr(r, domain.FieldSize),
		Toilets:      bindingStr(r, domain.FieldToilets),
		PricePerM2:   bindingStr(r, domain.FieldPricePerM2),
	}
	if name := bindingStr(r, domain.FieldProjectName); name != nil {
		c.Name = *name
	}
	if geo := bindingStr(r, domain.FieldGeo); geo != nil {
		if coord, ok := ParseCoordinate(*geo); ok {
			c.Coordinate = coord
		}
	}
	return c
}

// NormalizeRecords normalizes a batch in input order.
func NormalizeRecords(rs []domain.RawRecord) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(rs))
	for _, r := range rs {
		out = append(out, NormalizeRecord(r))
	}
	return out
}
