package sparql

import "fmt"

// DefaultOntologyPrefix is the namespace of the real-estate ontology.
const DefaultOntologyPrefix = "https://raw.githubusercontent.com/DaiThiBA/dataOWL/refs/heads/main/updated_real_estate_ontology_V3.rdf#"

// ListingsLimit caps the rows returned by the listings query.
const ListingsLimit = 100

// listingsQuery selects every project with its location, facilities,
// surroundings, investor and unit details. Multi-valued properties are
// aggregated with ", " so each project yields one row per distinct unit.
const listingsQuery = `
PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>
PREFIX : <%s>

SELECT ?project ?project_id ?project_name ?short_intro ?process ?type_name
       ?geo ?region_name ?area_name ?ward_name ?street_name ?investor_name
       (GROUP_CONCAT(DISTINCT ?facilities; separator=", ") as ?all_facilities)
       (GROUP_CONCAT(DISTINCT ?surroundings; separator=", ") as ?all_surroundings)
       ?price ?rooms ?size ?toilets ?price_million_per_m2
       (GROUP_CONCAT(DISTINCT ?images; separator=", ") as ?all_images)
WHERE {
    ?project rdf:type :Project .
    OPTIONAL { ?project :projectid ?project_id }
    OPTIONAL { ?project :project_name ?project_name }
    OPTIONAL { ?project :short_introduction ?short_intro }
    OPTIONAL { ?project :process ?process }
    OPTIONAL { ?project :type_name ?type_name }
    OPTIONAL { ?project :geo ?geo }

    OPTIONAL {
        ?project :located_at ?location .
        OPTIONAL { ?location :region_name ?region_name }
        OPTIONAL { ?location :area_name ?area_name }
        OPTIONAL { ?location :ward_name ?ward_name }
        OPTIONAL { ?location :street_name ?street_name }
    }

    OPTIONAL { ?project :facilities ?facilities }
    OPTIONAL { ?project :surroundings ?surroundings }

    OPTIONAL {
        ?project :has_investor ?investor .
        OPTIONAL { ?investor :investor_name ?investor_name }
    }

    OPTIONAL {
        ?real_estate :belongs_to_project ?project ;
                     rdf:type :RealEstate .
        OPTIONAL { ?real_estate :price ?price }
        OPTIONAL { ?real_estate :rooms ?rooms }
        OPTIONAL { ?real_estate :size ?size }
        OPTIONAL { ?real_estate :toilets ?toilets }
        OPTIONAL { ?real_estate :price_million_per_m2 ?price_million_per_m2 }

        OPTIONAL {
            ?real_estate :has_media ?media .
            ?media :images ?images
        }
    }
}
GROUP BY ?project ?project_id ?project_name ?short_intro ?process ?type_name
         ?geo ?region_name ?area_name ?ward_name ?street_name ?investor_name
         ?price ?rooms ?size ?toilets ?price_million_per_m2
LIMIT %d
`

// ListingsQuery renders the listings query for the given ontology prefix.
func ListingsQuery(prefix string) string {
	if prefix == "" {
		prefix = DefaultOntologyPrefix
	}
	return fmt.Sprintf(listingsQuery, prefix, ListingsLimit)
}
