package entities

const (
	schemaNS = "http://schema.org/"
	oboNS    = "http://purl.obolibrary.org/obo/"
)

// DefaultPredicateProperties maps well-known predicate IRIs to the WikiBase
// properties that represent them. The IDs follow Wikidata numbering and can
// be overridden per instance in the config file.
var DefaultPredicateProperties = map[string]string{
	RDFType:                         "P31",   // instance of
	RDFSSubClassOf:                  "P279",  // subclass of
	RDFSSubPropertyOf:               "P1647", // subproperty of
	schemaNS + "inLanguage":         "P305",
	schemaNS + "version":            "P348",
	schemaNS + "isBasedOn":          "P144",
	schemaNS + "copyrightHolder":    "P3931",
	schemaNS + "licenseDeclared":    "P2479",
	schemaNS + "creativeWorkStatus": "P548",  // version type
	schemaNS + "image":              "P4765",
	schemaNS + "hasPart":            "P527",
	schemaNS + "codeRepository":     "P1324",
	schemaNS + "value":              "P8203", // supported metadata
	schemaNS + "amount":             "P1114", // quantity
	schemaNS + "URL":                "P2699",
	oboNS + "BFO_0000016":           "P7535", // function
}
