package appforge

var (
	TopLevelObjects    = topLevelObjects
	JSONCandidates     = jsonCandidates
	BuildCodeContext   = buildCodeContext
	ValidateDocument   = validateDocument
	MaxFallbackPurpose = maxFallbackPurpose
)

const (
	SchemaIntent = schemaIntent
	SchemaPlan   = schemaPlan
	SchemaCode   = schemaCode
	SchemaTests  = schemaTests
)

func DecodeIntent(text string) (*Intent, error) {
	v, _, err := decodeResponse[Intent](text, "purpose")
	return v, err
}

func DecodePlan(text string) (*Plan, error) {
	v, _, err := decodeResponse[Plan](text, "steps")
	return v, err
}
