package schema

const ExclusionRuleSchemaTextV1 = `{
	"type": "record",
	"namespace": "salesops.catalogue",
	"name": "exclusion_rule",
	"fields": [
		{"name": "group_key", "type": "string"},
		{"name": "hidden", "type": "boolean"}
	]
}`

type ExclusionRuleV1 struct {
	GroupKey string `avro:"group_key"`
	Hidden   bool   `avro:"hidden"`
}
