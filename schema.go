package main

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/catalogue.schema.json
var catalogue_schema_json string

//go:embed schema/core-domains.schema.json
var core_domains_schema_json string

var CATALOGUE_SCHEMA = jsonschema.MustCompileString("catalogue.schema.json", catalogue_schema_json)
var CORE_DOMAINS_SCHEMA = jsonschema.MustCompileString("core-domains.schema.json", core_domains_schema_json)

// validates the JSON `blob` against `schema`.
func validate_json(schema *jsonschema.Schema, blob []byte) error {
	var doc any
	decoder := json.NewDecoder(bytes.NewReader(blob))
	decoder.UseNumber()
	err := decoder.Decode(&doc)
	if err != nil {
		return fmt.Errorf("failed to decode json for validation: %w", err)
	}
	return schema.Validate(doc)
}
