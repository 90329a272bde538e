package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/ribbon-tracker/internal/fragment"
)

// fragmentDocumentSchema describes a pre-linearized document.
const fragmentDocumentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["fragments"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string"},
    "fragments": {
      "type": "array",
      "items": {"type": "string"}
    }
  }
}`

type fragmentDocument struct {
	Name      string   `json:"name"`
	Fragments []string `json:"fragments"`
}

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("fragments.json", strings.NewReader(fragmentDocumentSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("fragments.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// parseFragmentDocument validates data against the fragment document schema
// and builds its stream. fallbackName is used when the document has no name.
func parseFragmentDocument(fallbackName string, data []byte) (fragment.Stream, error) {
	schema, err := compileSchema()
	if err != nil {
		return fragment.Stream{}, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fragment.Stream{}, fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fragment.Stream{}, fmt.Errorf("json does not match schema: %w", err)
	}
	var doc fragmentDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return fragment.Stream{}, fmt.Errorf("decode document: %w", err)
	}
	name := doc.Name
	if strings.TrimSpace(name) == "" {
		name = fallbackName
	}
	return fragment.New(name, doc.Fragments), nil
}
