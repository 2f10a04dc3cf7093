package event

import "github.com/invopop/jsonschema"

// Schema describes the JSON records produced by Marshal.
func Schema() *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.DoNotReference = true
	return reflector.Reflect(&Record{})
}
