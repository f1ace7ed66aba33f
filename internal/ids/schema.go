package ids

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/jacoelho/xsd"
	xsderrors "github.com/jacoelho/xsd/errors"
)

//go:embed schema/ids.xsd
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schema     *xsd.Schema
	schemaErr  error
)

func loadSchema() (*xsd.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = xsd.Load(schemaFS, "schema/ids.xsd")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compiling embedded IDS schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// ValidateXML checks serialized document bytes against the embedded IDS 1.0
// schema and returns one message per violation. A nil slice means the
// document is schema-valid.
func ValidateXML(data []byte) ([]string, error) {
	s, err := loadSchema()
	if err != nil {
		return nil, err
	}
	err = s.Validate(bytes.NewReader(data))
	if err == nil {
		return nil, nil
	}
	validations, ok := xsderrors.AsValidations(err)
	if !ok {
		return nil, newError(KindXsdValidationFailed, "schema validation: %v", err)
	}
	msgs := make([]string, 0, len(validations))
	for i := range validations {
		msgs = append(msgs, validations[i].Error())
	}
	return msgs, nil
}
