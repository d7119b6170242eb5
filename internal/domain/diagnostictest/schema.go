package diagnostictest

import "github.com/diagtrack/diagtrack/internal/platform/validate"

// CreateInput is a validated create payload.
type CreateInput struct {
	PatientName string
	TestType    string
	Result      string
	Notes       *string
}

// UpdateInput is a validated update payload. An update never changes the
// patient name.
type UpdateInput struct {
	TestType string
	Result   string
	Notes    *string
}

// ParseCreate validates a decoded JSON body against the create shape.
func ParseCreate(v any) (CreateInput, error) {
	o := validate.NewObject(v)
	in := CreateInput{
		PatientName: o.String("patientName"),
		TestType:    o.String("testType"),
		Result:      o.String("result"),
		Notes:       o.NullableString("notes"),
	}
	if err := o.Err(); err != nil {
		return CreateInput{}, err
	}
	return in, nil
}

// ParseUpdate validates a decoded JSON body against the update shape. Any
// patientName in the body is ignored.
func ParseUpdate(v any) (UpdateInput, error) {
	o := validate.NewObject(v)
	in := UpdateInput{
		TestType: o.String("testType"),
		Result:   o.String("result"),
		Notes:    o.NullableString("notes"),
	}
	if err := o.Err(); err != nil {
		return UpdateInput{}, err
	}
	return in, nil
}
