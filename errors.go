package motis

import "fmt"

// UndefinedKeyError reports a payload key that has no mapping entry on a
// target type whose policy rejects unmapped keys.
type UndefinedKeyError struct {
	Key string
}

func (e *UndefinedKeyError) Error() string {
	return fmt.Sprintf("undefined mapping key %q", e.Key)
}

// ValidationError reports a value declined by a target type's validation
// hook.
type ValidationError struct {
	Key string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation rejected value for key %q: %s", e.Key, e.Err)
	}
	return fmt.Sprintf("validation rejected value for key %q", e.Key)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// CoercionError reports that no conversion rule applied, or that the
// applicable rule failed to parse the source value.
type CoercionError struct {
	Key     string
	Want    string // target descriptor, e.g. "Time" or "Uint"
	Got     string // source payload kind
	Message string
	Err     error
}

func (e *CoercionError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("cannot coerce %s to %s", e.Got, e.Want)
	}
	if e.Key != "" {
		return fmt.Sprintf("coercion failed for key %q: %s", e.Key, msg)
	}
	return fmt.Sprintf("coercion failed: %s", msg)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// ArrayElementError reports a single sequence element that failed
// validation or coercion. The element is removed; the rest of the
// sequence still decodes.
type ArrayElementError struct {
	Key   string
	Index int
	Err   error
}

func (e *ArrayElementError) Error() string {
	return fmt.Sprintf("invalid element %d of array for key %q: %s", e.Index, e.Key, e.Err)
}

func (e *ArrayElementError) Unwrap() error {
	return e.Err
}
