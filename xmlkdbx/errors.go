package xmlkdbx

import "fmt"

// UnexpectedElement is returned when the document's root or a required child
// element does not have the name the format requires.
type UnexpectedElement struct {
	Want string
	Got  string
}

func (e UnexpectedElement) Error() string {
	return fmt.Sprintf("xmlkdbx: expected <%s>, found <%s>", e.Want, e.Got)
}

// MissingBinaryRef is returned when an Entry or Meta Binary element's Ref
// attribute points at an id absent from the document's Binaries pool.
type MissingBinaryRef struct {
	ID uint32
}

func (e MissingBinaryRef) Error() string {
	return fmt.Sprintf("xmlkdbx: binary ref %d not found in pool", e.ID)
}
