package document

import "fmt"

// MappingError reports a labeler token that has no term in the document.
type MappingError struct {
	Sentence int
	TokenID  string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("document: token %s in sentence %d has no term", e.TokenID, e.Sentence)
}
