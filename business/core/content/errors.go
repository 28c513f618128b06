package content

import "fmt"

// UploadError is returned when content could not be stored or the store did
// not hand back an identifier.
type UploadError struct {
	Err error
}

// Error implements the error interface.
func (ue *UploadError) Error() string {
	return fmt.Sprintf("failed to upload content: %s", ue.Err)
}

// Unwrap returns the underlying failure.
func (ue *UploadError) Unwrap() error {
	return ue.Err
}

// RetrievalError is returned when the content for an identifier could not
// be read back.
type RetrievalError struct {
	CID string
	Err error
}

// Error implements the error interface.
func (re *RetrievalError) Error() string {
	return fmt.Sprintf("failed to retrieve content %q: %s", re.CID, re.Err)
}

// Unwrap returns the underlying failure.
func (re *RetrievalError) Unwrap() error {
	return re.Err
}
