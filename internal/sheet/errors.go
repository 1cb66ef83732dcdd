package sheet

import "fmt"

// AssetError reports a failed image fetch or decode. It degrades the single
// affected slot to a placeholder; the rest of the sheet still prints.
type AssetError struct {
	URL string
	Err error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("asset %s: %v", e.URL, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}
