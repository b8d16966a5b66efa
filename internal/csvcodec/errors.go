package csvcodec

import "errors"

var (
	// ErrEmptyInput is returned when the import text contains no lines at all.
	ErrEmptyInput = errors.New("import file is empty")
	// ErrNoRecords is returned when the import text has a header but no data rows.
	ErrNoRecords = errors.New("import file contains no data rows")
)
