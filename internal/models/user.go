package models

// User represents one entry in the directory
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfilePhoto string `json:"profilePhoto"`
	Selected     bool   `json:"selected"`
}

// ImportedRow is a user record read from an uploaded spreadsheet.
// A nil field means the column was absent from the header row; a pointer to
// "" means the column exists but the cell was blank.
type ImportedRow struct {
	Line         int     `json:"line"`
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	ProfilePhoto *string `json:"profilePhoto,omitempty"`
}

// Value returns the string behind an optional field, or "" when absent
func Value(field *string) string {
	if field == nil {
		return ""
	}
	return *field
}
