package spreadsheet

import "testing"

func TestValidateFileKind(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		want        bool
	}{
		{"xlsx mime", "users.xlsx", XLSXContentType, true},
		{"xls mime", "users.xls", XLSContentType, true},
		{"csv mime", "users.csv", "text/csv", true},
		{"csv mime with charset", "users.csv", "text/csv; charset=utf-8", true},
		{"mime is case insensitive", "users.csv", "Text/CSV", true},
		{"csv reported as excel by windows", "users.csv", XLSContentType, true},
		{"png", "avatar.png", "image/png", false},
		{"json", "users.json", "application/json", false},
		{"plain text", "users.txt", "text/plain", false},
		{"pdf renamed to csv", "users.csv", "application/pdf", false},
		{"octet stream falls back to extension", "users.XLSX", "application/octet-stream", true},
		{"missing type falls back to extension", "users.csv", "", true},
		{"missing type unknown extension", "users.ndjson", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateFileKind(tt.filename, tt.contentType); got != tt.want {
				t.Errorf("ValidateFileKind(%q, %q) = %v, want %v", tt.filename, tt.contentType, got, tt.want)
			}
		})
	}
}
