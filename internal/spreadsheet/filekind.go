package spreadsheet

import (
	"mime"
	"path/filepath"
	"strings"
)

// MIME types accepted for bulk import
const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	XLSContentType  = "application/vnd.ms-excel"
	CSVContentType  = "text/csv"
)

var allowedContentTypes = map[string]bool{
	XLSXContentType: true,
	XLSContentType:  true,
	CSVContentType:  true,
}

var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
}

// ValidateFileKind reports whether an upload may be handed to Decode.
// The declared content type decides; the file extension is only consulted
// when the client sent no useful type.
func ValidateFileKind(filename, contentType string) bool {
	mediaType := mediaTypeOf(contentType)
	if mediaType != "" && mediaType != "application/octet-stream" {
		return allowedContentTypes[mediaType]
	}
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// mediaTypeOf strips parameters such as charset from a Content-Type value
func mediaTypeOf(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}
