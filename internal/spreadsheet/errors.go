package spreadsheet

import (
	"errors"
	"fmt"
)

// ErrInvalidFileKind indicates the uploaded file is not on the spreadsheet allow-list
var ErrInvalidFileKind = errors.New("invalid file kind")

// ErrCellTooLong indicates a value longer than one spreadsheet cell can hold
var ErrCellTooLong = errors.New("value exceeds spreadsheet cell limit")

// ErrParse indicates the uploaded bytes could not be read as a spreadsheet
var ErrParse = errors.New("could not parse spreadsheet")

// ParseError represents a decode failure for a specific format
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v (%s)", ErrParse, e.Format)
	}
	return fmt.Sprintf("%v (%s): %v", ErrParse, e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match any ParseError against ErrParse
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func newParseError(format Format, err error) *ParseError {
	return &ParseError{Format: format, Err: err}
}
