package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user-directory-api/internal/service"
	"github.com/user-directory-api/internal/validation"
)

var errMissingFile = errors.New("file is required")

// parseMultipart bounds the request body and parses the multipart form
func parseMultipart(c *gin.Context, maxSize int64) (*multipart.Form, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
	form, err := c.MultipartForm()
	if err != nil {
		if isTooLarge(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errMissingFile, err)
	}
	return form, nil
}

// readUpload reads the named file field of a multipart request
func readUpload(c *gin.Context, field string, maxSize int64) (*service.Upload, error) {
	form, err := parseMultipart(c, maxSize)
	if err != nil {
		return nil, err
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, errMissingFile
	}

	data, err := readFileHeader(headers[0])
	if err != nil {
		return nil, err
	}
	return &service.Upload{
		Filename:    headers[0].Filename,
		ContentType: headers[0].Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// readUserForm reads the user creation form. A missing photo is left nil for the validator to report.
func readUserForm(form *multipart.Form) (*validation.UserForm, error) {
	userForm := &validation.UserForm{
		Name:  firstValue(form, "name"),
		Email: firstValue(form, "email"),
	}
	if headers := form.File["profile_photo"]; len(headers) > 0 && headers[0].Size > 0 {
		data, err := readFileHeader(headers[0])
		if err != nil {
			return nil, err
		}
		userForm.Photo = &validation.Photo{Filename: headers[0].Filename, Data: data}
	}
	return userForm, nil
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	return data, nil
}

func firstValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
