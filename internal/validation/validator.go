package validation

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/user-directory-api/internal/models"
)

// ErrValidation is wrapped by *Errors
var ErrValidation = errors.New("validation failed")

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var imageTypes = []string{"image/jpeg", "image/png"}

// MaxPhotoSize is the largest photo, in bytes, whose data URI still fits in
// one exported spreadsheet cell (32,767 characters)
const MaxPhotoSize = 24000

// messages maps field and failed tag to the text shown next to the input
var messages = map[string]string{
	"name.required":            "Name is required",
	"email.required":           "Email is required",
	"email.email":              "Invalid email",
	"profilePhoto.required":    "Profile photo is required",
	"profilePhoto.url|datauri": "Profile photo must be a URL or data URI",
	"profilePhoto.max":         "Profile photo is too large",
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Errors collects the field errors of one form
type Errors struct {
	Fields []ValidationError `json:"errors"`
}

func (e *Errors) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

func (e *Errors) Unwrap() error {
	return ErrValidation
}

// Message returns the first message for a field, or ""
func (e *Errors) Message(field string) string {
	if e == nil {
		return ""
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// Photo is an uploaded profile photo
type Photo struct {
	Filename string
	Data     []byte
}

// DataURI encodes the photo as a data: URI using its sniffed media type
func (p *Photo) DataURI() string {
	mime := mimetype.Detect(p.Data).String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// UserForm is the user creation form as submitted from the browser
type UserForm struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Photo *Photo `json:"-"`
}

// Validator validates user creation input
type Validator struct {
	validate     *validator.Validate
	maxPhotoSize int64
}

// NewValidator creates a new validator instance. A maxPhotoSize of zero, or
// one above MaxPhotoSize, is replaced by MaxPhotoSize.
func NewValidator(maxPhotoSize int64) *Validator {
	if maxPhotoSize <= 0 || maxPhotoSize > MaxPhotoSize {
		maxPhotoSize = MaxPhotoSize
	}

	v := validator.New()
	// Report fields by their JSON names so they line up with form inputs
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v, maxPhotoSize: maxPhotoSize}
}

// ValidateForm validates the creation form. Name and email are trimmed in place.
func (v *Validator) ValidateForm(form *UserForm) error {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)

	fields := v.structErrors(form)

	// Validate photo
	switch {
	case form.Photo == nil || len(form.Photo.Data) == 0:
		fields = append(fields, ValidationError{Field: "profilePhoto", Message: messages["profilePhoto.required"]})
	case !ValidateImageKind(form.Photo.Filename, form.Photo.Data):
		fields = append(fields, ValidationError{
			Field:   "profilePhoto",
			Message: "Profile photo must be a JPEG or PNG image",
			Value:   form.Photo.Filename,
		})
	case int64(len(form.Photo.Data)) > v.maxPhotoSize:
		fields = append(fields, ValidationError{
			Field:   "profilePhoto",
			Message: fmt.Sprintf("Profile photo must be at most %d bytes", v.maxPhotoSize),
			Value:   form.Photo.Filename,
		})
	}

	if len(fields) > 0 {
		return &Errors{Fields: fields}
	}
	return nil
}

type createRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	ProfilePhoto string `json:"profilePhoto" validate:"omitempty,max=32767,url|datauri"`
}

// ValidateRequest validates a JSON creation request. The photo is optional there.
func (v *Validator) ValidateRequest(req *models.CreateUserRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.ProfilePhoto = strings.TrimSpace(req.ProfilePhoto)

	fields := v.structErrors(&createRequest{
		Name:         req.Name,
		Email:        req.Email,
		ProfilePhoto: req.ProfilePhoto,
	})
	if len(fields) > 0 {
		return &Errors{Fields: fields}
	}
	return nil
}

// ValidateImageKind accepts .jpg, .jpeg and .png files whose content is a JPEG or PNG
func ValidateImageKind(filename string, data []byte) bool {
	if !imageExtensions[strings.ToLower(filepath.Ext(filename))] {
		return false
	}
	detected := mimetype.Detect(data)
	for _, t := range imageTypes {
		if detected.Is(t) {
			return true
		}
	}
	return false
}

func (v *Validator) structErrors(s interface{}) []ValidationError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "form", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		ve := ValidationError{Field: fe.Field(), Message: msg}
		if fe.Tag() != "required" && fe.Tag() != "max" {
			ve.Value = fe.Value()
		}
		out = append(out, ve)
	}
	return out
}
