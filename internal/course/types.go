// Package course holds the Course entity and the stores that persist it.
package course

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidArgument marks a missing required field. It is a caller bug,
	// not a user-facing failure.
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("course not found")
	ErrAlreadyExists   = errors.New("course already exists")
)

// PDFFile references a document attached to a course.
type PDFFile struct {
	Path string `json:"path" yaml:"path" validate:"required"`
}

// Course is a study course with its attached reference documents.
// The ID is immutable once the course is created.
type Course struct {
	ID          string    `json:"id" yaml:"id" validate:"required"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Files       []PDFFile `json:"files" yaml:"files" validate:"dive"`
}

// Clone returns a copy that shares no slices with c.
func (c Course) Clone() Course {
	out := c
	out.Files = append([]PDFFile(nil), c.Files...)
	return out
}

// HasFile reports whether path is attached.
func (c Course) HasFile(path string) bool {
	for _, f := range c.Files {
		if f.Path == path {
			return true
		}
	}
	return false
}

// AttachFile appends path unless it is already attached.
func (c *Course) AttachFile(path string) {
	if c.HasFile(path) {
		return
	}
	c.Files = append(c.Files, PDFFile{Path: path})
}

// DetachFile removes every reference equal to path and reports whether any was removed.
func (c *Course) DetachFile(path string) bool {
	kept := c.Files[:0]
	removed := false
	for _, f := range c.Files {
		if f.Path == path {
			removed = true
			continue
		}
		kept = append(kept, f)
	}
	c.Files = kept
	return removed
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the fields required to persist a course.
func Validate(c *Course) error {
	if c == nil {
		return fmt.Errorf("%w: course is nil", ErrInvalidArgument)
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: course id is required", ErrInvalidArgument)
	}
	if err := validate.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return fmt.Errorf("%w: %s failed %q", ErrInvalidArgument, ve[0].Namespace(), ve[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}
