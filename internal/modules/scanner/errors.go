package scanner

import (
	"errors"
	"fmt"
)

var (
	// ErrInputRejected means the request carried no usable text. No model call was made.
	ErrInputRejected = errors.New("input rejected")
	// ErrOCRUnavailable means an image was submitted but no OCR backend is configured.
	ErrOCRUnavailable = errors.New("image text extraction not configured")
	// ErrNoTextExtracted is the ErrInputRejected case of an image whose OCR text is blank.
	ErrNoTextExtracted = fmt.Errorf("%w: could not extract text from the uploaded image", ErrInputRejected)
)
