package audiodescricao

import (
	"strings"

	"github.com/mktpassos/audiodescricao-app/describer"
)

const (
	DefaultLanguage = "pt-BR"
	DefaultMimeType = "image/jpeg"
)

// Verbosity controls the target sentence count of a description.
type Verbosity string

const (
	VerbosityShort    Verbosity = "short"
	VerbosityStandard Verbosity = "standard"
	VerbosityLong     Verbosity = "long"
)

// ParseVerbosity maps input onto a Verbosity. Matching is exact apart from
// surrounding whitespace, anything else is VerbosityStandard.
func ParseVerbosity(s string) Verbosity {
	switch v := Verbosity(strings.TrimSpace(s)); v {
	case VerbosityShort, VerbosityLong:
		return v
	default:
		return VerbosityStandard
	}
}

// ImageSource is either an InlineImage or a RemoteImage.
type ImageSource interface {
	isImageSource()
}

// InlineImage carries the image bytes in the request.
type InlineImage struct {
	Base64   string // without any data: URL prefix
	MimeType string
}

// RemoteImage references an image to be fetched before describing.
type RemoteImage struct {
	URL string

	// MimeType is the declared type, used when the fetch response has no
	// Content-Type.
	MimeType string
}

func (InlineImage) isImageSource() {}
func (RemoteImage) isImageSource() {}

// DescriptionRequest is the canonical, validated form of a describe request.
type DescriptionRequest struct {
	Image     ImageSource
	Language  string
	Verbosity Verbosity
}

// ResolvedImage is the image as sent to the backend.
type ResolvedImage = describer.Image

// DescriptionResult is a successful description.
type DescriptionResult struct {
	Text      string
	Language  string
	Verbosity Verbosity
	Model     string
}
