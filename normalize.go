package audiodescricao

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

// A field path into the raw request body, e.g. {"image", "url"}.
type fieldPath []string

// Candidate keys per logical field, in priority order. Only the first entry of
// each list is part of the documented contract, the rest keep older web and
// mobile clients working.
var (
	inlineKeys = []fieldPath{
		{"image", "base64"},
		{"imagemEmBase64"},
		{"imageBase64"},
		{"imagemBase64"},
		{"base64"},
		{"imagem"},
	}
	urlKeys = []fieldPath{
		{"image", "url"},
		{"imageUrl"},
		{"url"},
		{"imageURL"},
	}
	mimeKeys = []fieldPath{
		{"mimeType"},
		{"image", "mimeType"},
		{"type"},
		{"contentType"},
	}
	languageKeys = []fieldPath{
		{"language"},
		{"lang"},
	}
	modeKeys = []fieldPath{
		{"mode"},
	}
)

var dataURLPrefix = regexp.MustCompile(`^data:([^;,]*)[^,]*?;base64,`)

// Normalize validates a decoded JSON body and returns the canonical request.
// Unknown keys are ignored. defaultLanguage is used when the body carries no
// usable language tag.
func Normalize(raw map[string]any, defaultLanguage string) (DescriptionRequest, error) {
	inline := firstString(raw, inlineKeys)
	imageURL := firstString(raw, urlKeys)

	// A bare string under "image" is either a URL or base64 data
	if s, ok := raw["image"].(string); ok && strings.TrimSpace(s) != "" {
		s = strings.TrimSpace(s)
		if isHTTPURL(s) {
			if imageURL == "" {
				imageURL = s
			}
		} else if inline == "" {
			inline = s
		}
	}

	mimeType := firstString(raw, mimeKeys)
	req := DescriptionRequest{
		Language:  normalizeLanguage(firstString(raw, languageKeys), defaultLanguage),
		Verbosity: ParseVerbosity(firstString(raw, modeKeys)),
	}

	var dataURLMime string
	inline, dataURLMime = stripDataURL(inline)

	switch {
	case inline == "" && imageURL == "":
		return DescriptionRequest{}, NewError(KindMissingImage,
			"send either 'image.base64' or 'image.url'", nil)
	case inline != "" && imageURL != "":
		return DescriptionRequest{}, NewError(KindInvalidImage,
			"send only one of 'image.base64' and 'image.url'", nil)
	case inline != "":
		req.Image = InlineImage{
			Base64:   inline,
			MimeType: firstNonEmpty(mimeType, dataURLMime, DefaultMimeType),
		}
	default:
		if !isHTTPURL(imageURL) {
			return DescriptionRequest{}, NewError(KindInvalidImage,
				"'image.url' must be an absolute http or https URL", nil)
		}
		req.Image = RemoteImage{URL: imageURL, MimeType: mimeType}
	}

	return req, nil
}

// stripDataURL removes a data:<mime>;base64, prefix and surrounding
// whitespace, returning the payload and the prefix's MIME type if any.
func stripDataURL(s string) (string, string) {
	s = strings.TrimSpace(s)
	m := dataURLPrefix.FindStringSubmatch(s)
	if m == nil {
		return s, ""
	}
	return strings.TrimSpace(s[len(m[0]):]), strings.TrimSpace(m[1])
}

// normalizeLanguage canonicalises well-formed BCP 47 tags and passes any
// other non-empty value through unchanged, e.g. "English". fallback applies
// only when s is empty.
func normalizeLanguage(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		s = strings.TrimSpace(fallback)
	}
	if s == "" {
		return DefaultLanguage
	}
	if tag, err := language.Parse(s); err == nil && tag != language.Und {
		return tag.String()
	}
	return s
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func firstString(raw map[string]any, paths []fieldPath) string {
	for _, p := range paths {
		if s := lookupString(raw, p); s != "" {
			return s
		}
	}
	return ""
}

func lookupString(raw map[string]any, p fieldPath) string {
	var cur any = raw
	for _, key := range p {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[key]
	}
	s, _ := cur.(string)
	return strings.TrimSpace(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
