package audiodescricao

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
)

// DefaultMaxImageBytes bounds a fetched image. The whole image is buffered
// before encoding.
const DefaultMaxImageBytes = 10 << 20

type fetcher struct {
	client   *resty.Client
	maxBytes int64
}

func newFetcher(httpClient *http.Client, maxBytes int64) *fetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &fetcher{
		client:   resty.NewWithClient(httpClient),
		maxBytes: maxBytes,
	}
}

// fetch downloads img with a single GET and returns it base64 encoded.
func (f *fetcher) fetch(ctx context.Context, img RemoteImage) (ResolvedImage, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(img.URL)
	if resp != nil && resp.RawBody() != nil {
		defer resp.RawBody().Close()
	}
	if err != nil {
		return ResolvedImage{}, NewError(KindFetch, "failed to download image URL", err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return ResolvedImage{}, &Error{
			Kind:           KindFetch,
			UpstreamStatus: status,
			Message:        fmt.Sprintf("failed to download image URL (%d)", status),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.RawBody(), f.maxBytes+1))
	if err != nil {
		return ResolvedImage{}, NewError(KindFetch, "failed to read image URL body", err)
	}
	if int64(len(data)) > f.maxBytes {
		return ResolvedImage{}, NewError(KindFetch,
			fmt.Sprintf("image URL body exceeds %d bytes", f.maxBytes), nil)
	}
	if len(data) == 0 {
		return ResolvedImage{}, NewError(KindFetch, "image URL returned an empty body", nil)
	}

	return ResolvedImage{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MimeType: resolveMimeType(resp.Header().Get("Content-Type"), img.MimeType, data),
	}, nil
}

// resolveMimeType prefers the response Content-Type, then the type declared
// in the request, then a sniffed image type, then DefaultMimeType.
// Generic binary content types carry no information and are skipped.
func resolveMimeType(contentType, declared string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && !isGenericBinary(mt) {
		return mt
	}
	if declared != "" {
		return declared
	}
	if sniffed := mimetype.Detect(data); strings.HasPrefix(sniffed.String(), "image/") {
		return sniffed.String()
	}
	return DefaultMimeType
}

func isGenericBinary(mt string) bool {
	switch mt {
	case "application/octet-stream", "binary/octet-stream":
		return true
	}
	return false
}
