package audiodescricao

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeMissingImage(t *testing.T) {
	bodies := []map[string]any{
		{},
		{"language": "en-US", "mode": "short"},
		{"image": map[string]any{}},
		{"image": map[string]any{"base64": "   "}},
		{"imagemEmBase64": 42},
	}
	for _, body := range bodies {
		_, err := Normalize(body, "")
		require.True(t, IsKind(err, KindMissingImage), "body %v: got %v", body, err)
		require.Equal(t, 400, AsError(err).HTTPStatus())
		require.Equal(t, "400", AsError(err).Code())
	}
}

func TestNormalizeStripsDataURL(t *testing.T) {
	t.Run("explicit mime wins", func(t *testing.T) {
		req, err := Normalize(map[string]any{
			"image":    map[string]any{"base64": "data:image/png;base64,iVBORw0KGgo="},
			"mimeType": "image/webp",
		}, "")
		require.NoError(t, err)
		require.Equal(t, InlineImage{Base64: "iVBORw0KGgo=", MimeType: "image/webp"}, req.Image)
	})

	t.Run("data url mime used when none declared", func(t *testing.T) {
		req, err := Normalize(map[string]any{
			"imageBase64": "data:image/png;base64,iVBORw0KGgo=",
		}, "")
		require.NoError(t, err)
		require.Equal(t, InlineImage{Base64: "iVBORw0KGgo=", MimeType: "image/png"}, req.Image)
	})

	t.Run("extra parameters", func(t *testing.T) {
		req, err := Normalize(map[string]any{
			"base64": "data:image/jpeg;name=cat.jpg;base64,/9j/4AAQ",
		}, "")
		require.NoError(t, err)
		require.Equal(t, InlineImage{Base64: "/9j/4AAQ", MimeType: "image/jpeg"}, req.Image)
	})

	t.Run("no prefix defaults to jpeg", func(t *testing.T) {
		req, err := Normalize(map[string]any{"imagem": " /9j/4AAQ\n"}, "")
		require.NoError(t, err)
		require.Equal(t, InlineImage{Base64: "/9j/4AAQ", MimeType: DefaultMimeType}, req.Image)
	})
}

func TestNormalizeVerbosity(t *testing.T) {
	cases := map[any]Verbosity{
		"short":    VerbosityShort,
		"long":     VerbosityLong,
		"LONG":     VerbosityStandard,
		"Short":    VerbosityStandard,
		"standard": VerbosityStandard,
		"verbose":  VerbosityStandard,
		"":         VerbosityStandard,
		7:          VerbosityStandard,
	}
	for mode, expected := range cases {
		req, err := Normalize(map[string]any{"imageBase64": "eA==", "mode": mode}, "")
		require.NoError(t, err)
		if actual := req.Verbosity; expected != actual {
			t.Errorf("mode %v: expected %q, got %q", mode, expected, actual)
		}
	}

	req, err := Normalize(map[string]any{"imageBase64": "eA=="}, "")
	require.NoError(t, err)
	require.Equal(t, VerbosityStandard, req.Verbosity)
}

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		body     map[string]any
		fallback string
		expected string
	}{
		{map[string]any{"language": "en-us"}, "", "en-US"},
		{map[string]any{"lang": "es"}, "", "es"},
		{map[string]any{"language": "en-US", "lang": "fr"}, "", "en-US"},
		{map[string]any{}, "", DefaultLanguage},
		{map[string]any{}, "de-de", "de-DE"},
		{map[string]any{"language": "English"}, "", "English"},
		{map[string]any{"language": " Português "}, "fr", "Português"},
		{map[string]any{"lang": "english"}, "", "english"},
		{map[string]any{"language": "   "}, "it", "it"},
	}
	for _, c := range cases {
		c.body["imageBase64"] = "eA=="
		req, err := Normalize(c.body, c.fallback)
		require.NoError(t, err)
		require.Equal(t, c.expected, req.Language, "body %v", c.body)
	}
}

func TestNormalizeRemoteImage(t *testing.T) {
	req, err := Normalize(map[string]any{
		"image": map[string]any{"url": "https://example.com/cat.jpg"},
	}, "")
	require.NoError(t, err)
	require.Equal(t, RemoteImage{URL: "https://example.com/cat.jpg"}, req.Image)

	t.Run("aliases in priority order", func(t *testing.T) {
		req, err := Normalize(map[string]any{
			"imageURL": "https://example.com/c.jpg",
			"url":      "https://example.com/b.jpg",
			"imageUrl": "https://example.com/a.jpg",
			"type":     "image/gif",
		}, "")
		require.NoError(t, err)
		require.Equal(t, RemoteImage{URL: "https://example.com/a.jpg", MimeType: "image/gif"}, req.Image)
	})

	t.Run("bare image string", func(t *testing.T) {
		req, err := Normalize(map[string]any{"image": "http://example.com/x.png"}, "")
		require.NoError(t, err)
		require.Equal(t, RemoteImage{URL: "http://example.com/x.png"}, req.Image)

		req, err = Normalize(map[string]any{"image": "eA=="}, "")
		require.NoError(t, err)
		require.Equal(t, InlineImage{Base64: "eA==", MimeType: DefaultMimeType}, req.Image)
	})

	t.Run("invalid url", func(t *testing.T) {
		for _, u := range []string{"ftp://example.com/a.jpg", "/relative.jpg", "example.com/a.jpg"} {
			_, err := Normalize(map[string]any{"imageUrl": u}, "")
			require.True(t, IsKind(err, KindInvalidImage), "url %q: got %v", u, err)
		}
	})
}

func TestNormalizeInlinePriority(t *testing.T) {
	req, err := Normalize(map[string]any{
		"imagem":         "bGFzdA==",
		"imageBase64":    "c2Vjb25k",
		"imagemEmBase64": "Zmlyc3Q=",
	}, "")
	require.NoError(t, err)
	require.Equal(t, "Zmlyc3Q=", req.Image.(InlineImage).Base64)
}

func TestNormalizeBothSources(t *testing.T) {
	_, err := Normalize(map[string]any{
		"image": map[string]any{"base64": "eA==", "url": "https://example.com/cat.jpg"},
	}, "")
	require.True(t, IsKind(err, KindInvalidImage))
	require.Equal(t, 400, AsError(err).HTTPStatus())
}

func TestParseVerbosity(t *testing.T) {
	require.Equal(t, VerbosityShort, ParseVerbosity(" short "))
	require.Equal(t, VerbosityLong, ParseVerbosity("long\n"))
	require.Equal(t, VerbosityStandard, ParseVerbosity(" Short "))
	require.Equal(t, VerbosityStandard, ParseVerbosity("LONG"))
	require.Equal(t, VerbosityStandard, ParseVerbosity("medium"))
}
