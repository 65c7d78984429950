package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContent(t *testing.T) {
	body := []byte(`<!doctype html>
<html>
<head>
  <title>
    Example Domain
  </title>
  <meta name="keywords" content="nope">
  <meta name="description" content="  An illustrative page.  ">
  <meta name="description" content="second">
</head>
<body>
  <h1> First heading </h1>
  <h1>Second heading</h1>
  <a href="/one">one</a>
  <p><a href="/two">two</a> <a name="anchor"></a></p>
  <img src="a.png"><img src="b.png">
</body>
</html>`)

	cs := Content(HTML(body, "text/html; charset=utf-8"))

	require.NotNil(t, cs.Title)
	require.Equal(t, "Example Domain", *cs.Title)
	require.NotNil(t, cs.Description)
	require.Equal(t, "An illustrative page.", *cs.Description)
	require.NotNil(t, cs.Heading)
	require.Equal(t, "First heading", *cs.Heading)
	require.Equal(t, 3, cs.LinkCount)
	require.Equal(t, 2, cs.ImageCount)
}

func TestContentEmpty(t *testing.T) {
	for _, body := range []string{
		"",
		"<html><body><p>nothing to see</p></body></html>",
		`{"not": "html"}`,
		"\x00\xff\xfe garbage <<<>>>",
	} {
		cs := Content(HTML([]byte(body), ""))

		require.Nil(t, cs.Title, body)
		require.Nil(t, cs.Description, body)
		require.Nil(t, cs.Heading, body)
		require.Equal(t, 0, cs.LinkCount, body)
		require.Equal(t, 0, cs.ImageCount, body)
	}
}

func TestContentPresentButBlank(t *testing.T) {
	cs := Content(HTML([]byte(`<title>   </title><meta name="description"><h1></h1>`), "text/html"))

	require.NotNil(t, cs.Title)
	require.Equal(t, "", *cs.Title)
	// meta without a content attribute counts as absent
	require.Nil(t, cs.Description)
	require.NotNil(t, cs.Heading)
	require.Equal(t, "", *cs.Heading)
}

func TestContentCharset(t *testing.T) {
	// "Café" in ISO-8859-1
	body := []byte("<title>Caf\xe9</title>")

	cs := Content(HTML(body, "text/html; charset=iso-8859-1"))

	require.NotNil(t, cs.Title)
	require.Equal(t, "Café", *cs.Title)
}

func TestEmptyDocument(t *testing.T) {
	cs := Content(emptyDocument{})

	require.Nil(t, cs.Title)
	require.Equal(t, 0, cs.LinkCount)
}

func TestContentLateUTF8(t *testing.T) {
	body := []byte("<html><head><!-- " + strings.Repeat("x", 1100) + " --><title>Grüße</title></head></html>")

	for _, contentType := range []string{"", "text/html"} {
		cs := Content(HTML(body, contentType))

		require.NotNil(t, cs.Title, contentType)
		require.Equal(t, "Grüße", *cs.Title, contentType)
	}
}

func TestContentDeclaredCharsetWins(t *testing.T) {
	// Valid UTF-8 bytes, but the server says latin-1, so that's how they're read
	cs := Content(HTML([]byte("<title>\xc3\xa9</title>"), "text/html; charset=iso-8859-1"))

	require.NotNil(t, cs.Title)
	require.Equal(t, "Ã©", *cs.Title)
}
