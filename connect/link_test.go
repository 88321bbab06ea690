package connect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPrefixes = []string{"https://link.flowlink.dev/wc", "flowlink://wc"}

func TestParseLink(t *testing.T) {
	pairing := "wc:7f6e504bfad60b485450578e05678ed3e8e8c4751d3c6160be17160d63ec90f9@2?relay-protocol=irn&symKey=587d5484ce2a2a6ee3ba1962fdd7e8588e06200c46823bd18fbd67def96ad303"

	kind, uri, err := ParseLink(pairing, testPrefixes)
	require.NoError(t, err)
	assert.Equal(t, LinkKind_Pairing, kind)
	assert.Equal(t, pairing, uri)

	kind, uri, err = ParseLink("https://link.flowlink.dev/wc?uri=wc%3A7f6e%402%3Frelay-protocol%3Dirn%26symKey%3D587d", testPrefixes)
	require.NoError(t, err)
	assert.Equal(t, LinkKind_Pairing, kind)
	assert.Equal(t, "wc:7f6e@2?relay-protocol=irn&symKey=587d", uri)

	kind, _, err = ParseLink("flowlink://wc?uri=wc%3A7f6e%402%3FrequestId%3D1700000000", testPrefixes)
	require.NoError(t, err)
	assert.Equal(t, LinkKind_Focus, kind)
}

func TestParseLinkRejects(t *testing.T) {
	for _, link := range []string{
		"",
		"https://evil.example/wc?uri=wc%3Aabc%402%3FsymKey%3D00",
		"https://link.flowlink.dev/wc?uri=https%3A%2F%2Fexample.com",
		"wc:abc@2",
	} {
		_, _, err := ParseLink(link, testPrefixes)
		assert.True(t, errors.Is(err, ErrUnrecognizedLink), link)
	}
}
