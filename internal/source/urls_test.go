package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLsForConfiguredCountry(t *testing.T) {
	urls := URLsFor("MC", "Monaco")
	require.Len(t, urls, 2)
	assert.Equal(t, "https://download.geofabrik.de/europe/monaco-latest.osm.pbf", urls[0])
	assert.Equal(t, "https://download.geofabrik.de/monaco-latest.osm.pbf", urls[1])
}

func TestURLsForLowercaseCode(t *testing.T) {
	assert.Equal(t, URLsFor("MC", "Monaco"), URLsFor("mc", "Monaco"))
}

func TestURLsForUnknownCode(t *testing.T) {
	urls := URLsFor("ZZ", "Atlantis Republic")
	require.Len(t, urls, 1)
	assert.Equal(t, "https://download.geofabrik.de/atlantis-republic-latest.osm.pbf", urls[0])
}

func TestURLsForNothingKnown(t *testing.T) {
	assert.Empty(t, URLsFor("ZZ", ""))
}

func TestHasConfiguredURL(t *testing.T) {
	assert.True(t, HasConfiguredURL("MC"))
	assert.True(t, HasConfiguredURL("mc"))
	assert.False(t, HasConfiguredURL("ZZ"))
}
