package nav

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almoxarifado/infrastructure/access"
	"almoxarifado/models"
)

func labels(d TopNavData) []string {
	out := make([]string, 0, len(d.Links))
	for _, l := range d.Links {
		out = append(out, l.Label)
	}
	return out
}

func TestBuildTopNavDataFiltersByCapability(t *testing.T) {
	cfg := models.SystemConfig{HospitalName: "HGU"}

	viewer := BuildTopNavData(access.Principal{Username: "v", Level: models.LevelViewer}, cfg, "/app/items/3")
	assert.NotContains(t, labels(viewer), "Users")
	assert.NotContains(t, labels(viewer), "Settings")
	for _, l := range viewer.Links {
		assert.Equal(t, l.Label == "Items", l.Active, l.Label)
	}

	local := BuildTopNavData(access.Principal{Level: models.LevelLocalAdmin}, cfg, "/")
	assert.Contains(t, labels(local), "Users")
	assert.NotContains(t, labels(local), "Settings")

	admin := BuildTopNavData(access.Principal{Level: models.LevelAdmin}, cfg, "/")
	assert.Contains(t, labels(admin), "Settings")
}

func TestTopNavEscapes(t *testing.T) {
	var buf bytes.Buffer
	d := BuildTopNavData(access.Principal{Username: "<b>x</b>", Level: models.LevelViewer}, models.SystemConfig{HospitalName: "A & B"}, "/")
	require.NoError(t, TopNav(d).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "A &amp; B")
	assert.NotContains(t, buf.String(), "<b>x</b>")
}
