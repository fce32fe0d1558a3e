package pdf

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almoxarifado/models"
)

func TestNumberUsesBrazilianSeparators(t *testing.T) {
	assert.Equal(t, "1.234,5", Number(1234.5))
	assert.Equal(t, "-20", Number(-20))
	assert.Equal(t, "0,125", Number(0.125))
}

func TestCode128PNG(t *testing.T) {
	data, err := Code128PNG("7891234567890-L01", 600, 120)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())
	assert.Equal(t, 120, img.Bounds().Dy())
}

func TestDocumentWithHeaderRenders(t *testing.T) {
	d := New("P", "Relatório")
	d.Header(models.SystemConfig{HospitalName: "Hospital São José", FooterText: "Almoxarifado"}, "", "Relatório de estoque", time.Now())
	d.AddPage()
	d.SetFont("Helvetica", "", 10)
	d.CellFormat(0, 6, d.T("Seringa descartável"), "", 1, "L", false, 0, "")

	out, err := d.Bytes()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
