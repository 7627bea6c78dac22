package exportcsv

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"business-finder/internal/common/errors"
	"business-finder/internal/common/logger"
	"business-finder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)
}

func price(n int) *int { return &n }

func sample() []models.Business {
	return []models.Business{
		{
			ID: "a", Name: `Horno "El Sol"`, Address: "Calle Mayor 1, Madrid",
			Phone: "910 000 001", Website: "https://sol.es", Rating: 4.5, ReviewCount: 120,
			PriceLevel: price(2), OpenStatus: models.OpenStatusOpen,
			Categories: []string{"bakery", "cafe"}, MapsURL: "https://maps.google.com/?cid=1",
		},
		{
			ID: "b", Name: "La Miga", Address: "Calle Luna 2",
			Rating: 0, OpenStatus: models.OpenStatusUnknown, MapsURL: models.MapsURLFor("b"),
		},
	}
}

func TestWrite_QuotesEveryField(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), LocaleEnglish))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, `"Name","Address","Phone","Website","Rating","Review Count","Price Level","Open Status","Categories","Map URL"`, lines[0])
	assert.Equal(t, `"Horno ""El Sol""","Calle Mayor 1, Madrid","910 000 001","https://sol.es","4.5","120","2","Open","bakery; cafe","https://maps.google.com/?cid=1"`, lines[1])
	assert.Equal(t, `"La Miga","Calle Luna 2","Not available","Not available","Unrated","0","Not available","Unknown","","https://www.google.com/maps/place/?q=place_id:b"`, lines[2])
	assert.False(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestWrite_HeaderOnlyWhenEmpty(t *testing.T) {
	out := Encode(nil, LocaleEnglish)

	assert.Equal(t, 1, strings.Count(out, `"Name"`))
	assert.NotContains(t, out, "\n")
}

func TestWrite_SpanishLabels(t *testing.T) {
	out := Encode(sample()[1:], LocaleSpanish)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], `"Nombre","Dirección","Teléfono","Sitio Web","Calificación"`))
	assert.Contains(t, lines[1], `"No disponible"`)
	assert.Contains(t, lines[1], `"Sin calificación"`)
	assert.Contains(t, lines[1], `"Desconocido"`)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "businesses_2026-03-09.csv", FileName(fixedClock(), LocaleEnglish))
	assert.Equal(t, "negocios_2026-03-09.csv", FileName(fixedClock(), LocaleSpanish))
}

func TestRow_RatingFormatting(t *testing.T) {
	assert.Equal(t, "4", Row(models.Business{Rating: 4}, LocaleEnglish)[4])
	assert.Equal(t, "3.7", Row(models.Business{Rating: 3.7}, LocaleEnglish)[4])
}

func TestParseLocale(t *testing.T) {
	l, err := ParseLocale("")
	require.NoError(t, err)
	assert.Equal(t, LocaleEnglish, l)

	l, err = ParseLocale(" ES ")
	require.NoError(t, err)
	assert.Equal(t, LocaleSpanish, l)

	_, err = ParseLocale("fr")
	assert.Error(t, err)
}

func TestHandler_Execute_AppliesFilters(t *testing.T) {
	h, err := NewHandler(HandlerOptions{Logger: logger.NewTestLogger(t), Clock: fixedClock})
	require.NoError(t, err)

	out, err := h.Execute(context.Background(), &Input{
		Businesses: sample(),
		Filters:    &models.Filters{Rating: models.Rating4},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Rows)
	assert.Equal(t, "businesses_2026-03-09.csv", out.FileName)
	assert.Contains(t, out.CSV, `"Horno ""El Sol"""`)
	assert.NotContains(t, out.CSV, "La Miga")
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	h, err := NewHandler(HandlerOptions{Logger: logger.NewNoOpLogger(), Clock: fixedClock})
	require.NoError(t, err)

	_, err = h.Execute(context.Background(), &Input{Locale: "de"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))

	_, err = h.Execute(context.Background(), &Input{Filters: &models.Filters{Rating: "9+"}})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Locale = "fr"
	assert.Error(t, cfg.Validate())
}
