package exportcsv

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"business-finder/internal/models"
)

type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleSpanish Locale = "es"
)

func ParseLocale(s string) (Locale, error) {
	switch l := Locale(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return LocaleEnglish, nil
	case LocaleEnglish, LocaleSpanish:
		return l, nil
	}
	return "", fmt.Errorf("unsupported locale %q (want en or es)", s)
}

type labels struct {
	header       []string
	notAvailable string
	unrated      string
	open         string
	closed       string
	unknown      string
	filePrefix   string
}

var localeLabels = map[Locale]labels{
	LocaleEnglish: {
		header:       []string{"Name", "Address", "Phone", "Website", "Rating", "Review Count", "Price Level", "Open Status", "Categories", "Map URL"},
		notAvailable: "Not available",
		unrated:      "Unrated",
		open:         "Open",
		closed:       "Closed",
		unknown:      "Unknown",
		filePrefix:   "businesses",
	},
	LocaleSpanish: {
		header:       []string{"Nombre", "Dirección", "Teléfono", "Sitio Web", "Calificación", "Número de Reseñas", "Nivel de Precio", "Estado", "Categorías", "Google Maps URL"},
		notAvailable: "No disponible",
		unrated:      "Sin calificación",
		open:         "Abierto",
		closed:       "Cerrado",
		unknown:      "Desconocido",
		filePrefix:   "negocios",
	},
}

func labelsFor(l Locale) labels {
	if lb, ok := localeLabels[l]; ok {
		return lb
	}
	return localeLabels[LocaleEnglish]
}

// Header returns the column names for a locale.
func Header(l Locale) []string {
	h := labelsFor(l).header
	out := make([]string, len(h))
	copy(out, h)
	return out
}

// Row renders one business with placeholders for missing values.
func Row(b models.Business, l Locale) []string {
	lb := labelsFor(l)

	orPlaceholder := func(v string) string {
		if strings.TrimSpace(v) == "" {
			return lb.notAvailable
		}
		return v
	}

	rating := lb.unrated
	if b.Rated() {
		rating = strconv.FormatFloat(b.Rating, 'f', -1, 64)
	}

	price := lb.notAvailable
	if b.PriceLevel != nil {
		price = strconv.Itoa(*b.PriceLevel)
	}

	status := lb.unknown
	switch b.OpenStatus {
	case models.OpenStatusOpen:
		status = lb.open
	case models.OpenStatusClosed:
		status = lb.closed
	}

	return []string{
		b.Name,
		b.Address,
		orPlaceholder(b.Phone),
		orPlaceholder(b.Website),
		rating,
		strconv.Itoa(b.ReviewCount),
		price,
		status,
		strings.Join(b.Categories, "; "),
		b.MapsURL,
	}
}

// Write emits the header and one row per business. Every field is quoted and
// embedded quotes are doubled; records are separated by a bare newline.
func Write(w io.Writer, businesses []models.Business, l Locale) error {
	bw := bufio.NewWriter(w)

	if err := writeRecord(bw, Header(l), false); err != nil {
		return err
	}
	for _, b := range businesses {
		if err := writeRecord(bw, Row(b, l), true); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Encode returns the full document as a string.
func Encode(businesses []models.Business, l Locale) string {
	var sb strings.Builder
	_ = Write(&sb, businesses, l)
	return sb.String()
}

func writeRecord(w *bufio.Writer, fields []string, leadingNewline bool) error {
	if leadingNewline {
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quote(f)); err != nil {
			return err
		}
	}
	return nil
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// FileName returns the download name for an export made at now.
func FileName(now time.Time, l Locale) string {
	return fmt.Sprintf("%s_%s.csv", labelsFor(l).filePrefix, now.UTC().Format("2006-01-02"))
}
