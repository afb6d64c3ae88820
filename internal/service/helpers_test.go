package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := map[string]string{
		"Acme Hardware Supplies":    "Hardware & Construction",
		"":                          "Other",
		"Unknown Co":                "Other",
		"City Electric":             "Utilities",
		"FireGuard Alarm Systems":   "Security Services",
		"Paper Stationery Ltd":      "Office Supplies",
		"MICROSOFT SOFTWARE":        "Technology",
		"Global Shipping":           "Logistics",
		"Jones Consulting":          "Professional Services",
		"Sparkle Cleaning":          "Maintenance",
		"Office Gas Company":        "Utilities",
		"Builders Security Office":  "Hardware & Construction",
		"Digital Media":             "Technology",
		"Northwind Transport Group": "Logistics",
	}

	for vendor, want := range cases {
		assert.Equal(t, want, Classify(vendor), vendor)
	}
}

func TestCategoriesEndsWithOther(t *testing.T) {
	labels := Categories()
	assert.Len(t, labels, 9)
	assert.Equal(t, CategoryOther, labels[len(labels)-1])
}

func TestParseInvoiceDate(t *testing.T) {
	cases := map[string]string{
		"2024-05-01":       "2024-05-01",
		"02 January 2025":  "2025-01-02",
		"2 Jan 2025":       "2025-01-02",
		"January 02, 2025": "2025-01-02",
		"02/01/2025":       "2025-01-02",
		"12/31/2024":       "2024-12-31",
		"02-01-2025":       "2025-01-02",
		"2025/01/02":       "2025-01-02",
		"  2024-5-1 ":      "2024-05-01",
	}

	for raw, want := range cases {
		got, ok := ParseInvoiceDate(raw)
		if assert.True(t, ok, raw) {
			assert.Equal(t, want, got.Format("2006-01-02"), raw)
		}
	}

	for _, raw := range []string{"", "garbage", "2024-13-45", "May the 4th"} {
		_, ok := ParseInvoiceDate(raw)
		assert.False(t, ok, raw)
	}
}

func TestNormalizeDateFallsBackToToday(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.Local)

	assert.Equal(t, "2024-05-01", NormalizeDate("2024-05-01", now).Format("2006-01-02"))
	assert.Equal(t, "2026-03-14", NormalizeDate("garbage", now).Format("2006-01-02"))
	assert.Equal(t, "2026-03-14", NormalizeDate("", now).Format("2006-01-02"))
}

func TestSanitizeUTF8(t *testing.T) {
	assert.Equal(t, "Acme", sanitizeUTF8("Acme"))
	assert.Equal(t, "Acme Co", sanitizeUTF8("Acme\xff Co"))
}
