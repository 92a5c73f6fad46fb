package cli

import (
	"bytes"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibliotech/mlol/pkg/mlol"
)

func TestBuildForecasts(t *testing.T) {
	now := time.Date(2025, time.August, 15, 12, 0, 0, 0, time.UTC)
	reservations := []mlol.Reservation{
		{Title: "Il Gattopardo", Authors: "Tomasi di Lampedusa", QueuePosition: 3, AvailableCopies: 2},
		{Title: "Se questo è un uomo", Authors: "Primo Levi", QueuePosition: 1, AvailableCopies: 0},
	}

	forecasts := buildForecasts(reservations, now, 14)
	require.Len(t, forecasts, 2)

	require.NotNil(t, forecasts[0].Window, "estimable reservation should carry a window")
	assert.Equal(t, time.Date(2025, time.August, 31, 12, 0, 0, 0, time.UTC), forecasts[0].Window.Best)
	assert.Equal(t, time.Date(2025, time.September, 13, 12, 0, 0, 0, time.UTC), forecasts[0].Window.Worst)

	assert.Nil(t, forecasts[1].Window, "no copies recorded, no estimate")
}

func TestPrintReport(t *testing.T) {
	now := time.Date(2025, time.August, 15, 12, 0, 0, 0, time.UTC)
	history := []mlol.Loan{
		{Title: "Il barone rampante", Authors: "Italo Calvino",
			Start: time.Date(2025, time.August, 2, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, time.August, 16, 0, 0, 0, 0, time.UTC)},
	}
	reservations := []mlol.Reservation{
		{Title: "Il Gattopardo", Authors: "Tomasi di Lampedusa", QueuePosition: 3, AvailableCopies: 2},
	}

	report := mlol.BuildReport(history, reservations, now, 4, 2)
	forecasts := buildForecasts(reservations, now, 14)

	var buf bytes.Buffer
	printReport(&buf, report, forecasts)

	out := buf.String()
	assert.Contains(t, out, "Usage for August 2025")
	assert.Contains(t, out, "Loans:        1/4 used, 3 left")
	assert.Contains(t, out, "Reservations: 1/2 used, 1 left")
	assert.Contains(t, out, "2025-08-02 - 2025-08-16  Il barone rampante (Italo Calvino)")
	assert.Contains(t, out, "Il Gattopardo (Tomasi di Lampedusa), position 3, 2 copies")
	assert.Contains(t, out, "expected 2025-08-31 - 2025-09-13")
}

func TestPrintReportJSON(t *testing.T) {
	now := time.Date(2025, time.August, 15, 12, 0, 0, 0, time.UTC)
	reservations := []mlol.Reservation{
		{Title: "Il Gattopardo", Authors: "Tomasi di Lampedusa", QueuePosition: 3, AvailableCopies: 2},
		{Title: "Se questo è un uomo", Authors: "Primo Levi", QueuePosition: 1, AvailableCopies: 0},
	}

	report := mlol.BuildReport(nil, reservations, now, 4, 2)
	forecasts := buildForecasts(reservations, now, 14)

	var buf bytes.Buffer
	require.NoError(t, printReportJSON(&buf, report, forecasts))

	var doc struct {
		Report    mlol.Report           `json:"report"`
		Forecasts []reservationForecast `json:"forecasts"`
	}
	require.NoError(t, jsoniter.ConfigFastest.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, 2025, doc.Report.Year)
	assert.Equal(t, 2, doc.Report.Reservations.Used)
	require.Len(t, doc.Forecasts, 2)
	assert.NotNil(t, doc.Forecasts[0].Window)
	assert.Nil(t, doc.Forecasts[1].Window, "window should be omitted when no estimate exists")
}
