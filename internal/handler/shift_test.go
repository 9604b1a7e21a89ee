package handler

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFechaWindow(t *testing.T) {
	t.Run("absent filters", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/shifts", nil)
		from, to, err := fechaWindow(r)
		require.NoError(t, err)
		require.Nil(t, from)
		require.Nil(t, to)
	})

	t.Run("valid range", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/shifts?startDate=2024-05-01&endDate=2024-06-01", nil)
		from, to, err := fechaWindow(r)
		require.NoError(t, err)
		require.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *from)
		require.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *to)
	})

	t.Run("inverted range", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/shifts?startDate=2024-06-01&endDate=2024-05-01", nil)
		_, _, err := fechaWindow(r)
		require.EqualError(t, err, "startDate must be before endDate")
	})

	t.Run("malformed date", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/shifts?startDate=01-05-2024", nil)
		_, _, err := fechaWindow(r)
		require.EqualError(t, err, "invalid startDate")
	})
}
