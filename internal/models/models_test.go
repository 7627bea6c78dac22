package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocationType(t *testing.T) {
	tests := []struct {
		in   string
		want LocationType
	}{
		{"postal_code", LocationTypePostalCode},
		{"postal-code", LocationTypePostalCode},
		{" ZIP ", LocationTypePostalCode},
		{"zip code", LocationTypePostalCode},
		{"Address", LocationTypeAddress},
		{"city", LocationTypeCity},
		{"province", LocationTypeState},
		{"country", LocationTypeCountry},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocationType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}

	_, err := ParseLocationType("continent")
	assert.Error(t, err)
	assert.False(t, LocationType("continent").Valid())
}

func TestParseRatingThreshold(t *testing.T) {
	for in, want := range map[string]float64{"": 0, "all": 0, "3+": 3, "3.5+": 3.5, " 4+ ": 4} {
		got, err := ParseRatingThreshold(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.Min(), in)
	}

	_, err := ParseRatingThreshold("5+")
	assert.Error(t, err)
}

func TestBusiness_Rated(t *testing.T) {
	assert.False(t, Business{}.Rated())
	assert.True(t, Business{Rating: 1.2}.Rated())
}

func TestOpenStatusFrom(t *testing.T) {
	open, closed := true, false
	assert.Equal(t, OpenStatusOpen, OpenStatusFrom(&open))
	assert.Equal(t, OpenStatusClosed, OpenStatusFrom(&closed))
	assert.Equal(t, OpenStatusUnknown, OpenStatusFrom(nil))
}

func TestMapsURLFor(t *testing.T) {
	assert.Equal(t, "https://www.google.com/maps/place/?q=place_id:abc", MapsURLFor("abc"))
}

func TestResultSet_IsExpired(t *testing.T) {
	now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	rs := &ResultSet{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, rs.IsExpired(now))
	assert.True(t, rs.IsExpired(now.Add(2*time.Minute)))
	assert.False(t, (&ResultSet{}).IsExpired(now))
}
