package matching

import (
	"Food-Rescue-Coordinator/entities"
	"Food-Rescue-Coordinator/internal/testutil"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversine(t *testing.T) {
	jakarta := Point{Lat: -6.2088, Lng: 106.8456}
	bandung := Point{Lat: -6.9175, Lng: 107.6191}

	assert.InDelta(t, 0, Haversine(jakarta, jakarta), 1e-9)
	assert.InDelta(t, kmPerDegree, Haversine(Point{Lat: 0, Lng: 0}, Point{Lat: 1, Lng: 0}), 1e-6)
	assert.InDelta(t, 116.3, Haversine(jakarta, bandung), 1.0)
	assert.InDelta(t, Haversine(jakarta, bandung), Haversine(bandung, jakarta), 1e-9)
}

func TestEquirectangularCloseToHaversineAtCityScale(t *testing.T) {
	a := Point{Lat: -6.2, Lng: 106.8}
	b := Point{Lat: -6.25, Lng: 106.87}
	assert.InDelta(t, Haversine(a, b), Equirectangular(a, b), 0.01)
}

func TestDistanceFuncByName(t *testing.T) {
	for _, name := range []string{"", MetricHaversine, MetricEquirectangular} {
		fn, err := DistanceFuncByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, fn)
	}
	_, err := DistanceFuncByName("taxicab")
	assert.Error(t, err)
}

func charity(lat, lng *float64) *entities.Charity {
	return &entities.Charity{ID: uuid.New(), Latitude: lat, Longitude: lng, Verified: true}
}

func TestNearestSelector(t *testing.T) {
	selector, err := NewCharitySelector(CharityPolicyNearest)
	require.NoError(t, err)
	origin := Point{Lat: originLat, Lng: originLng}

	far := charity(north(8), testutil.Float(originLng))
	near := charity(north(2), testutil.Float(originLng))
	unlocated := charity(nil, nil)

	got := selector.Select(origin, []*entities.Charity{far, unlocated, near}, Haversine)
	assert.Equal(t, near.ID, got.ID)

	assert.Nil(t, selector.Select(origin, []*entities.Charity{unlocated}, Haversine))
	assert.Nil(t, selector.Select(origin, nil, Haversine))
}

func TestRoundRobinSelector(t *testing.T) {
	selector, err := NewCharitySelector(CharityPolicyRoundRobin)
	require.NoError(t, err)

	list := []*entities.Charity{charity(nil, nil), charity(nil, nil), charity(nil, nil)}
	var got []uuid.UUID
	for i := 0; i < 4; i++ {
		got = append(got, selector.Select(Point{}, list, Haversine).ID)
	}
	assert.Equal(t, []uuid.UUID{list[0].ID, list[1].ID, list[2].ID, list[0].ID}, got)
	assert.Nil(t, selector.Select(Point{}, nil, Haversine))
}
