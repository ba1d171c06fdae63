package matching

import (
	"Food-Rescue-Coordinator/entities"
	"fmt"
	"sync"
)

const (
	CharityPolicyNearest    = "nearest"
	CharityPolicyRoundRobin = "round_robin"
)

type (
	// CharitySelector picks the receiving charity of a donation collected at
	// origin. It returns nil when no charity qualifies.
	CharitySelector interface {
		Select(origin Point, charities []*entities.Charity, distance DistanceFunc) *entities.Charity
	}

	nearestSelector struct{}

	roundRobinSelector struct {
		mu   sync.Mutex
		next int
	}
)

func NewCharitySelector(policy string) (CharitySelector, error) {
	switch policy {
	case "", CharityPolicyNearest:
		return nearestSelector{}, nil
	case CharityPolicyRoundRobin:
		return &roundRobinSelector{}, nil
	default:
		return nil, fmt.Errorf("unknown charity policy %q", policy)
	}
}

// Select returns the closest located charity, ties broken by id.
func (nearestSelector) Select(origin Point, charities []*entities.Charity, distance DistanceFunc) *entities.Charity {
	var (
		best     *entities.Charity
		bestDist float64
	)
	for _, c := range charities {
		if !c.HasLocation() {
			continue
		}
		d := distance(origin, Point{Lat: *c.Latitude, Lng: *c.Longitude})
		if best == nil || d < bestDist || (d == bestDist && c.ID.String() < best.ID.String()) {
			best, bestDist = c, d
		}
	}
	return best
}

// Select rotates through charities in the order given, regardless of location.
func (r *roundRobinSelector) Select(_ Point, charities []*entities.Charity, _ DistanceFunc) *entities.Charity {
	if len(charities) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c := charities[r.next%len(charities)]
	r.next++
	return c
}
