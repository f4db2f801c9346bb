package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/salammuloh/fca00c-asteroids/galaxy"
)

const requestTimeout = 5 * time.Second

var (
	errRangeTooLong  = errors.New("laser range exceeds server limit")
	errNotLoggedIn   = errors.New("login required")
	errBadCoordinate = errors.New("bad coordinate")
)

// ScanRegion returns the contents of the region containing p
func (h *Hub) ScanRegion(ctx context.Context, p galaxy.Point, pilotID int64) (RegionFrame, error) {
	region, err := h.world.Region(ctx, p)
	if err != nil {
		return RegionFrame{}, err
	}
	h.analytics.Track(EvtRegionScan, pilotID, fmt.Sprintf(`{"cx":%d,"cy":%d}`, region.Center.X, region.Center.Y))
	return NewRegionFrame(region), nil
}

// FireLaser traces a shot and reports what it crosses
func (h *Hub) FireLaser(ctx context.Context, m LaserMsg, pilotID int64) (ShotMsg, error) {
	rng := h.laserRange
	if m.Range != nil {
		rng = *m.Range
	}
	if rng > h.laserRange {
		return ShotMsg{}, fmt.Errorf("%w: %d > %d", errRangeTooLong, rng, h.laserRange)
	}

	dir := galaxy.Direction(m.Dir)
	shot, err := h.world.FireLaser(ctx, galaxy.Point{X: m.X, Y: m.Y}, dir, rng)
	if err != nil {
		return ShotMsg{}, err
	}
	h.analytics.Track(EvtLaserFire, pilotID, fmt.Sprintf(`{"dir":%d,"hits":%d}`, m.Dir, len(shot.Hits)))
	return NewShotMsg(dir, shot), nil
}

// Collect consumes the object at p on behalf of a logged-in pilot
func (h *Hub) Collect(ctx context.Context, p galaxy.Point, pilotID int64) (CollectedMsg, error) {
	if pilotID == 0 {
		return CollectedMsg{}, errNotLoggedIn
	}
	e, err := h.world.Collect(ctx, p)
	if err != nil {
		return CollectedMsg{}, err
	}
	// the cell is already expired past this point; bookkeeping failures
	// are logged and the pickup still reported
	if err := h.db.RecordCollect(ctx, pilotID, p, e); err != nil {
		log.Printf("record collect for pilot %d: %v", pilotID, err)
	}
	total, err := h.db.CollectedCount(ctx, pilotID)
	if err != nil {
		log.Printf("collected count for pilot %d: %v", pilotID, err)
	}
	h.analytics.Track(EvtCollect, pilotID, fmt.Sprintf(`{"x":%d,"y":%d,"k":%q}`, p.X, p.Y, e.String()))
	return CollectedMsg{X: p.X, Y: p.Y, K: e.String(), Total: total}, nil
}

// clientError maps an error to an HTTP status and a message safe to show
// to clients. Configuration and storage failures are logged, not exposed.
func clientError(err error) (int, string) {
	switch {
	case galaxy.IsUserError(err),
		errors.Is(err, errRangeTooLong),
		errors.Is(err, errBadCoordinate):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errNotLoggedIn):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, galaxy.ErrConfiguration):
		log.Printf("world configuration error: %v", err)
		return http.StatusInternalServerError, "world is misconfigured"
	default:
		log.Printf("internal error: %v", err)
		return http.StatusInternalServerError, "internal error"
	}
}
