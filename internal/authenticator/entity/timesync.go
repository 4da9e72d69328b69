package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MovingFactorWidth is the digit width of a full unix timestamp as sent by
// the vendor time endpoint.
const MovingFactorWidth = 10

// Direction tells whether local time is ahead of or behind the server.
type Direction string

const (
	// DirectionPast means the server is behind: corrections subtract.
	DirectionPast Direction = "Past"
	// DirectionFuture means the server is ahead: corrections add.
	DirectionFuture Direction = "Future"
)

// TimeSync is the correction between local time and vendor time.
type TimeSync struct {
	Direction       Direction
	Offset          uint64
	LastTimeChecked uint64
}

// NewTimeSync measures the correction from local to server time.
func NewTimeSync(local, server uint64) TimeSync {
	if server < local {
		return TimeSync{Direction: DirectionPast, Offset: local - server, LastTimeChecked: local}
	}

	return TimeSync{Direction: DirectionFuture, Offset: server - local, LastTimeChecked: local}
}

// Correct applies the correction to t.
func (ts TimeSync) Correct(t uint64) uint64 {
	if ts.Direction == DirectionPast {
		if ts.Offset > t {
			return 0
		}
		return t - ts.Offset
	}

	return t + ts.Offset
}

// timeSyncFields is the persisted body of either direction.
type timeSyncFields struct {
	LastTimeChecked uint64 `json:"last_time_checked"`
	TimeOffset      uint64 `json:"time_offset"`
}

// MarshalJSON encodes the sync as {"Past": {...}} or {"Future": {...}}.
func (ts TimeSync) MarshalJSON() ([]byte, error) {
	dir := ts.Direction
	if dir == "" {
		dir = DirectionFuture
	}

	return json.Marshal(map[Direction]timeSyncFields{
		dir: {LastTimeChecked: ts.LastTimeChecked, TimeOffset: ts.Offset},
	})
}

func (ts *TimeSync) UnmarshalJSON(data []byte) error {
	var raw map[Direction]timeSyncFields
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("authenticator: time sync must hold exactly one direction, got %d", len(raw))
	}

	for dir, f := range raw {
		if dir != DirectionPast && dir != DirectionFuture {
			return fmt.Errorf("authenticator: unknown time sync direction %q", dir)
		}
		*ts = TimeSync{Direction: dir, Offset: f.TimeOffset, LastTimeChecked: f.LastTimeChecked}
	}

	return nil
}

// ParseMovingFactor right-pads the truncated server timestamp with zeros to
// MovingFactorWidth digits and parses it.
func ParseMovingFactor(mf string) (uint64, error) {
	mf = strings.TrimSpace(mf)
	if mf == "" || len(mf) > MovingFactorWidth {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMovingFactor, mf)
	}

	v, err := strconv.ParseUint(mf+strings.Repeat("0", MovingFactorWidth-len(mf)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMovingFactor, mf)
	}

	return v, nil
}
