package model

import (
    "strings"
    "time"
)

// CourtStatus is the operational state of a court.
type CourtStatus string

const (
    CourtAvailable   CourtStatus = "AVAILABLE"
    CourtBooked      CourtStatus = "BOOKED"
    CourtMaintenance CourtStatus = "MAINTENANCE"
)

// ParseCourtStatus normalizes s and reports whether it is a known status.
func ParseCourtStatus(s string) (CourtStatus, bool) {
    st := CourtStatus(strings.ToUpper(strings.TrimSpace(s)))
    switch st {
    case CourtAvailable, CourtBooked, CourtMaintenance:
        return st, true
    }
    return st, false
}

// Court is an inventory row.  SportNames is the comma-joined list produced
// by listings; Sports is filled when a single court is loaded.
type Court struct {
    ID           uint64      `json:"id"`
    Name         string      `json:"name"`
    Capacity     int         `json:"capacity"`
    PricePerHour float64     `json:"pricePerHour"`
    Status       CourtStatus `json:"status"`
    CreatedAt    time.Time   `json:"createdAt"`
    SportNames   string      `json:"sports"`
    Sports       []Sport     `json:"sportList,omitempty"`
}
