package model

import (
	"errors"
	"time"
)

// SizeClass partitions containers into the two footprints the yard plans
// around.  It is derived from the first character of the ISO 6346 size/type
// code printed on the unit.
type SizeClass string

const (
	SizeTwentyFt SizeClass = "TWENTY_FT"
	SizeFortyFt  SizeClass = "FORTY_FT"
)

// LoadStatus records whether a container arrived carrying cargo.  Stacking
// rules depend on it: a laden box may not sit directly on an empty one.
type LoadStatus string

const (
	LoadLaden LoadStatus = "LADEN"
	LoadEmpty LoadStatus = "EMPTY"
)

// ErrUnknownISOType is returned when an ISO size/type code does not map to a
// supported size class.
var ErrUnknownISOType = errors.New("unknown ISO size/type code")

// SizeClassFromISO derives the size class from an ISO 6346 size/type code.
// The first character encodes length: '2' is a 20ft unit, '4' a 40ft unit
// and 'L' the 45ft family, which the yard stores in 40ft rows.
func SizeClassFromISO(code string) (SizeClass, error) {
	if code == "" {
		return "", ErrUnknownISOType
	}
	switch code[0] {
	case '2':
		return SizeTwentyFt, nil
	case '4', 'L':
		return SizeFortyFt, nil
	}
	return "", ErrUnknownISOType
}

// SubSlots returns the sub-slot letters a container of this size may occupy
// within a bay.  A 40ft unit takes the whole bay; a 20ft unit takes one half.
func (s SizeClass) SubSlots() []string {
	if s == SizeTwentyFt {
		return []string{"A", "B"}
	}
	return []string{"A"}
}

// ContainerEntry is the gate record for a container that entered the
// terminal.  Entries are created by the gate/ANPR system; this service only
// reads them to drive allocation and work orders.
//
// Fields:
//  ID          – primary key identifier.
//  ContainerNo – ISO 6346 owner code + serial, e.g. "MSCU1234565".
//  ISOType     – raw size/type code, e.g. "42G1".
//  SizeClass   – derived size class, stored denormalized.
//  LoadStatus  – LADEN or EMPTY at entry.
//  CompanyID   – owning company, drives row affinity.
//  EnteredAt   – gate-in timestamp (UTC).
//  ExitedAt    – gate-out timestamp, nil while the container is in the yard.
type ContainerEntry struct {
	ID          uint64     // container_entries.id
	ContainerNo string     // container_entries.container_no
	ISOType     string     // container_entries.iso_type
	SizeClass   SizeClass  // container_entries.size_class
	LoadStatus  LoadStatus // container_entries.load_status
	CompanyID   uint64     // container_entries.company_id
	EnteredAt   time.Time  // container_entries.entered_at
	ExitedAt    *time.Time // container_entries.exited_at (nullable)
}
