package postgres

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	timeslots "pickup/constants/schedule"
)

var (
	ErrPastDate    = errors.New("cannot schedule a match on a past date")
	ErrBadTimeSlot = errors.New("time slot must be between 0 and 95")
)

/*
 * 'Schedule' is a match scheduled at a park on a date, at a 15-minute
 * time slot. (park, date, slot, name) is the identity of an event: the
 * composite unique index is the sole duplicate/concurrency guard, two
 * racing inserts resolve at the database and exactly one wins.
 */
type Schedule struct {
	ID              uint           `gorm:"primaryKey"`
	CreatorUsername string         `gorm:"size:50;not null;index:idx_schedules_creator"`
	ParkID          uint           `gorm:"not null;uniqueIndex:idx_schedules_slot"`
	Date            datatypes.Date `gorm:"not null;uniqueIndex:idx_schedules_slot"`
	TimeSlot        int            `gorm:"not null;uniqueIndex:idx_schedules_slot"`
	Name            string         `gorm:"size:200;not null;uniqueIndex:idx_schedules_slot"`
	CreatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationships
	Creator Player        `gorm:"foreignKey:CreatorUsername"`
	Park    Park          `gorm:"foreignKey:ParkID"`
	Signups []EventSignup `gorm:"foreignKey:ScheduleID;constraint:OnDelete:CASCADE;"`
}

// SlotLabel renders the event's time slot as a 12-hour clock string,
// e.g. slot 40 -> "10:00 AM"
func (s *Schedule) SlotLabel() string {
	return timeslots.SlotLabel(s.TimeSlot)
}

// GORM hook to reject out-of-range slots and past dates before the row
// ever reaches the store
func (s *Schedule) BeforeCreate(tx *gorm.DB) error {
	if !timeslots.ValidSlot(s.TimeSlot) {
		return ErrBadTimeSlot
	}
	today := time.Now()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if time.Time(s.Date).Before(today) {
		return ErrPastDate
	}
	return nil
}

/*
 * 'EventSignup' is the membership of one player in one scheduled match.
 * Composite primary key: a player cannot join the same event twice, and
 * leaving deletes the single matching row.
 */
type EventSignup struct {
	Username   string    `gorm:"primaryKey;size:50;not null;index"`
	ScheduleID uint      `gorm:"primaryKey;not null"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationships
	Player   Player   `gorm:"foreignKey:Username;constraint:OnDelete:CASCADE;"`
	Schedule Schedule `gorm:"foreignKey:ScheduleID;constraint:OnDelete:CASCADE;"`
}
