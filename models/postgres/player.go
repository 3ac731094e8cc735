package postgres

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Gender values stored for a player. Stored lowercase, rendered
// capitalized via GenderDisplay.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

/*
 * 'Player' contains the blueprint definition of a registered account and
 * its profile. Referenced by Park, Schedule, EventSignup, FavoritePark
 * and Message
 */
type Player struct {
	Username     string          `gorm:"primaryKey;size:50;not null"`
	Email        string          `gorm:"size:100;not null"`
	PasswordHash string          `gorm:"size:255;not null"`
	FirstName    string          `gorm:"size:100"`
	LastName     string          `gorm:"size:100"`
	DateOfBirth  *datatypes.Date
	Gender       string          `gorm:"size:10"`
	Height       int             `gorm:"default:0"` // inches
	Weight       int             `gorm:"default:0"` // lbs
	IsPublic     bool            `gorm:"default:false"`
	MemberSince  time.Time       `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationships
	Parks         []Park         `gorm:"foreignKey:CreatorUsername"`
	Schedules     []Schedule     `gorm:"foreignKey:CreatorUsername"`
	EventSignups  []EventSignup  `gorm:"foreignKey:Username"`
	FavoriteParks []FavoritePark `gorm:"foreignKey:Username"`
}

// Age computes the player's age in whole years at 'now' using calendar
// subtraction, not day counting. Returns nil when no date of birth is set.
func (p *Player) Age(now time.Time) *int {
	if p.DateOfBirth == nil {
		return nil
	}
	dob := time.Time(*p.DateOfBirth)
	years := now.Year() - dob.Year()
	// Birthday not reached yet this year
	if now.Month() < dob.Month() ||
		(now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return &years
}

// HeightDisplay renders the stored inches as a feet/inches string,
// e.g. 74 -> 6'2"
func (p *Player) HeightDisplay() string {
	inches := p.Height % 12
	feet := (p.Height - inches) / 12
	return fmt.Sprintf("%d'%d\"", feet, inches)
}

// GenderDisplay returns the capitalized display string for the stored
// gender value, or "" when unset.
func (p *Player) GenderDisplay() string {
	switch p.Gender {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	case GenderOther:
		return "Other"
	}
	return ""
}
