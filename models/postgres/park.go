package postgres

import (
	"time"

	"gorm.io/datatypes"
)

/*
 * 'Park' represents a user-submitted venue. The full address is the
 * identity of a park: the composite unique index over (name, street,
 * city, state, zipcode) is what rejects duplicate submissions.
 */
type Park struct {
	ID              uint   `gorm:"primaryKey"`
	CreatorUsername string `gorm:"size:50;not null;index:idx_parks_creator"`
	Name            string `gorm:"size:200;not null;uniqueIndex:idx_parks_address"`
	Street          string `gorm:"size:200;not null;uniqueIndex:idx_parks_address"`
	City            string `gorm:"size:100;not null;uniqueIndex:idx_parks_address"`
	State           string `gorm:"size:2;not null;uniqueIndex:idx_parks_address"`
	Zipcode         string `gorm:"size:10;not null;uniqueIndex:idx_parks_address"`
	// Canonical address returned by the geocoder, when one was configured
	// at submission time
	Geocoded  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationships
	Creator   Player     `gorm:"foreignKey:CreatorUsername"`
	Schedules []Schedule `gorm:"foreignKey:ParkID;constraint:OnDelete:CASCADE;"`
}

/*
 * 'FavoritePark' is a player's bookmark of a park. The composite primary
 * key makes favoriting idempotent at the store layer: a second insert for
 * the same (player, park) pair is a uniqueness violation.
 */
type FavoritePark struct {
	Username string `gorm:"primaryKey;size:50;not null"`
	ParkID   uint   `gorm:"primaryKey;not null;index"`

	// Relationships
	Player Player `gorm:"foreignKey:Username;constraint:OnDelete:CASCADE;"`
	Park   Park   `gorm:"foreignKey:ParkID;constraint:OnDelete:CASCADE;"`
}
