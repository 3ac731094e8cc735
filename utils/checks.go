package utils

import (
	"regexp"
	"strings"

	models "pickup/models/postgres"

	"gorm.io/gorm"
)

var zipPattern = regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`)

// ValidZipcode accepts 5-digit and 5+4 zip codes.
func ValidZipcode(zip string) bool {
	return zipPattern.MatchString(zip)
}

// ValidEmail applies the registration page's format check: an address
// must contain both "@" and "."
func ValidEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}

// FindPlayer looks a player up by username. Returns gorm.ErrRecordNotFound
// when no such account exists.
func FindPlayer(db *gorm.DB, username string) (*models.Player, error) {
	var player models.Player
	if err := db.Where("username = ?", username).First(&player).Error; err != nil {
		return nil, err
	}
	return &player, nil
}
