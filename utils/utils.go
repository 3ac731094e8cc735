package utils

import (
	"errors"
	"fmt"
	"strings"

	"pickup/models/postgres"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrorHandler handles global errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
	}
}

// IsUniqueViolation reports whether err is a uniqueness-constraint
// rejection from the store. The constraint is the source of truth for
// every duplicate check (usernames, parks, events, signups, favorites),
// so racing inserts are resolved here and not by a read-then-write.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	// sqlite wording, seen when tests run on the in-memory driver
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Function to check if a park exists
func CheckParkExists(db *gorm.DB, parkID uint) (*postgres.Park, error) {
	var park postgres.Park
	result := db.Where("id = ?", parkID).First(&park)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("park not found")
		}
		return nil, result.Error
	}

	return &park, nil
}

// Function to check if a scheduled event exists
func CheckScheduleExists(db *gorm.DB, scheduleID uint) (*postgres.Schedule, error) {
	var event postgres.Schedule
	result := db.Where("id = ?", scheduleID).First(&event)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("event not found")
		}
		return nil, result.Error
	}

	return &event, nil
}
