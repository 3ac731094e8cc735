package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pickup/middleware"
	models "pickup/models/postgres"
	"pickup/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func eventInfo(event *models.Schedule) gin.H {
	return gin.H{
		"event_id":  event.ID,
		"park_id":   event.ParkID,
		"name":      event.Name,
		"date":      time.Time(event.Date).Format("2006-01-02"),
		"time_slot": event.TimeSlot,
		"time":      event.SlotLabel(),
		"creator":   event.CreatorUsername,
	}
}

func parseEventID(c *gin.Context) (uint, bool) {
	eventID, err := strconv.ParseUint(c.Param("event_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return 0, false
	}
	return uint(eventID), true
}

// @Summary Schedule a match at a park
// @Description Creates an event at a date and 15-minute time slot. The (park, date, slot, name) unique constraint is the sole duplicate guard: two racing submissions resolve at the store and exactly one wins.
// @Tags schedule
// @Accept x-www-form-urlencoded
// @Produce json
// @Param park_id path integer true "Park id"
// @Param name formData string true "Match name"
// @Param date formData string true "Match date, YYYY-MM-DD"
// @Param time_slot formData integer true "Slot index, 0-95"
// @Success 201 {object} object{message=string,event=object{event_id=integer,time=string}}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/parks/{park_id}/schedule [post]
// @Security ApiKeyAuth
func CreateEvent(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := middleware.CurrentUsername(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		parkID, ok := parseParkID(c)
		if !ok {
			return
		}
		if _, err := utils.CheckParkExists(db, parkID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Park not found"})
			return
		}

		name := strings.TrimSpace(c.PostForm("name"))
		date := c.PostForm("date")
		slot := c.PostForm("time_slot")

		if name == "" || date == "" || slot == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required."})
			return
		}

		parsedDate, err := time.ParseInLocation("2006-01-02", date, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date."})
			return
		}
		parsedSlot, err := strconv.Atoi(slot)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time slot."})
			return
		}

		newEvent := models.Schedule{
			CreatorUsername: username,
			ParkID:          parkID,
			Date:            datatypes.Date(parsedDate),
			TimeSlot:        parsedSlot,
			Name:            name,
		}
		if err := db.Create(&newEvent).Error; err != nil {
			switch {
			case errors.Is(err, models.ErrPastDate):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot schedule a match on a past date."})
			case errors.Is(err, models.ErrBadTimeSlot):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time slot."})
			case utils.IsUniqueViolation(err):
				c.JSON(http.StatusConflict, gin.H{"error": "A match with this name already exists at that park and time."})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scheduling match"})
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Match scheduled successfully",
			"event":   eventInfo(&newEvent),
		})
	}
}

// @Summary List scheduled matches at a park
// @Description Events at the park partitioned by whether the requester has signed up for each, both ordered by date ascending.
// @Tags schedule
// @Produce json
// @Param park_id path integer true "Park id"
// @Success 200 {object} object{my_events=[]object{event_id=integer},other_events=[]object{event_id=integer}}
// @Failure 404 {object} object{error=string}
// @Router /auth/parks/{park_id}/schedule [get]
// @Security ApiKeyAuth
func ListParkSchedule(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := middleware.CurrentUsername(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		parkID, ok := parseParkID(c)
		if !ok {
			return
		}
		if _, err := utils.CheckParkExists(db, parkID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Park not found"})
			return
		}

		var events []models.Schedule
		if err := db.Where("park_id = ?", parkID).
			Order("date asc").Order("time_slot asc").
			Find(&events).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching schedule"})
			return
		}

		var signups []models.EventSignup
		if err := db.Where("username = ?", username).Find(&signups).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching signups"})
			return
		}
		joined := make(map[uint]bool, len(signups))
		for _, signup := range signups {
			joined[signup.ScheduleID] = true
		}

		myEvents := []gin.H{}
		otherEvents := []gin.H{}
		for i := range events {
			if joined[events[i].ID] {
				myEvents = append(myEvents, eventInfo(&events[i]))
			} else {
				otherEvents = append(otherEvents, eventInfo(&events[i]))
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"my_events":    myEvents,
			"other_events": otherEvents,
		})
	}
}

// @Summary Sign up for a match
// @Description Inserts the (player, event) roster row; the composite key rejects a second signup for the same match.
// @Tags schedule
// @Produce json
// @Param event_id path integer true "Event id"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/schedule/{event_id}/signup [post]
// @Security ApiKeyAuth
func JoinEvent(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := middleware.CurrentUsername(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		eventID, ok := parseEventID(c)
		if !ok {
			return
		}
		if _, err := utils.CheckScheduleExists(db, eventID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}

		signup := models.EventSignup{Username: username, ScheduleID: eventID}
		if err := db.Create(&signup).Error; err != nil {
			if utils.IsUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "You have already signed up for this match."})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error joining match"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Signed up successfully"})
	}
}

// @Summary Leave a match
// @Description Deletes the single matching roster row. Leaving a match never joined is an error; rejoining after leaving is allowed.
// @Tags schedule
// @Produce json
// @Param event_id path integer true "Event id"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/schedule/{event_id}/signup [delete]
// @Security ApiKeyAuth
func LeaveEvent(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := middleware.CurrentUsername(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		eventID, ok := parseEventID(c)
		if !ok {
			return
		}
		if _, err := utils.CheckScheduleExists(db, eventID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}

		result := db.Where("username = ? AND schedule_id = ?", username, eventID).
			Delete(&models.EventSignup{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error leaving match"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "You are not signed up for this match."})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Left match successfully"})
	}
}

// @Summary List the roster for a match
// @Description Every player with a signup row for this event, in no particular order.
// @Tags schedule
// @Produce json
// @Param event_id path integer true "Event id"
// @Success 200 {object} object{attendees=[]object{username=string}}
// @Failure 404 {object} object{error=string}
// @Router /auth/schedule/{event_id}/attendees [get]
// @Security ApiKeyAuth
func ListAttendees(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseEventID(c)
		if !ok {
			return
		}
		if _, err := utils.CheckScheduleExists(db, eventID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}

		var signups []models.EventSignup
		if err := db.Where("schedule_id = ?", eventID).Find(&signups).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching attendees"})
			return
		}

		attendees := make([]gin.H, len(signups))
		for i, signup := range signups {
			attendees[i] = gin.H{"username": signup.Username}
		}

		c.JSON(http.StatusOK, gin.H{"attendees": attendees})
	}
}
