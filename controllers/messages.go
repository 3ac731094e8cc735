package controllers

import (
	"errors"
	"net/http"
	"strings"

	"pickup/middleware"
	models "pickup/models/postgres"
	"pickup/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Send a direct message to another player
// @Description Creates one directed, immutable message record. The body must be non-blank and at most 1000 characters.
// @Tags messages
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username path string true "Receiver's username"
// @Param body formData string true "Message body"
// @Success 201 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/messages/{username} [post]
// @Security ApiKeyAuth
func SendMessage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sender, err := middleware.CurrentUsername(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		receiver := c.Param("username")
		if _, err := utils.FindPlayer(db, receiver); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Receiver not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error sending message"})
			return
		}

		body := c.PostForm("body")
		if strings.TrimSpace(body) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message cannot be blank."})
			return
		}
		if len([]rune(body)) > models.MaxMessageLength {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message is too long."})
			return
		}

		newMessage := models.Message{
			SenderUsername:   sender,
			ReceiverUsername: receiver,
			Body:             body,
		}
		if err := db.Create(&newMessage).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error sending message"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Message sent successfully"})
	}
}

// @Summary List the player's conversations
// @Description The distinct set of counterparts drawn from messages the player sent or received. No messages is an empty list, not an error.
// @Tags messages
// @Produce json
// @Success 200 {object} object{conversations=[]string}
// @Failure 500 {object} object{error=string}
// @Router /auth/messages [get]
// @Security ApiKeyAuth
func ListConversations(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := middleware.CurrentUsername(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var messages []models.Message
		if err := db.Where("sender_username = ? OR receiver_username = ?",
			username, username).Find(&messages).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching conversations"})
			return
		}

		seen := map[string]bool{}
		counterparts := []string{}
		for _, message := range messages {
			counterpart := message.SenderUsername
			if counterpart == username {
				counterpart = message.ReceiverUsername
			}
			if !seen[counterpart] {
				seen[counterpart] = true
				counterparts = append(counterparts, counterpart)
			}
		}

		c.JSON(http.StatusOK, gin.H{"conversations": counterparts})
	}
}

// @Summary Read the thread with another player
// @Description Both directions of the conversation merged, ordered by send time ascending.
// @Tags messages
// @Produce json
// @Param username path string true "Counterpart's username"
// @Success 200 {object} object{messages=[]object{sender=string,receiver=string,body=string}}
// @Failure 404 {object} object{error=string}
// @Router /auth/messages/{username} [get]
// @Security ApiKeyAuth
func GetThread(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := middleware.CurrentUsername(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		counterpart := c.Param("username")
		if _, err := utils.FindPlayer(db, counterpart); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching thread"})
			return
		}

		// Insert id breaks ties between messages stamped in the same
		// instant
		var messages []models.Message
		if err := db.Where(
			"(sender_username = ? AND receiver_username = ?) OR (sender_username = ? AND receiver_username = ?)",
			username, counterpart, counterpart, username).
			Order("sent_at asc").Order("id asc").
			Find(&messages).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching thread"})
			return
		}

		thread := make([]gin.H, len(messages))
		for i, message := range messages {
			thread[i] = gin.H{
				"sender":   message.SenderUsername,
				"receiver": message.ReceiverUsername,
				"body":     message.Body,
				"sent_at":  message.SentAt,
			}
		}

		c.JSON(http.StatusOK, gin.H{"messages": thread})
	}
}
