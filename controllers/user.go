package controllers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"pickup/middleware"
	models "pickup/models/postgres"
	"pickup/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// profileDetail collects the full profile payload for a player. Email is
// only included when the profile belongs to the requester.
func profileDetail(player *models.Player, own bool) gin.H {
	detail := gin.H{
		"username":     player.Username,
		"first_name":   player.FirstName,
		"last_name":    player.LastName,
		"gender":       player.GenderDisplay(),
		"height":       player.Height,
		"height_str":   player.HeightDisplay(),
		"weight":       player.Weight,
		"is_public":    player.IsPublic,
		"member_since": player.MemberSince,
	}
	if age := player.Age(time.Now()); age != nil {
		detail["age"] = *age
	}
	if player.DateOfBirth != nil {
		detail["date_of_birth"] = time.Time(*player.DateOfBirth).Format("2006-01-02")
	}
	if own {
		detail["email"] = player.Email
	}
	return detail
}

// @Summary Register a new account
// @Description Creates a player account, establishes a session and returns a token. The client should continue to profile completion.
// @Tags account
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param email formData string true "Email address"
// @Param password formData string true "Password"
// @Param confirm_password formData string true "Password confirmation"
// @Success 201 {object} object{message=string,user=object{username=string,email=string},token=string,next=string}
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /signup [post]
func SignUp(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.PostForm("username"))
		email := strings.TrimSpace(c.PostForm("email"))
		password := c.PostForm("password")
		confirmPassword := c.PostForm("confirm_password")

		if username == "" || email == "" || password == "" || confirmPassword == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required."})
			return
		}

		if !utils.ValidEmail(email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address."})
			return
		}

		if password != confirmPassword {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match."})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating user"})
			return
		}

		// No pre-check on the username: the store's unique constraint is
		// the source of truth for availability
		newPlayer := models.Player{
			Username:     username,
			Email:        email,
			PasswordHash: string(hash),
		}
		if err := db.Create(&newPlayer).Error; err != nil {
			if utils.IsUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "User name unavailable."})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating user"})
			return
		}

		if err := middleware.SaveSession(c, username); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
			return
		}
		token, err := middleware.IssueToken(username)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "User created successfully",
			"user": gin.H{
				"username": newPlayer.Username,
				"email":    newPlayer.Email,
			},
			"token": token,
			"next":  "/auth/profile",
		})
	}
}

// @Summary Log into an existing account
// @Description A wrong username and a wrong password both produce the same error. On success a session cookie is set and a Bearer token returned; an optional next form value is echoed back for the client to follow.
// @Tags account
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Param next formData string false "Return path to follow after login"
// @Success 200 {object} object{message=string,token=string,next=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Router /login [post]
func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		// Minimum input sanitizing
		if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parameters can't be empty"})
			return
		}

		var player models.Player
		if err := db.Where("username = ?", username).First(&player).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login credentials."})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login credentials."})
			return
		}

		if err := middleware.SaveSession(c, player.Username); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
			return
		}
		token, err := middleware.IssueToken(player.Username)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
			return
		}

		next := c.PostForm("next")
		if next == "" {
			next = "/auth/profile"
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Logged in successfully",
			"token":   token,
			"next":    next,
		})
	}
}

// @Summary Log out
// @Description Deletes the session associated with the current player. Token-only clients have no session to clear; their token simply runs out on its own, so logout is a no-op for them.
// @Tags account
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Router /auth/logout [delete]
// @Security ApiKeyAuth
func Logout(c *gin.Context) {
	if err := middleware.ClearSession(c); err != nil && !errors.Is(err, middleware.ErrNoSession) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// @Summary Change the account password
// @Description Verifies the old password, then replaces it. The current session stays valid.
// @Tags account
// @Accept x-www-form-urlencoded
// @Produce json
// @Param old_password formData string true "Current password"
// @Param new_password formData string true "New password"
// @Param confirm_password formData string true "New password confirmation"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Router /auth/changepassword [patch]
// @Security ApiKeyAuth
func ChangePassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := middleware.CurrentUsername(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		player, err := utils.FindPlayer(db, username)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		oldPassword := c.PostForm("old_password")
		newPassword := c.PostForm("new_password")
		confirmPassword := c.PostForm("confirm_password")

		if err := bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(oldPassword)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect old password."})
			return
		}
		if newPassword == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "New password cannot be blank."})
			return
		}
		if newPassword != confirmPassword {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match."})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error changing password"})
			return
		}
		if err := db.Model(player).Update("password_hash", string(hash)).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error changing password"})
			return
		}

		// Re-authenticate the current session in place; other sessions are
		// untouched
		if err := middleware.SaveSession(c, username); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
	}
}

// @Summary Get the authenticated player's own profile
// @Description Always returns full detail regardless of visibility, including every editable field so the client can prefill the edit form.
// @Tags profile
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} object{error=string}
// @Router /auth/profile [get]
// @Security ApiKeyAuth
func GetOwnProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := middleware.CurrentUsername(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		player, err := utils.FindPlayer(db, username)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		c.JSON(http.StatusOK, profileDetail(player, true))
	}
}

// @Summary Update the authenticated player's profile
// @Description Edits profile attributes. Only submitted fields change.
// @Tags profile
// @Accept x-www-form-urlencoded
// @Produce json
// @Param first_name formData string false "First name"
// @Param last_name formData string false "Last name"
// @Param date_of_birth formData string false "Date of birth, YYYY-MM-DD"
// @Param gender formData string false "male, female or other"
// @Param height formData integer false "Height in inches"
// @Param weight formData integer false "Weight in lbs"
// @Param is_public formData boolean false "Whether other players may view profile detail"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Router /auth/profile [patch]
// @Security ApiKeyAuth
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := middleware.CurrentUsername(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		player, err := utils.FindPlayer(db, username)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		updates := map[string]interface{}{}

		if firstName, ok := c.GetPostForm("first_name"); ok {
			updates["first_name"] = firstName
		}
		if lastName, ok := c.GetPostForm("last_name"); ok {
			updates["last_name"] = lastName
		}
		if dob, ok := c.GetPostForm("date_of_birth"); ok {
			parsed, err := time.ParseInLocation("2006-01-02", dob, time.UTC)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date of birth."})
				return
			}
			updates["date_of_birth"] = datatypes.Date(parsed)
		}
		if gender, ok := c.GetPostForm("gender"); ok {
			gender = strings.ToLower(gender)
			if gender != models.GenderMale && gender != models.GenderFemale &&
				gender != models.GenderOther && gender != "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gender."})
				return
			}
			updates["gender"] = gender
		}
		if height, ok := c.GetPostForm("height"); ok {
			parsed, err := strconv.Atoi(height)
			if err != nil || parsed < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid height."})
				return
			}
			updates["height"] = parsed
		}
		if weight, ok := c.GetPostForm("weight"); ok {
			parsed, err := strconv.Atoi(weight)
			if err != nil || parsed < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid weight."})
				return
			}
			updates["weight"] = parsed
		}
		if isPublic, ok := c.GetPostForm("is_public"); ok {
			parsed, err := strconv.ParseBool(isPublic)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid visibility value."})
				return
			}
			updates["is_public"] = parsed
		}

		if len(updates) > 0 {
			if err := db.Model(player).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating profile"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
	}
}

// @Summary View another player's profile
// @Description Visibility-gated: the owner always sees full detail; a private profile shows other players only the username and a notice.
// @Tags profile
// @Produce json
// @Param username path string true "Username of the profile to view"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} object{error=string}
// @Router /auth/users/{username} [get]
// @Security ApiKeyAuth
func GetPlayerProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, err := middleware.CurrentUsername(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		target := c.Param("username")
		player, err := utils.FindPlayer(db, target)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching profile"})
			return
		}

		if player.Username != requester && !player.IsPublic {
			// Profile shell: username only, no detail fields
			c.JSON(http.StatusOK, gin.H{
				"username": player.Username,
				"private":  true,
				"notice":   "This profile is private.",
			})
			return
		}

		c.JSON(http.StatusOK, profileDetail(player, player.Username == requester))
	}
}

// @Summary Search players by username
// @Description Case-sensitive substring match; an empty query matches everyone. Results expose usernames only and are never filtered by visibility.
// @Tags profile
// @Produce json
// @Param q query string false "Substring to look for"
// @Success 200 {object} object{players=[]object{username=string}}
// @Failure 500 {object} object{error=string}
// @Router /auth/users [get]
// @Security ApiKeyAuth
func SearchPlayers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")

		var players []models.Player
		if err := db.Find(&players).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error searching players"})
			return
		}

		// Containment runs here rather than in SQL: LIKE is
		// case-insensitive on some stores and the match is case-sensitive
		results := []gin.H{}
		for _, player := range players {
			if query == "" || strings.Contains(player.Username, query) {
				results = append(results, gin.H{"username": player.Username})
			}
		}
		sort.Slice(results, func(i, j int) bool {
			return results[i]["username"].(string) < results[j]["username"].(string)
		})

		c.JSON(http.StatusOK, gin.H{"players": results})
	}
}
