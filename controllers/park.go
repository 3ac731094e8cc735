package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	us "pickup/constants/us"
	"pickup/middleware"
	models "pickup/models/postgres"
	"pickup/services/geocode"
	"pickup/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func parkInfo(park *models.Park) gin.H {
	return gin.H{
		"park_id": park.ID,
		"name":    park.Name,
		"street":  park.Street,
		"city":    park.City,
		"state":   park.State,
		"zipcode": park.Zipcode,
		"creator": park.CreatorUsername,
	}
}

func parseParkID(c *gin.Context) (uint, bool) {
	parkID, err := strconv.ParseUint(c.Param("park_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid park id"})
		return 0, false
	}
	return uint(parkID), true
}

// @Summary Add a new park
// @Description Submits a venue. The full address is the park's identity; a second submission with the same address is rejected by the store's unique constraint. When a geocoder credential is configured the address is normalized first: a near match returns the canonical address for confirmation (resubmit with confirm=true).
// @Tags parks
// @Accept x-www-form-urlencoded
// @Produce json
// @Param name formData string true "Park name"
// @Param street formData string true "Street address"
// @Param city formData string true "City"
// @Param state formData string true "Two-letter state code"
// @Param zipcode formData string true "5-digit or 5+4 zip code"
// @Param confirm formData boolean false "Accept the geocoder's suggested address"
// @Success 201 {object} object{message=string,park=object{park_id=integer,name=string}}
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/parks [post]
// @Security ApiKeyAuth
func AddPark(db *gorm.DB, geocoder *geocode.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := middleware.CurrentUsername(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		name := strings.TrimSpace(c.PostForm("name"))
		street := strings.TrimSpace(c.PostForm("street"))
		city := strings.TrimSpace(c.PostForm("city"))
		state := strings.ToUpper(strings.TrimSpace(c.PostForm("state")))
		zipcode := strings.TrimSpace(c.PostForm("zipcode"))

		if name == "" || street == "" || city == "" || state == "" || zipcode == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required."})
			return
		}
		if !us.ValidState(state) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state code."})
			return
		}
		if !utils.ValidZipcode(zipcode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid zip code."})
			return
		}

		var geocoded datatypes.JSON
		if geocoder != nil {
			submitted := geocode.Address{
				Street: street, City: city, State: state, Zipcode: zipcode,
			}
			result, err := geocoder.Normalize(c.Request.Context(), submitted)
			if err != nil {
				if errors.Is(err, geocode.ErrUnresolvable) {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Address could not be verified."})
					return
				}
				c.JSON(http.StatusBadGateway, gin.H{"error": "Address verification unavailable"})
				return
			}

			if result.Match != geocode.MatchExact && c.PostForm("confirm") != "true" {
				// Hand the canonical form back; the submitter resubmits
				// with confirm=true to accept it
				c.JSON(http.StatusConflict, gin.H{
					"error":     "Address needs confirmation.",
					"suggested": result.Canonical,
				})
				return
			}
			street = result.Canonical.Street
			city = result.Canonical.City
			state = result.Canonical.State
			zipcode = result.Canonical.Zipcode
			geocoded, _ = json.Marshal(result.Canonical)
		}

		newPark := models.Park{
			CreatorUsername: username,
			Name:            name,
			Street:          street,
			City:            city,
			State:           state,
			Zipcode:         zipcode,
			Geocoded:        geocoded,
		}
		if err := db.Create(&newPark).Error; err != nil {
			if utils.IsUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "A park with this address already exists."})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding park"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Park added successfully",
			"park":    parkInfo(&newPark),
		})
	}
}

// @Summary Add a park to the player's favorites
// @Description Creates the (player, park) bookmark row; a second favorite of the same park is rejected.
// @Tags parks
// @Produce json
// @Param park_id path integer true "Park id"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/parks/{park_id}/favorite [post]
// @Security ApiKeyAuth
func FavoritePark(db *gorm.DB) gin.HandlerFunc {
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

		favorite := models.FavoritePark{Username: username, ParkID: parkID}
		if err := db.Create(&favorite).Error; err != nil {
			if utils.IsUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "Park is already in your favorites."})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error favoriting park"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Park added to favorites"})
	}
}

// @Summary Remove a park from the player's favorites
// @Description Deletes the single matching bookmark row. Removing a park that was never favorited is an error.
// @Tags parks
// @Produce json
// @Param park_id path integer true "Park id"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/parks/{park_id}/favorite [delete]
// @Security ApiKeyAuth
func UnfavoritePark(db *gorm.DB) gin.HandlerFunc {
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

		result := db.Where("username = ? AND park_id = ?", username, parkID).
			Delete(&models.FavoritePark{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error unfavoriting park"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Park is not in your favorites."})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Park removed from favorites"})
	}
}

// @Summary Search parks by name
// @Description Substring match on park name, partitioned by whether the requester has favorited each result. Without a q parameter only the player's favorites are returned, not the full directory.
// @Tags parks
// @Produce json
// @Param q query string false "Substring to look for"
// @Success 200 {object} object{favorite_parks=[]object{park_id=integer,name=string},other_parks=[]object{park_id=integer,name=string}}
// @Failure 500 {object} object{error=string}
// @Router /auth/parks [get]
// @Security ApiKeyAuth
func SearchParks(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := middleware.CurrentUsername(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var favorites []models.FavoritePark
		if err := db.Where("username = ?", username).Find(&favorites).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching favorites"})
			return
		}
		favoriteIDs := make(map[uint]bool, len(favorites))
		for _, favorite := range favorites {
			favoriteIDs[favorite.ParkID] = true
		}

		query, searched := c.GetQuery("q")

		var parks []models.Park
		if err := db.Order("name asc").Find(&parks).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error searching parks"})
			return
		}

		favoriteMatches := []gin.H{}
		otherMatches := []gin.H{}
		for i := range parks {
			park := &parks[i]
			if searched {
				if query != "" && !strings.Contains(park.Name, query) {
					continue
				}
				if favoriteIDs[park.ID] {
					favoriteMatches = append(favoriteMatches, parkInfo(park))
				} else {
					otherMatches = append(otherMatches, parkInfo(park))
				}
				continue
			}
			// No search performed: only the player's favorites
			if favoriteIDs[park.ID] {
				favoriteMatches = append(favoriteMatches, parkInfo(park))
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"favorite_parks": favoriteMatches,
			"other_parks":    otherMatches,
		})
	}
}
