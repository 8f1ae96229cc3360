package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhub-dev/studyhub/db"
	"github.com/studyhub-dev/studyhub/internal/models"
)

type ColorSummary struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	HexCode string `json:"hex_code"`
}

type PrioritySummary struct {
	ID     uint   `json:"id"`
	Level  string `json:"level"`
	Weight int    `json:"weight"`
}

// GetLookups serves the static reference data clients need to build
// subject and task forms.
func GetLookups(ctx *gin.Context) {
	var colors []models.Color
	var priorities []models.Priority
	var tags []models.Tag

	if err := db.DB.Order("id ASC").Find(&colors).Error; err != nil {
		log.Printf("Failed to fetch colors: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lookup data"})
		return
	}

	if err := db.DB.Order("weight ASC").Find(&priorities).Error; err != nil {
		log.Printf("Failed to fetch priorities: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lookup data"})
		return
	}

	if err := db.DB.Order("id ASC").Find(&tags).Error; err != nil {
		log.Printf("Failed to fetch tags: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lookup data"})
		return
	}

	colorSummaries := []ColorSummary{}
	for _, color := range colors {
		colorSummaries = append(colorSummaries, ColorSummary{ID: color.ID, Name: color.Name, HexCode: color.HexCode})
	}

	prioritySummaries := []PrioritySummary{}
	for _, priority := range priorities {
		prioritySummaries = append(prioritySummaries, PrioritySummary{ID: priority.ID, Level: priority.Level, Weight: priority.Weight})
	}

	tagSummaries := []TagSummary{}
	for _, tag := range tags {
		tagSummaries = append(tagSummaries, TagSummary{ID: tag.ID, Name: tag.Name})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"colors":     colorSummaries,
		"priorities": prioritySummaries,
		"tags":       tagSummaries,
	})
}
