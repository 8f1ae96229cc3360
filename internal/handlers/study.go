package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studyhub-dev/studyhub/db"
	"github.com/studyhub-dev/studyhub/internal/membership"
	"github.com/studyhub-dev/studyhub/internal/metrics"
	"github.com/studyhub-dev/studyhub/internal/models"
	"github.com/studyhub-dev/studyhub/internal/utils"
)

type LogSessionRequest struct {
	// Minutes studied; zero, negative or non-numeric input never
	// reaches the store.
	Duration int `json:"duration" binding:"required,gt=0"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type SessionSummary struct {
	ID        uint      `json:"id"`
	Duration  int       `json:"duration"`
	StartTime time.Time `json:"start_time"`
	SubjectID uint      `json:"subject_id"`
}

type MessageSummary struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	SenderID  uint      `json:"sender_id"`
	Sender    string    `json:"sender"`
}

func subjectMessages(subjectID uint) ([]MessageSummary, error) {
	var messages []models.Message

	err := db.DB.Preload("Sender").
		Where("subject_id = ?", subjectID).
		Order("timestamp ASC").
		Order("id ASC").
		Find(&messages).Error

	if err != nil {
		return nil, err
	}

	summaries := []MessageSummary{}

	for _, message := range messages {
		summaries = append(summaries, MessageSummary{
			ID:        message.ID,
			Content:   message.Content,
			Timestamp: message.Timestamp,
			SenderID:  message.SenderID,
			Sender:    message.Sender.Username,
		})
	}

	return summaries, nil
}

func LogStudySession(ctx *gin.Context) {
	subjectID, ok := paramID(ctx, "subject_id")

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	authorized, err := membership.AuthorizeView(db.DB, userID, subjectID)

	if err != nil {
		log.Printf("Failed to check subject access: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log study session"})
		return
	}

	if !authorized {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var body LogSessionRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Duration must be a positive number of minutes"})
		return
	}

	session := models.StudySession{
		Duration:  body.Duration,
		StartTime: time.Now(),
		SubjectID: subjectID,
	}

	if err := db.DB.Create(&session).Error; err != nil {
		log.Printf("Failed to log study session: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log study session"})
		return
	}

	ctx.JSON(http.StatusCreated, SessionSummary{
		ID:        session.ID,
		Duration:  session.Duration,
		StartTime: session.StartTime,
		SubjectID: session.SubjectID,
	})
}

func SendMessage(ctx *gin.Context) {
	subjectID, ok := paramID(ctx, "subject_id")

	if !ok {
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	authorized, err := membership.AuthorizeView(db.DB, currentUser.ID, subjectID)

	if err != nil {
		log.Printf("Failed to check subject access: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	if !authorized {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var body SendMessageRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		return
	}

	content := strings.TrimSpace(body.Content)

	if content == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		return
	}

	message := models.Message{
		Content:   content,
		Timestamp: time.Now(),
		SenderID:  currentUser.ID,
		SubjectID: subjectID,
	}

	if err := db.DB.Create(&message).Error; err != nil {
		log.Printf("Failed to send message: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	metrics.MessagesSent.WithLabelValues(ctx.FullPath()).Inc()

	ctx.JSON(http.StatusCreated, MessageSummary{
		ID:        message.ID,
		Content:   message.Content,
		Timestamp: message.Timestamp,
		SenderID:  message.SenderID,
		Sender:    currentUser.Username,
	})
}
