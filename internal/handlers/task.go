package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhub-dev/studyhub/db"
	"github.com/studyhub-dev/studyhub/internal/membership"
	"github.com/studyhub-dev/studyhub/internal/models"
	"github.com/studyhub-dev/studyhub/internal/utils"
	"gorm.io/gorm"
)

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	SubjectID   uint   `json:"subject_id" binding:"required"`
	PriorityID  *uint  `json:"priority_id"`
	TagIDs      []uint `json:"tag_ids"`
}

type TagSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type TaskSummary struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     *string      `json:"due_date"`
	StatusID    uint         `json:"status_id"`
	PriorityID  *uint        `json:"priority_id"`
	SubjectID   uint         `json:"subject_id"`
	CreatorID   uint         `json:"creator_id"`
	Tags        []TagSummary `json:"tags"`
}

func taskSummary(task models.Task) TaskSummary {
	summary := TaskSummary{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     utils.FormatDueDate(task.DueDate),
		StatusID:    task.StatusID,
		PriorityID:  task.PriorityID,
		SubjectID:   task.SubjectID,
		CreatorID:   task.UserID,
		Tags:        []TagSummary{},
	}

	for _, tag := range task.Tags {
		summary.Tags = append(summary.Tags, TagSummary{ID: tag.ID, Name: tag.Name})
	}

	return summary
}

// orderedTasks returns a subject's tasks sorted by status (pending
// first) then priority weight (lower weight first). Tasks without a
// priority sort after prioritized ones within their status band.
func orderedTasks(subjectID uint) ([]TaskSummary, error) {
	var tasks []models.Task

	err := db.DB.Preload("Tags").
		Joins("LEFT JOIN priorities ON priorities.id = tasks.priority_id").
		Where("tasks.subject_id = ?", subjectID).
		Order("tasks.status_id ASC").
		Order("COALESCE(priorities.weight, 1000) ASC").
		Order("tasks.id ASC").
		Find(&tasks).Error

	if err != nil {
		return nil, err
	}

	summaries := []TaskSummary{}

	for _, task := range tasks {
		summaries = append(summaries, taskSummary(task))
	}

	return summaries, nil
}

func CreateTask(ctx *gin.Context) {
	var body CreateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var subject models.Subject

	if err := db.DB.First(&subject, body.SubjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		} else {
			log.Printf("Failed to fetch subject: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subject"})
		}
		return
	}

	authorized, err := membership.AuthorizeView(db.DB, userID, body.SubjectID)

	if err != nil {
		log.Printf("Failed to check subject access: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	if !authorized {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	if body.PriorityID != nil {
		var priority models.Priority

		if err := db.DB.First(&priority, *body.PriorityID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			} else {
				log.Printf("Failed to fetch priority: %v", err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
			}
			return
		}
	}

	task := models.Task{
		Title:       body.Title,
		Description: body.Description,
		DueDate:     utils.ParseDueDate(body.DueDate),
		StatusID:    models.StatusPending,
		PriorityID:  body.PriorityID,
		SubjectID:   body.SubjectID,
		UserID:      userID,
	}

	if len(body.TagIDs) > 0 {
		// Unknown tag ids are skipped, not errors.
		var tags []models.Tag

		if err := db.DB.Where("id IN ?", body.TagIDs).Find(&tags).Error; err != nil {
			log.Printf("Failed to fetch tags: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
			return
		}

		task.Tags = tags
	}

	if err := db.DB.Create(&task).Error; err != nil {
		log.Printf("Failed to create task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	ctx.JSON(http.StatusCreated, taskSummary(task))
}

func CompleteTask(ctx *gin.Context) {
	taskID, ok := paramID(ctx, "task_id")

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var task models.Task

	if err := db.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			log.Printf("Failed to fetch task: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	// Only the creating user may toggle completion; subject membership
	// or ownership alone is not enough.
	if task.UserID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the task creator can change its status"})
		return
	}

	newStatus := models.StatusCompleted

	if task.StatusID == models.StatusCompleted {
		newStatus = models.StatusPending
	}

	if err := db.DB.Model(&task).Update("status_id", newStatus).Error; err != nil {
		log.Printf("Failed to update task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":        task.ID,
		"status_id": newStatus,
	})
}
