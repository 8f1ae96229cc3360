package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/studyhub-dev/studyhub/db"
	"github.com/studyhub-dev/studyhub/internal/membership"
	"github.com/studyhub-dev/studyhub/internal/models"
	"github.com/studyhub-dev/studyhub/internal/utils"
	"gorm.io/gorm"
)

type CreateSubjectRequest struct {
	Name    string `json:"name" binding:"required"`
	ColorID *uint  `json:"color_id"`
}

type InviteUserRequest struct {
	Username string `json:"username" binding:"required"`
}

type SubjectSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	ColorID     *uint  `json:"color_id"`
	ColorHex    string `json:"color_hex,omitempty"`
	IsOwner     bool   `json:"is_owner"`
	ActiveTasks int64  `json:"active_tasks"`
}

type InviteSummary struct {
	MembershipID uint   `json:"membership_id"`
	SubjectID    uint   `json:"subject_id"`
	SubjectName  string `json:"subject_name"`
}

type DashboardResponse struct {
	Username string           `json:"username"`
	Subjects []SubjectSummary `json:"subjects"`
	Invites  []InviteSummary  `json:"invites"`
}

type SubjectDetailResponse struct {
	ID       uint             `json:"id"`
	Name     string           `json:"name"`
	ColorID  *uint            `json:"color_id"`
	Tasks    []TaskSummary    `json:"tasks"`
	Messages []MessageSummary `json:"messages"`
}

func paramID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}

	return uint(id), true
}

func Dashboard(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	subjects, err := membership.VisibleSubjects(db.DB, currentUser.ID)

	if err != nil {
		log.Printf("Failed to list subjects: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subjects"})
		return
	}

	summaries := []SubjectSummary{}

	for _, subject := range subjects {
		var activeCount int64

		err := db.DB.Model(&models.Task{}).
			Where("subject_id = ? AND status_id <> ?", subject.ID, models.StatusCompleted).
			Count(&activeCount).Error

		if err != nil {
			log.Printf("Failed to count tasks for subject %d: %v", subject.ID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subjects"})
			return
		}

		isOwner, err := membership.IsOwner(db.DB, currentUser.ID, subject.ID)

		if err != nil {
			log.Printf("Failed to check ownership of subject %d: %v", subject.ID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subjects"})
			return
		}

		summary := SubjectSummary{
			ID:          subject.ID,
			Name:        subject.Name,
			ColorID:     subject.ColorID,
			IsOwner:     isOwner,
			ActiveTasks: activeCount,
		}

		if subject.Color != nil {
			summary.ColorHex = subject.Color.HexCode
		}

		summaries = append(summaries, summary)
	}

	invites, err := membership.PendingInvites(db.DB, currentUser.ID)

	if err != nil {
		log.Printf("Failed to list invites: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invites"})
		return
	}

	inviteSummaries := []InviteSummary{}

	for _, invite := range invites {
		inviteSummaries = append(inviteSummaries, InviteSummary{
			MembershipID: invite.ID,
			SubjectID:    invite.SubjectID,
			SubjectName:  invite.Subject.Name,
		})
	}

	ctx.JSON(http.StatusOK, DashboardResponse{
		Username: currentUser.Username,
		Subjects: summaries,
		Invites:  inviteSummaries,
	})
}

func CreateSubject(ctx *gin.Context) {
	var body CreateSubjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	subject, err := membership.CreateSubject(db.DB, userID, body.Name, body.ColorID)

	if err != nil {
		switch {
		case errors.Is(err, membership.ErrDuplicateSubject):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Subject already exists"})
		case errors.Is(err, membership.ErrValidation):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Subject name is required"})
		default:
			log.Printf("Failed to create subject: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subject"})
		}
		return
	}

	ctx.JSON(http.StatusCreated, SubjectSummary{
		ID:      subject.ID,
		Name:    subject.Name,
		ColorID: subject.ColorID,
		IsOwner: true,
	})
}

func ViewSubject(ctx *gin.Context) {
	subjectID, ok := paramID(ctx, "subject_id")

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var subject models.Subject

	if err := db.DB.First(&subject, subjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		} else {
			log.Printf("Failed to fetch subject: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subject"})
		}
		return
	}

	authorized, err := membership.AuthorizeView(db.DB, userID, subjectID)

	if err != nil {
		log.Printf("Failed to check subject access: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subject"})
		return
	}

	if !authorized {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	tasks, err := orderedTasks(subjectID)

	if err != nil {
		log.Printf("Failed to list tasks: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	messages, err := subjectMessages(subjectID)

	if err != nil {
		log.Printf("Failed to list messages: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve messages"})
		return
	}

	ctx.JSON(http.StatusOK, SubjectDetailResponse{
		ID:       subject.ID,
		Name:     subject.Name,
		ColorID:  subject.ColorID,
		Tasks:    tasks,
		Messages: messages,
	})
}

func DeleteSubject(ctx *gin.Context) {
	subjectID, ok := paramID(ctx, "subject_id")

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := membership.DeleteSubject(db.DB, userID, subjectID); err != nil {
		switch {
		case errors.Is(err, membership.ErrNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		case errors.Is(err, membership.ErrPermissionDenied):
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can delete a subject"})
		default:
			log.Printf("Failed to delete subject: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subject"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Subject deleted"})
}

func InviteUser(ctx *gin.Context) {
	subjectID, ok := paramID(ctx, "subject_id")

	if !ok {
		return
	}

	var body InviteUserRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	invite, err := membership.Invite(db.DB, userID, subjectID, body.Username)

	if err != nil {
		switch {
		case errors.Is(err, membership.ErrNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Subject or user not found"})
		case errors.Is(err, membership.ErrPermissionDenied):
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		case errors.Is(err, membership.ErrAlreadyMember):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "User already a member or invited"})
		default:
			log.Printf("Failed to invite user: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invite user"})
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"membership_id": invite.ID,
		"subject_id":    invite.SubjectID,
		"status":        invite.Status,
	})
}

func AcceptInvite(ctx *gin.Context) {
	membershipID, ok := paramID(ctx, "membership_id")

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	member, err := membership.Accept(db.DB, userID, membershipID)

	if err != nil {
		switch {
		case errors.Is(err, membership.ErrNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Invite not found"})
		case errors.Is(err, membership.ErrPermissionDenied):
			ctx.JSON(http.StatusForbidden, gin.H{"error": "This invite belongs to another user"})
		default:
			log.Printf("Failed to accept invite: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept invite"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"membership_id": member.ID,
		"subject_id":    member.SubjectID,
		"status":        member.Status,
	})
}
