// Package membership is the authorization core: it owns the
// invite/accept lifecycle and answers every "may user U act on subject
// S" question. All functions take the acting user's id explicitly;
// nothing here reads ambient request state.
package membership

import (
	"errors"
	"strings"

	"github.com/studyhub-dev/studyhub/internal/models"
	"gorm.io/gorm"
)

// CreateSubject writes the subject and the owner's accepted membership
// in one transaction. Ownership lives only in that membership row.
// A subject name the owner already uses, compared case-insensitively,
// is rejected as a duplicate.
func CreateSubject(gdb *gorm.DB, ownerID uint, name string, colorID *uint) (*models.Subject, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return nil, ErrValidation
	}

	subject := models.Subject{Name: name, ColorID: colorID}

	err := gdb.Transaction(func(tx *gorm.DB) error {
		var existing models.Subject

		err := tx.Joins("JOIN subject_members ON subject_members.subject_id = subjects.id").
			Where("subject_members.user_id = ? AND subject_members.is_owner = ?", ownerID, true).
			Where("LOWER(subjects.name) = LOWER(?)", name).
			First(&existing).Error

		if err == nil {
			return ErrDuplicateSubject
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&subject).Error; err != nil {
			return err
		}

		owner := models.SubjectMember{
			UserID:    ownerID,
			SubjectID: subject.ID,
			Status:    models.MemberAccepted,
			IsOwner:   true,
		}

		return tx.Create(&owner).Error
	})

	if err != nil {
		return nil, err
	}

	return &subject, nil
}

// Invite creates a pending membership for the user named by username.
// Any accepted member of the subject may invite, not just the owner.
// An existing row for the pair, pending or accepted, blocks the invite.
func Invite(gdb *gorm.DB, inviterID uint, subjectID uint, username string) (*models.SubjectMember, error) {
	var subject models.Subject

	if err := gdb.First(&subject, subjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	authorized, err := AuthorizeView(gdb, inviterID, subjectID)

	if err != nil {
		return nil, err
	}

	if !authorized {
		return nil, ErrPermissionDenied
	}

	var target models.User

	if err := gdb.Where("username = ?", username).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var existing models.SubjectMember

	err = gdb.Where("user_id = ? AND subject_id = ?", target.ID, subjectID).First(&existing).Error

	if err == nil {
		return nil, ErrAlreadyMember
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	invite := models.SubjectMember{
		UserID:    target.ID,
		SubjectID: subjectID,
		Status:    models.MemberPending,
	}

	if err := gdb.Create(&invite).Error; err != nil {
		// Racing invites land on the unique (user, subject) index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyMember
		}
		return nil, err
	}

	return &invite, nil
}

// Accept transitions a pending invite to accepted. Only the invitee may
// accept; accepting an already-accepted membership is a no-op.
func Accept(gdb *gorm.DB, userID uint, membershipID uint) (*models.SubjectMember, error) {
	var member models.SubjectMember

	if err := gdb.First(&member, membershipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if member.UserID != userID {
		return nil, ErrPermissionDenied
	}

	if member.Status == models.MemberAccepted {
		return &member, nil
	}

	if err := gdb.Model(&member).Update("status", models.MemberAccepted).Error; err != nil {
		return nil, err
	}

	return &member, nil
}

// AuthorizeView is the single source of truth for subject access: true
// iff the user holds an accepted membership. The owner always does, by
// construction. A store failure is an error, not a denial.
func AuthorizeView(gdb *gorm.DB, userID uint, subjectID uint) (bool, error) {
	var count int64

	err := gdb.Model(&models.SubjectMember{}).
		Where("user_id = ? AND subject_id = ? AND status = ?", userID, subjectID, models.MemberAccepted).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// IsOwner reports whether the user holds the owning membership.
func IsOwner(gdb *gorm.DB, userID uint, subjectID uint) (bool, error) {
	var count int64

	err := gdb.Model(&models.SubjectMember{}).
		Where("user_id = ? AND subject_id = ? AND is_owner = ?", userID, subjectID, true).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// VisibleSubjects lists every subject the user may view, owned and
// joined alike. One membership row per subject means no duplicates.
func VisibleSubjects(gdb *gorm.DB, userID uint) ([]models.Subject, error) {
	var subjects []models.Subject

	err := gdb.Preload("Color").
		Joins("JOIN subject_members ON subject_members.subject_id = subjects.id").
		Where("subject_members.user_id = ? AND subject_members.status = ?", userID, models.MemberAccepted).
		Order("subjects.id ASC").
		Find(&subjects).Error

	if err != nil {
		return nil, err
	}

	return subjects, nil
}

// PendingInvites lists the user's open invitations for the dashboard.
func PendingInvites(gdb *gorm.DB, userID uint) ([]models.SubjectMember, error) {
	var invites []models.SubjectMember

	err := gdb.Preload("Subject").
		Where("user_id = ? AND status = ?", userID, models.MemberPending).
		Order("id ASC").
		Find(&invites).Error

	if err != nil {
		return nil, err
	}

	return invites, nil
}

// DeleteSubject removes the subject and every task, tag link, study
// session, message and membership under it in one transaction. Only the
// owner may delete.
func DeleteSubject(gdb *gorm.DB, requesterID uint, subjectID uint) error {
	var subject models.Subject

	if err := gdb.First(&subject, subjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	owner, err := IsOwner(gdb, requesterID, subjectID)

	if err != nil {
		return err
	}

	if !owner {
		return ErrPermissionDenied
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM task_tags WHERE task_id IN (SELECT id FROM tasks WHERE subject_id = ?)",
			subject.ID,
		).Error; err != nil {
			return err
		}

		if err := tx.Where("subject_id = ?", subject.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("subject_id = ?", subject.ID).Delete(&models.StudySession{}).Error; err != nil {
			return err
		}

		if err := tx.Where("subject_id = ?", subject.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}

		if err := tx.Where("subject_id = ?", subject.ID).Delete(&models.SubjectMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&subject).Error
	})
}
