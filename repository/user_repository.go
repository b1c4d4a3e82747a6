package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "payment-service/common/errors"
	"payment-service/models"
)

// UserRepository serves the post-success side effects: subscription
// activation and invitation owner lookup for notifications.
type UserRepository interface {
	ActivateSubscription(ctx context.Context, userID uuid.UUID, tier string, expiresAt time.Time) error

	// FindInvitationOwner returns (nil, nil) when the invitation or its
	// owner does not exist.
	FindInvitationOwner(ctx context.Context, invitationID uuid.UUID) (*models.User, error)
}

type gormUserRepo struct {
	db *gorm.DB
}

func NewGormUserRepo(db *gorm.DB) UserRepository {
	return &gormUserRepo{db: db}
}

func (r *gormUserRepo) ActivateSubscription(ctx context.Context, userID uuid.UUID, tier string, expiresAt time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"subscription_tier":       tier,
			"subscription_expires_at": expiresAt,
			"updated_at":              time.Now(),
		}).Error
	if err != nil {
		return apperrors.Storage("failed to activate subscription", err)
	}
	return nil
}

func (r *gormUserRepo) FindInvitationOwner(ctx context.Context, invitationID uuid.UUID) (*models.User, error) {
	var invitation models.Invitation
	err := r.db.WithContext(ctx).Where("id = ?", invitationID).First(&invitation).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to load invitation", err)
	}

	var user models.User
	err = r.db.WithContext(ctx).Where("id = ?", invitation.UserID).First(&user).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to load invitation owner", err)
	}
	return &user, nil
}
