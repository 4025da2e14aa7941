package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"task-verification-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// TrackRegistration records a registration, upserting the User as active.
// The referral code is stored as-is; crediting the referrer is left to a
// future rewards pass and deliberately not computed here.
func (s *UserService) TrackRegistration(ctx context.Context, userAddress, referralCode string) (*models.User, error) {
	if strings.TrimSpace(userAddress) == "" {
		return nil, fmt.Errorf("%w: userAddress is required", ErrValidation)
	}

	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "user_address = ?", userAddress).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			UserAddress:      userAddress,
			ReferralCode:     referralCode,
			IsActive:         true,
			RegistrationDate: time.Now().UTC(),
			TasksCompleted:   models.DefaultTaskMap(),
		}
		if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("%w: failed to create user: %v", ErrPersistence, err)
		}
	case err != nil:
		return nil, fmt.Errorf("%w: failed to fetch user: %v", ErrPersistence, err)
	default:
		// Registered after an implicit submit-time upsert: activate and
		// attach the referral code without touching task history.
		user.IsActive = true
		if user.ReferralCode == "" {
			user.ReferralCode = referralCode
		}
		if err := s.DB.WithContext(ctx).Save(&user).Error; err != nil {
			return nil, fmt.Errorf("%w: failed to update user: %v", ErrPersistence, err)
		}
	}

	return &user, nil
}

// GetUser returns the user record with its claim history.
func (s *UserService) GetUser(ctx context.Context, userAddress string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Preload("DailyClaims").
		First(&user, "user_address = ?", userAddress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userAddress)
		}
		return nil, fmt.Errorf("%w: failed to fetch user: %v", ErrPersistence, err)
	}
	return &user, nil
}

// ClaimDaily appends one (date, amount) entry to the user's claim history.
// At most one claim per UTC day; the history itself is append-only.
func (s *UserService) ClaimDaily(ctx context.Context, userAddress string, amount float64) (*models.DailyClaim, error) {
	if strings.TrimSpace(userAddress) == "" {
		return nil, fmt.Errorf("%w: userAddress is required", ErrValidation)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	if _, err := s.GetUser(ctx, userAddress); err != nil {
		return nil, err
	}

	today := time.Now().UTC().Format("2006-01-02")

	var count int64
	err := s.DB.WithContext(ctx).Model(&models.DailyClaim{}).
		Where("user_address = ? AND claim_date = ?", userAddress, today).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to check claim history: %v", ErrPersistence, err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: daily reward already claimed today", ErrValidation)
	}

	claim := &models.DailyClaim{
		ID:          uuid.NewString(),
		UserAddress: userAddress,
		ClaimDate:   today,
		Amount:      amount,
	}
	if err := s.DB.WithContext(ctx).Create(claim).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to save claim: %v", ErrPersistence, err)
	}
	return claim, nil
}
