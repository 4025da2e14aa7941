package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"task-verification-service/models"
	"task-verification-service/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxScreenshotSize caps uploads at 5 MiB. The client performs the same check
// before submitting; this one is authoritative.
const MaxScreenshotSize = 5 * 1024 * 1024

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

type VerificationService struct {
	DB    *gorm.DB
	Cache *StatusCache // nil disables status caching
}

func NewVerificationService(db *gorm.DB, cache *StatusCache) *VerificationService {
	return &VerificationService{DB: db, Cache: cache}
}

// generateVerificationID builds an ID unique under concurrent submission:
// nanosecond timestamp plus a random uuid fragment.
func generateVerificationID() string {
	return fmt.Sprintf("VER-%d-%s", time.Now().UnixNano(), strings.SplitN(uuid.NewString(), "-", 2)[0])
}

// validateScreenshot enforces the upload constraints: declared content type or
// extension must name a jpeg/png/gif, and the byte size must fit the cap.
func validateScreenshot(fileHeader *multipart.FileHeader) error {
	if fileHeader == nil || fileHeader.Size == 0 {
		return fmt.Errorf("%w: screenshot file is required", ErrValidation)
	}
	if fileHeader.Size > MaxScreenshotSize {
		return fmt.Errorf("%w: screenshot too large (max 5MB)", ErrValidation)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "" && contentType != "application/octet-stream" {
		if !allowedContentTypes[strings.ToLower(contentType)] {
			return fmt.Errorf("%w: screenshot must be a JPEG, PNG or GIF image", ErrValidation)
		}
		return nil
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(fileHeader.Filename))] {
		return fmt.Errorf("%w: screenshot must be a JPEG, PNG or GIF image", ErrValidation)
	}
	return nil
}

// Submit stores the screenshot, creates a pending Verification, and upserts
// the submitting user. Returns the created record.
func (s *VerificationService) Submit(ctx context.Context, task, userAddress string, screenshot *multipart.FileHeader) (*models.Verification, error) {
	if strings.TrimSpace(task) == "" {
		return nil, fmt.Errorf("%w: task is required", ErrValidation)
	}
	if strings.TrimSpace(userAddress) == "" {
		return nil, fmt.Errorf("%w: userAddress is required", ErrValidation)
	}
	if err := validateScreenshot(screenshot); err != nil {
		return nil, err
	}

	task = models.NormalizeTask(task)

	key := utils.ScreenshotKey(screenshot.Filename)
	screenshotURL, err := utils.StoreScreenshot(screenshot, key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to store screenshot: %v", ErrPersistence, err)
	}

	verification := &models.Verification{
		ID:            generateVerificationID(),
		UserAddress:   userAddress,
		Task:          task,
		ScreenshotURL: screenshotURL,
		Status:        models.StatusPending,
		SubmittedAt:   time.Now().UTC(),
	}

	if err := s.DB.WithContext(ctx).Create(verification).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to save verification: %v", ErrPersistence, err)
	}

	// Implicit upsert: a submission may arrive before registration. The
	// completion flag for the task stays false until an approve.
	if err := s.ensureUser(ctx, userAddress); err != nil {
		return nil, err
	}

	s.Cache.Invalidate(ctx, userAddress)
	return verification, nil
}

// StatusByUser derives the task → status map from the verification log: for
// each task, the status of the most recently submitted verification. Tasks
// with no submissions are omitted on purpose, never defaulted to pending.
func (s *VerificationService) StatusByUser(ctx context.Context, userAddress string) (map[string]string, error) {
	if cached, ok := s.Cache.Get(ctx, userAddress); ok {
		return cached, nil
	}

	var verifications []models.Verification
	err := s.DB.WithContext(ctx).
		Where("user_address = ?", userAddress).
		Order("submitted_at ASC, id ASC").
		Find(&verifications).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch verifications: %v", ErrPersistence, err)
	}

	// Ascending order, so the latest submission per task wins.
	statuses := make(map[string]string)
	for _, v := range verifications {
		statuses[v.Task] = v.Status
	}

	s.Cache.Set(ctx, userAddress, statuses)
	return statuses, nil
}

// ListPending returns the FIFO review queue: pending records oldest-first.
func (s *VerificationService) ListPending(ctx context.Context) ([]models.Verification, error) {
	var pending []models.Verification
	err := s.DB.WithContext(ctx).
		Where("status = ?", models.StatusPending).
		Order("submitted_at ASC, id ASC").
		Find(&pending).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch pending verifications: %v", ErrPersistence, err)
	}
	return pending, nil
}

// Review applies an admin decision. Re-review of an already-reviewed record is
// permitted and overwrites the previous outcome, last write wins. An approve
// additionally flips the user's completion flag for the record's task; a
// reject never touches it.
func (s *VerificationService) Review(ctx context.Context, id, newStatus, reviewedBy, reviewNotes string) (*models.Verification, error) {
	if !models.ValidStatusTransition(newStatus) {
		return nil, fmt.Errorf("%w: status must be %q or %q", ErrValidation, models.StatusVerified, models.StatusRejected)
	}

	var verification models.Verification
	if err := s.DB.WithContext(ctx).First(&verification, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: verification %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to fetch verification: %v", ErrPersistence, err)
	}

	now := time.Now().UTC()
	verification.Status = newStatus
	verification.ReviewedBy = reviewedBy
	verification.ReviewNotes = reviewNotes
	verification.ReviewedAt = &now

	if err := s.DB.WithContext(ctx).Save(&verification).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to update verification: %v", ErrPersistence, err)
	}

	if newStatus == models.StatusVerified {
		if err := s.markTaskCompleted(ctx, verification.UserAddress, verification.Task); err != nil {
			return nil, err
		}
	}

	s.Cache.Invalidate(ctx, verification.UserAddress)
	return &verification, nil
}

// ensureUser creates a User record for the address if none exists yet.
func (s *VerificationService) ensureUser(ctx context.Context, userAddress string) error {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "user_address = ?", userAddress).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: failed to fetch user: %v", ErrPersistence, err)
	}

	user = models.User{
		UserAddress:      userAddress,
		IsActive:         true,
		RegistrationDate: time.Now().UTC(),
		TasksCompleted:   models.DefaultTaskMap(),
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return fmt.Errorf("%w: failed to create user: %v", ErrPersistence, err)
	}
	return nil
}

// markTaskCompleted flips tasksCompleted[task] for the user, creating the
// record first if the submission predates registration.
func (s *VerificationService) markTaskCompleted(ctx context.Context, userAddress, task string) error {
	if err := s.ensureUser(ctx, userAddress); err != nil {
		return err
	}

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "user_address = ?", userAddress).Error; err != nil {
		return fmt.Errorf("%w: failed to fetch user: %v", ErrPersistence, err)
	}

	if user.TasksCompleted == nil {
		user.TasksCompleted = models.DefaultTaskMap()
	}
	user.TasksCompleted[task] = true

	if err := s.DB.WithContext(ctx).Save(&user).Error; err != nil {
		return fmt.Errorf("%w: failed to update user tasks: %v", ErrPersistence, err)
	}
	return nil
}
