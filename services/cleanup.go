// services/cleanup.go
package services

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"task-verification-service/models"
	"task-verification-service/utils"

	"github.com/go-co-op/gocron/v2"
)

// StartCleanupScheduler sweeps locally stored screenshots that no
// verification references. Orphans appear when a submit stores the blob but
// the record write fails; they are removed once older than maxAge.
func (s *VerificationService) StartCleanupScheduler(maxAge time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			removed, err := s.sweepOrphanScreenshots(maxAge)
			if err != nil {
				log.Printf("[Cleanup] sweep error: %v", err)
				return
			}
			if removed > 0 {
				log.Printf("[Cleanup] Removed %d orphaned screenshot(s)", removed)
			}
		}),
	)
}

func (s *VerificationService) sweepOrphanScreenshots(maxAge time.Duration) (int, error) {
	dir := utils.GetUploadPath("screenshots")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		url := "/uploads/screenshots/" + entry.Name()
		var count int64
		if err := s.DB.Model(&models.Verification{}).
			Where("screenshot_url = ?", url).
			Count(&count).Error; err != nil {
			log.Printf("[Cleanup] DB error for %s: %v", entry.Name(), err)
			continue
		}
		if count > 0 {
			continue
		}

		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			log.Printf("[Cleanup] failed to remove %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	return removed, nil
}
