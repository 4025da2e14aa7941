package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"task-verification-service/models"
	"task-verification-service/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepOrphanScreenshots(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, utils.EnsureUploadDir())

	dir := utils.GetUploadPath("screenshots")
	orphan := filepath.Join(dir, "100-000001.png")
	referenced := filepath.Join(dir, "200-000002.png")
	fresh := filepath.Join(dir, "300-000003.png")
	for _, path := range []string{orphan, referenced, fresh} {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}

	// age the first two past the sweep cutoff; the third stays young
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(orphan, old, old))
	require.NoError(t, os.Chtimes(referenced, old, old))

	require.NoError(t, s.DB.Create(&models.Verification{
		ID:            "VER-1-sweep",
		UserAddress:   "0xABC",
		Task:          "twitter",
		ScreenshotURL: "/uploads/screenshots/200-000002.png",
		Status:        models.StatusPending,
		SubmittedAt:   time.Now().UTC(),
	}).Error)

	removed, err := s.sweepOrphanScreenshots(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(orphan)
	assert.True(t, os.IsNotExist(err), "aged unreferenced file must be removed")
	_, err = os.Stat(referenced)
	assert.NoError(t, err, "referenced file must survive")
	_, err = os.Stat(fresh)
	assert.NoError(t, err, "file younger than maxAge must survive")
}

func TestSweepWithoutUploadDirIsNoop(t *testing.T) {
	s := newTestService(t)

	removed, err := s.sweepOrphanScreenshots(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
