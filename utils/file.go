package utils

import (
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EnsureUploadDir creates the local uploads directory if it doesn't exist
func EnsureUploadDir() error {
	return os.MkdirAll(filepath.Join("uploads", "screenshots"), os.ModePerm)
}

// SaveFile saves the uploaded file to the given destination path
func SaveFile(fileHeader *multipart.FileHeader, destPath string) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, file)
	return err
}

// GetUploadPath returns the full path for a file inside the uploads directory
func GetUploadPath(filename string) string {
	return filepath.Join("uploads", filename)
}

// ScreenshotKey builds a unique blob key for an uploaded screenshot:
// nanosecond timestamp plus a random component, original extension preserved.
func ScreenshotKey(originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if ext == "" {
		ext = ".png"
	}
	return fmt.Sprintf("screenshots/%d-%06d%s", time.Now().UnixNano(), rand.Intn(1000000), ext)
}

// StoreScreenshot persists the uploaded screenshot under the given key and
// returns its public URL. Goes to R2 when the client is configured, local
// uploads dir (served via /uploads) otherwise.
func StoreScreenshot(fileHeader *multipart.FileHeader, key string) (string, error) {
	if R2Enabled() {
		return UploadFileToR2(fileHeader, key)
	}
	localPath := GetUploadPath(key)
	if err := SaveFile(fileHeader, localPath); err != nil {
		return "", err
	}
	return "/uploads/" + key, nil
}
