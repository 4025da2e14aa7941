// Package client is a Go client for the task verification service. It mirrors
// the browser widget's behavior: advisory screenshot validation before
// submission and a periodic status poller. The server-side checks remain
// authoritative.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

// MaxScreenshotSize matches the server-side upload cap.
const MaxScreenshotSize = 5 * 1024 * 1024

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ValidateScreenshot is the advisory pre-submission check: the declared MIME
// type must indicate an image and the size must fit the cap. A caller should
// surface the error and withhold the submit action.
func ValidateScreenshot(filename, contentType string, size int64) error {
	if size <= 0 {
		return fmt.Errorf("no screenshot selected")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("%s is not an image", filename)
	}
	if size > MaxScreenshotSize {
		return fmt.Errorf("screenshot too large (max 5MB)")
	}
	return nil
}

// SubmitProof validates the screenshot and posts it as a multipart submission.
// Returns the verification ID issued by the service.
func (c *Client) SubmitProof(ctx context.Context, task, userAddress, filename, contentType string, size int64, screenshot io.Reader) (string, error) {
	if err := ValidateScreenshot(filename, contentType, size); err != nil {
		return "", err
	}

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="screenshot"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, screenshot); err != nil {
		return "", fmt.Errorf("failed to read screenshot: %w", err)
	}

	_ = writer.WriteField("task", task)
	_ = writer.WriteField("userAddress", userAddress)
	_ = writer.WriteField("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))

	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/submit-verification", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call verification service: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success        bool   `json:"success"`
		VerificationID string `json:"verificationId"`
		Error          string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if !result.Success {
		if result.Error != "" {
			return "", fmt.Errorf("submission rejected: %s", result.Error)
		}
		return "", fmt.Errorf("submission rejected with status %d", resp.StatusCode)
	}
	return result.VerificationID, nil
}

// Status fetches the task → status map for a user.
func (c *Client) Status(ctx context.Context, userAddress string) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/verification-status/"+userAddress, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call verification service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("verification service returned status %d: %s", resp.StatusCode, string(body))
	}

	var statuses map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&statuses); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}
	return statuses, nil
}

// Register reports a registration with an optional referral code.
func (c *Client) Register(ctx context.Context, userAddress, referralCode string) error {
	payload, err := json.Marshal(map[string]string{
		"userAddress":  userAddress,
		"referralCode": referralCode,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/track-registration", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call verification service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("registration failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
