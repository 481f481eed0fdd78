package s3

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
)

// ThumbnailMirror copies remote thumbnail images into an S3 bucket so saved
// videos keep their artwork even if the provider's URL goes stale.
type ThumbnailMirror struct {
	bucket   string
	uploader *s3manager.Uploader
	http     *http.Client
}

func NewThumbnailMirror(region, bucket string) *ThumbnailMirror {
	sess := session.Must(session.NewSession(&aws.Config{
		Region: aws.String(region),
	}))
	return &ThumbnailMirror{
		bucket:   bucket,
		uploader: s3manager.NewUploader(sess),
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Mirror downloads srcURL and uploads it under a fresh key, returning the
// uploaded object's URL.
func (m *ThumbnailMirror) Mirror(ctx context.Context, srcURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := m.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch thumbnail: status %d", resp.StatusCode)
	}

	key := fmt.Sprintf("thumbnails/%s", uuid.New().String())
	result, err := m.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        resp.Body,
		ContentType: aws.String(resp.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", err
	}
	return result.Location, nil
}
