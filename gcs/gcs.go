package gcs

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Client is non-nil only when GCS mirroring is configured.
var Client *storage.Client

var bucket string

// InitGCS connects to Google Cloud Storage when GCS_BUCKET is set.
// Uploads stay purely local otherwise.
func InitGCS() {
	bucket = os.Getenv("GCS_BUCKET")
	if bucket == "" {
		log.Println("GCS_BUCKET not set, image mirroring disabled")
		return
	}

	ctx := context.Background()
	var err error
	Client, err = storage.NewClient(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to Google Cloud Storage: %v", err)
	}

	if _, err = Client.Bucket(bucket).Attrs(ctx); err != nil {
		log.Fatalf("Cannot access bucket %s: %v", bucket, err)
	}
	log.Printf("Bucket %s ready", bucket)
}

// Close releases the storage client.
func Close() {
	if Client != nil {
		Client.Close()
	}
}

// MirrorUpload copies a locally stored upload into the configured
// bucket. Failures are logged and swallowed; the local file remains
// the source of truth.
func MirrorUpload(localPath, contentType, folder string) {
	if Client == nil {
		return
	}

	file, err := os.Open(localPath)
	if err != nil {
		log.Printf("GCS mirror: cannot open %s: %v", localPath, err)
		return
	}
	defer file.Close()

	objectName := fmt.Sprintf("%s/%s_%d%s", folder, uuid.NewString(), time.Now().UnixNano(), filepath.Ext(localPath))

	ctx := context.Background()
	writer := Client.Bucket(bucket).Object(objectName).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, file); err != nil {
		log.Printf("GCS mirror: copy failed for %s: %v", objectName, err)
		return
	}
	if err := writer.Close(); err != nil {
		log.Printf("GCS mirror: close failed for %s: %v", objectName, err)
		return
	}

	log.Printf("Mirrored upload to https://storage.googleapis.com/%s/%s", bucket, objectName)
}

