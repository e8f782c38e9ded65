package secondary

import "context"

// ObjectStore uploads image files to a remote object-storage service.
// Missing or invalid ambient credentials are a domain error surfaced
// through CheckCredentials, never a protocol fault.
type ObjectStore interface {
	CheckCredentials(ctx context.Context) error

	// UploadImages uploads the named files into bucket, prefixing keys
	// with hostnamePrefix. It returns the success count and per-item
	// error strings.
	UploadImages(ctx context.Context, files []string, bucket, hostnamePrefix string) (int, []string, error)
}
