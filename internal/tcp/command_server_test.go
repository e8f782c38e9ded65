package tcp

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/camfleet.net/internal/adapter/logging"
	"gitlab.com/camfleet.net/internal/domain"
	"gitlab.com/camfleet.net/internal/tcp/defs"
	"gitlab.com/camfleet.net/internal/tcp/framing"
)

type fakeCamera struct {
	result *domain.CaptureResult
	err    error
}

func (c *fakeCamera) Capture(ctx context.Context, timestamp string) (*domain.CaptureResult, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

type fakeImageStore struct {
	files     []string
	inventory *domain.ImageInventory
	deleted   int
	errors    []string
}

func (s *fakeImageStore) List() ([]string, error) { return s.files, nil }

func (s *fakeImageStore) Info() (*domain.ImageInventory, error) { return s.inventory, nil }

func (s *fakeImageStore) DeleteAll() (int, []string) { return s.deleted, s.errors }

type fakeObjectStore struct {
	credentialsErr error
	uploaded       int
	uploadErrors   []string
}

func (o *fakeObjectStore) CheckCredentials(ctx context.Context) error { return o.credentialsErr }

func (o *fakeObjectStore) UploadImages(ctx context.Context, files []string, bucket, prefix string) (int, []string, error) {
	return o.uploaded, o.uploadErrors, nil
}

func startCommandServer(t *testing.T, camera *fakeCamera, images *fakeImageStore, objects *fakeObjectStore) string {
	t.Helper()

	server := NewCommandServer("cam-01", camera, images, objects, logging.NewNopLogger(),
		WithListenAddress("127.0.0.1:0"),
		WithCommandIOTimeout(2*time.Second),
	)
	require.NoError(t, server.Start())
	t.Cleanup(func() { _ = server.Stop(context.Background()) })

	return server.Addr()
}

// exchange sends one message and reads the single reply.
func exchange(t *testing.T, address string, msg *defs.Message) defs.ResponseData {
	t.Helper()

	conn, err := net.Dial("tcp", address)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, framing.WriteMessage(conn, msg))

	reply, err := framing.Decode(conn)
	require.NoError(t, err)
	require.Equal(t, defs.KindResponse, reply.Kind)

	var response defs.ResponseData
	require.NoError(t, reply.DecodeData(&response))
	return response
}

func TestCommandServerCapture(t *testing.T) {
	camera := &fakeCamera{result: &domain.CaptureResult{
		Filename:  "cam-01_20260831_120000.jpg",
		Duration:  1.5,
		SizeBytes: 240000,
	}}
	address := startCommandServer(t, camera, &fakeImageStore{}, &fakeObjectStore{})

	msg, err := defs.NewMessage(defs.KindCapture, defs.CaptureData{Timestamp: "20260831_120000"})
	require.NoError(t, err)

	response := exchange(t, address, msg)
	assert.Equal(t, defs.StatusSuccess, response.Status)
	assert.Equal(t, "Captured cam-01_20260831_120000.jpg", response.Message)
	assert.Equal(t, "cam-01_20260831_120000.jpg", response.Data["filename"])
}

func TestCommandServerCaptureFailureIsDomainError(t *testing.T) {
	camera := &fakeCamera{err: errors.New("capture timeout after 15s")}
	address := startCommandServer(t, camera, &fakeImageStore{}, &fakeObjectStore{})

	msg, err := defs.NewMessage(defs.KindCapture, defs.CaptureData{Timestamp: "20260831_120000"})
	require.NoError(t, err)

	response := exchange(t, address, msg)
	assert.Equal(t, defs.StatusError, response.Status)
	assert.Equal(t, "capture timeout after 15s", response.Message)
}

// A REGISTER frame is a valid message but not a command this server
// executes: it decodes fine and yields an ERROR response.
func TestCommandServerOutOfContextKind(t *testing.T) {
	address := startCommandServer(t, &fakeCamera{}, &fakeImageStore{}, &fakeObjectStore{})

	msg, err := defs.NewMessage(defs.KindRegister, defs.RegisterData{Hostname: "cam-01", ClientPort: 8889})
	require.NoError(t, err)

	response := exchange(t, address, msg)
	assert.Equal(t, defs.StatusError, response.Status)
	assert.Equal(t, "Unknown command", response.Message)
}

func TestCommandServerListImages(t *testing.T) {
	images := &fakeImageStore{inventory: &domain.ImageInventory{
		Count:          2,
		TotalSizeBytes: 3 * 1024 * 1024,
		TotalSizeMB:    3.0,
		Files: []domain.ImageFileInfo{
			{Name: "a.jpg", Size: 1024 * 1024, SizeMB: 1.0},
			{Name: "b.jpg", Size: 2 * 1024 * 1024, SizeMB: 2.0},
		},
	}}
	address := startCommandServer(t, &fakeCamera{}, images, &fakeObjectStore{})

	msg, err := defs.NewMessage(defs.KindListImages, nil)
	require.NoError(t, err)

	response := exchange(t, address, msg)
	assert.Equal(t, defs.StatusSuccess, response.Status)
	assert.Equal(t, "Found 2 images", response.Message)
	assert.EqualValues(t, 2, response.Data["count"])
}

func TestCommandServerUploadS3(t *testing.T) {
	t.Run("missing bucket name", func(t *testing.T) {
		address := startCommandServer(t, &fakeCamera{}, &fakeImageStore{}, &fakeObjectStore{})

		msg, err := defs.NewMessage(defs.KindUploadS3, defs.UploadS3Data{})
		require.NoError(t, err)

		response := exchange(t, address, msg)
		assert.Equal(t, defs.StatusError, response.Status)
		assert.Equal(t, "No bucket name provided", response.Message)
	})

	t.Run("missing credentials is a domain error", func(t *testing.T) {
		objects := &fakeObjectStore{credentialsErr: errors.New("no credentials")}
		address := startCommandServer(t, &fakeCamera{}, &fakeImageStore{files: []string{"a.jpg"}}, objects)

		msg, err := defs.NewMessage(defs.KindUploadS3, defs.UploadS3Data{BucketName: "camera-captures-2026-0831-1200"})
		require.NoError(t, err)

		response := exchange(t, address, msg)
		assert.Equal(t, defs.StatusError, response.Status)
		assert.Equal(t, "No valid AWS credentials found", response.Message)
	})

	t.Run("nothing to upload", func(t *testing.T) {
		address := startCommandServer(t, &fakeCamera{}, &fakeImageStore{}, &fakeObjectStore{})

		msg, err := defs.NewMessage(defs.KindUploadS3, defs.UploadS3Data{BucketName: "camera-captures-2026-0831-1200"})
		require.NoError(t, err)

		response := exchange(t, address, msg)
		assert.Equal(t, defs.StatusSuccess, response.Status)
		assert.Equal(t, "No images to upload", response.Message)
	})

	t.Run("uploads with per-item errors", func(t *testing.T) {
		objects := &fakeObjectStore{uploaded: 2, uploadErrors: []string{"Failed to upload c.jpg: boom"}}
		images := &fakeImageStore{files: []string{"a.jpg", "b.jpg", "c.jpg"}}
		address := startCommandServer(t, &fakeCamera{}, images, objects)

		msg, err := defs.NewMessage(defs.KindUploadS3, defs.UploadS3Data{BucketName: "camera-captures-2026-0831-1200"})
		require.NoError(t, err)

		response := exchange(t, address, msg)
		assert.Equal(t, defs.StatusSuccess, response.Status)
		assert.Equal(t, "Uploaded 2 images", response.Message)
		assert.EqualValues(t, 3, response.Data["total_count"])
	})
}

func TestCommandServerDeleteImages(t *testing.T) {
	images := &fakeImageStore{deleted: 3}
	address := startCommandServer(t, &fakeCamera{}, images, &fakeObjectStore{})

	msg, err := defs.NewMessage(defs.KindDeleteImages, nil)
	require.NoError(t, err)

	response := exchange(t, address, msg)
	assert.Equal(t, defs.StatusSuccess, response.Status)
	assert.Equal(t, "Deleted 3 images", response.Message)
}

// An oversized frame is a framing violation: the server closes without
// replying.
func TestCommandServerDropsOversizedFrame(t *testing.T) {
	address := startCommandServer(t, &fakeCamera{}, &fakeImageStore{}, &fakeObjectStore{})

	conn, err := net.Dial("tcp", address)
	require.NoError(t, err)
	defer conn.Close()

	prefix := make([]byte, 4)
	binary.BigEndian.PutUint32(prefix, defs.MaxFrameSize+1)
	_, err = conn.Write(prefix)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = conn.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}
