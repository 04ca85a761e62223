//go:build e2e

package sftp_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tgedr/connectors/pkg/sftpx"
	"github.com/tgedr/connectors/pkg/slogx"
)

/*
 * Helpers for SFTP end-to-end tests against an atmoz/sftp container.
 * The container creates one user with a writable upload directory.
 */

const (
	sftpImage    = "atmoz/sftp:alpine"
	sftpUser     = "feeds"
	sftpPassword = "feeds-secret"
	uploadDir    = "/home/" + sftpUser + "/upload"
)

type sftpServer struct {
	container testcontainers.Container
	host      string
	port      int
}

// setupSFTPContainer starts the server and returns it with a cleanup func.
func setupSFTPContainer(t *testing.T) (*sftpServer, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        sftpImage,
		ExposedPorts: []string{"22/tcp"},
		Cmd:          []string{sftpUser + ":" + sftpPassword + ":::upload"},
		WaitingFor: wait.ForListeningPort("22/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "22")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	cleanup := func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return &sftpServer{container: container, host: host, port: mappedPort.Int()}, cleanup
}

// newUploader returns an uploader pointed at srv with the given password.
func newUploader(t *testing.T, srv *sftpServer, password string) *sftpx.Uploader {
	t.Helper()

	u, err := sftpx.NewUploader(srv.host, sftpUser, password)
	require.NoError(t, err)
	u.Port = srv.port
	u.DialTimeout = 10 * time.Second
	u.Logger = slogx.Discard()
	return u
}

// readRemote copies a file out of the container.
func readRemote(t *testing.T, srv *sftpServer, path string) []byte {
	t.Helper()

	rc, err := srv.container.CopyFileFromContainer(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func writeLocal(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}
