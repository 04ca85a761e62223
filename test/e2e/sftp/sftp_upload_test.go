//go:build e2e

package sftp_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tgedr/connectors/pkg/connector"
)

// TestUploadToServer uploads a file and reads it back from the container.
func TestUploadToServer(t *testing.T) {
	srv, cleanup := setupSFTPContainer(t)
	defer cleanup()

	content := bytes.Repeat([]byte("sku,qty,store\n4711,3,LIS01\n"), 50_000)
	local := writeLocal(t, "export.csv", content)

	res, err := newUploader(t, srv, sftpPassword).Upload(t.Context(), local, "upload/export.csv")
	require.NoError(t, err)
	require.Equal(t, int64(len(content)), res.Bytes)

	require.Equal(t, content, readRemote(t, srv, uploadDir+"/export.csv"))

	t.Logf("uploaded %d bytes", res.Bytes)
}

// TestUploadWithWrongPassword expects a connector error and no file.
func TestUploadWithWrongPassword(t *testing.T) {
	srv, cleanup := setupSFTPContainer(t)
	defer cleanup()

	local := writeLocal(t, "export.csv", []byte("x"))

	_, err := newUploader(t, srv, "not-the-password").Upload(t.Context(), local, "upload/export.csv")
	require.Error(t, err)

	var ce *connector.Error
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "sftp", ce.Connector)
}

// TestUploadOutsideWritableDirectory fails on the remote side, since the
// chroot root belongs to root.
func TestUploadOutsideWritableDirectory(t *testing.T) {
	srv, cleanup := setupSFTPContainer(t)
	defer cleanup()

	local := writeLocal(t, "export.csv", []byte("x"))

	_, err := newUploader(t, srv, sftpPassword).Upload(t.Context(), local, "/export.csv")
	require.ErrorContains(t, err, "failed to create remote file")
}
