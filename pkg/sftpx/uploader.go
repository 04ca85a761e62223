// Package sftpx uploads local files to an SFTP server using password
// authentication.
package sftpx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/tgedr/connectors/pkg/connector"
)

const (
	connectorName = "sftp"

	DefaultPort        = 22
	DefaultDialTimeout = 30 * time.Second

	// Databricks exposes DBFS paths under /mnt to Spark and under
	// /dbfs/mnt to local file IO.
	sparkMountPrefix = "/mnt"
	localFusePrefix  = "/dbfs"
)

// Uploader holds the credentials of one SFTP account. Each Upload opens and
// closes its own connection.
type Uploader struct {
	Port        int
	DialTimeout time.Duration
	Logger      *slog.Logger

	host     string
	username string
	password string
}

// UploadResult describes a finished upload.
type UploadResult struct {
	// LocalPath is the file actually read, after any /dbfs rewrite.
	LocalPath  string
	RemotePath string
	Bytes      int64
}

// NewUploader returns an uploader for host. The password may be empty.
func NewUploader(host, username, password string) (*Uploader, error) {
	if err := connector.Required("host", host); err != nil {
		return nil, err
	}
	if err := connector.Required("username", username); err != nil {
		return nil, err
	}

	return &Uploader{
		Port:        DefaultPort,
		DialTimeout: DefaultDialTimeout,
		Logger:      slog.Default(),
		host:        host,
		username:    username,
		password:    password,
	}, nil
}

// Upload copies localPath to remotePath on the server, replacing any file
// already there.
//
// A localPath under /mnt that does not exist locally is retried under
// /dbfs, where Databricks mounts the same storage for non-Spark code.
func (u *Uploader) Upload(ctx context.Context, localPath, remotePath string) (*UploadResult, error) {
	const op = "upload"
	logger := u.logger().With("op", op, "remote_path", remotePath)

	if err := connector.Required("local_path", localPath); err != nil {
		return nil, connector.Reject(logger, err)
	}
	if err := connector.Required("remote_path", remotePath); err != nil {
		return nil, connector.Reject(logger, err)
	}

	resolved := ResolveLocalPath(localPath, fileExists)
	if resolved != localPath {
		logger.Info("local path not found, using dbfs mount", "local_path", localPath, "resolved", resolved)
	}
	logger = logger.With("local_path", resolved)

	src, err := os.Open(resolved)
	if err != nil {
		return nil, connector.Fail(logger, connector.Wrap(connectorName, op, fmt.Errorf("failed to open local file: %w", err)))
	}
	defer src.Close()

	logger.Debug("connecting")
	client, err := u.dial(ctx)
	if err != nil {
		return nil, connector.Fail(logger, connector.Wrap(connectorName, op, err))
	}
	defer client.Close()

	// Cancelling ctx tears the connection down mid-transfer.
	stop := context.AfterFunc(ctx, func() { client.Close() })
	defer stop()

	sc, err := sftp.NewClient(client)
	if err != nil {
		return nil, connector.Fail(logger, connector.Wrap(connectorName, op, fmt.Errorf("failed to start sftp session: %w", err)))
	}
	defer sc.Close()

	dst, err := sc.Create(remotePath)
	if err != nil {
		return nil, connector.Fail(logger, connector.Wrap(connectorName, op, fmt.Errorf("failed to create remote file: %w", err)))
	}

	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, connector.Fail(logger, connector.Wrap(connectorName, op, fmt.Errorf("failed to copy after %d bytes: %w", n, err)))
	}

	logger.Info("file uploaded", "bytes", n)
	return &UploadResult{LocalPath: resolved, RemotePath: remotePath, Bytes: n}, nil
}

// dial opens an SSH connection honouring both ctx and DialTimeout. Host
// keys are not verified.
func (u *Uploader) dial(ctx context.Context) (*ssh.Client, error) {
	port := u.Port
	if port == 0 {
		port = DefaultPort
	}
	addr := net.JoinHostPort(u.host, strconv.Itoa(port))

	cfg := &ssh.ClientConfig{
		User:            u.username,
		Auth:            []ssh.AuthMethod{ssh.Password(u.password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         u.DialTimeout,
	}

	d := net.Dialer{Timeout: u.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	// Abort the handshake if ctx ends first.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		conn.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("ssh handshake with %s: %w", addr, ctxErr)
		}
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	return ssh.NewClient(c, chans, reqs), nil
}

// ResolveLocalPath returns path, or path under /dbfs when path is missing
// and lives under /mnt.
func ResolveLocalPath(path string, exists func(string) bool) string {
	if exists(path) || !strings.HasPrefix(path, sparkMountPrefix) {
		return path
	}
	return localFusePrefix + path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (u *Uploader) logger() *slog.Logger {
	l := u.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With("connector", connectorName, "host", u.host, "username", u.username)
}
