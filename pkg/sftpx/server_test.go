package sftpx

import (
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// testServer is an in-process SSH server offering only the sftp subsystem,
// backed by the local filesystem.
type testServer struct {
	addr *net.TCPAddr

	mu     sync.Mutex
	logins int
}

func newTestServer(t *testing.T, user, password string) *testServer {
	t.Helper()

	_, hostKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(hostKey)
	require.NoError(t, err)

	ts := &testServer{}
	cfg := &ssh.ServerConfig{
		PasswordCallback: func(md ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			ts.mu.Lock()
			ts.logins++
			ts.mu.Unlock()
			if md.User() == user && string(pass) == password {
				return nil, nil
			}
			return nil, ssh.ErrNoAuth
		},
	}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	ts.addr = ln.Addr().(*net.TCPAddr)

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go ts.serve(conn, cfg)
		}
	}()

	return ts
}

func (ts *testServer) serve(conn net.Conn, cfg *ssh.ServerConfig) {
	defer conn.Close()

	_, chans, reqs, err := ssh.NewServerConn(conn, cfg)
	if err != nil {
		return
	}
	go ssh.DiscardRequests(reqs)

	for nc := range chans {
		if nc.ChannelType() != "session" {
			_ = nc.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}
		ch, in, err := nc.Accept()
		if err != nil {
			return
		}
		go func() {
			for req := range in {
				// Payload is a length-prefixed subsystem name.
				ok := req.Type == "subsystem" && len(req.Payload) > 4 && string(req.Payload[4:]) == "sftp"
				_ = req.Reply(ok, nil)
			}
		}()

		srv, err := sftp.NewServer(ch)
		if err != nil {
			ch.Close()
			continue
		}
		// pkg/sftp >= v1.13.6 reports a clean client disconnect as nil.
		if err := srv.Serve(); err == nil || err == io.EOF {
			srv.Close()
		}
	}
}

func (ts *testServer) loginAttempts() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.logins
}
