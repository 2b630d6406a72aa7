package protocol

import (
	"crypto/ed25519"
	"crypto/rand"
	"net"

	"golang.org/x/crypto/ssh"
)

// GenerateHostKey produces an ed25519 host key for deployments that start
// without one configured on disk (the config file's net.tls section covers
// the Telnet-over-TLS certificate; the SSH host key is a separate,
// protocol-specific credential the original keeps alongside it).
func GenerateHostKey() (ssh.Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return ssh.NewSignerFromKey(priv)
}

// HandshakeSSH performs the SSH transport and userauth handshake on conn
// synchronously, before the connection is ever handed to the non-blocking
// tick loop. It accepts any password, mirroring the front end's policy of
// deferring real credential checks to the auth layer above this package
// (SPEC_FULL §5's explicit Non-goal on auth crypto). Session/channel
// framing is out of scope: every channel the client opens is rejected,
// and HandshakeSSH blocks until the connection closes or the client gives
// up trying to open one, then returns so the caller can tear the socket
// down. A real deployment supplies shell/exec channel handling from
// outside this package once that scope is built.
func HandshakeSSH(conn net.Conn, hostKey ssh.Signer) error {
	config := &ssh.ServerConfig{
		PasswordCallback: func(_ ssh.ConnMetadata, _ []byte) (*ssh.Permissions, error) {
			return &ssh.Permissions{}, nil
		},
	}
	config.AddHostKey(hostKey)

	sconn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		return err
	}
	defer sconn.Close()

	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		_ = newChan.Reject(ssh.Prohibited, "channels not supported")
	}
	return sconn.Wait()
}
