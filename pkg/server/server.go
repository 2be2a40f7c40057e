package server

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/creack/pty"
	"github.com/gliderlabs/ssh"
	"github.com/qnkhuat/blockterm/pkg/store"
	"github.com/rs/zerolog/log"
	gossh "golang.org/x/crypto/ssh"
)

const (
	ServerIdleTimeout = 5 * time.Minute
	shutdownTimeout   = 5 * time.Second
)

// Server hosts one single-player client per SSH session, each running in its
// own pseudo-terminal, plus an HTTP status endpoint.
type Server struct {
	*ssh.Server

	// ClientBinary is started for every session with ClientArgs followed by
	// the session's save slot.
	ClientBinary string
	ClientArgs   []string
	HTTPAddress  string

	Sessions *Registry
	Store    store.Store

	http *http.Server
}

// HostSigner loads the host key in file, or generates an ed25519 key when
// file is empty.
func HostSigner(file string) (gossh.Signer, error) {
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read host key: %w", err)
		}

		signer, err := gossh.ParsePrivateKey(b)
		if err != nil {
			return nil, fmt.Errorf("failed to parse host key %s: %w", file, err)
		}
		return signer, nil
	}

	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	return gossh.NewSignerFromKey(key)
}

func NewServer(sshAddress string, signer gossh.Signer, st store.Store) *Server {
	s := &Server{
		Sessions: NewRegistry(),
		Store:    st,
	}

	s.Server = &ssh.Server{
		Addr:        sshAddress,
		IdleTimeout: ServerIdleTimeout,
		Handler:     s.sshHandle,
	}
	s.AddHostKey(signer)

	return s
}

func (s *Server) sshHandle(sess ssh.Session) {
	ptyReq, winCh, isPty := sess.Pty()
	if !isPty {
		io.WriteString(sess, "failed to start blockterm: non-interactive terminals are not supported\n")

		sess.Exit(1)
		return
	}

	session := s.Sessions.Add(sess.User(), sess.RemoteAddr().String())
	defer s.Sessions.Remove(session.ID)

	logger := log.With().Str("session", session.ID).Str("user", session.User).Logger()
	logger.Info().Str("remote", session.Remote).Msg("session started")

	cmdCtx, cancelCmd := context.WithCancel(sess.Context())
	defer cancelCmd()

	args := append(append([]string(nil), s.ClientArgs...), "-slot", session.Slot)
	cmd := exec.CommandContext(cmdCtx, s.ClientBinary, args...)
	cmd.Env = append(os.Environ(), fmt.Sprintf("TERM=%s", ptyReq.Term))

	f, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(ptyReq.Window.Height), Cols: uint16(ptyReq.Window.Width)})
	if err != nil {
		logger.Error().Err(err).Msg("failed to start client")
		io.WriteString(sess, fmt.Sprintf("failed to initialize pseudo-terminal: %s\n", err))
		sess.Exit(1)
		return
	}
	defer f.Close()

	go func() {
		for win := range winCh {
			if err := pty.Setsize(f, &pty.Winsize{Rows: uint16(win.Height), Cols: uint16(win.Width)}); err != nil {
				logger.Debug().Err(err).Msg("failed to resize")
			}
		}
	}()

	go func() {
		io.Copy(f, sess)
	}()
	io.Copy(sess, f)

	cancelCmd()
	err = cmd.Wait()
	logger.Info().AnErr("exit", err).Msg("session ended")

	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	sess.Exit(code)
}

// ListenAndServe serves SSH, and HTTP when HTTPAddress is set, until ctx is
// done or either listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errs := make(chan error, 2)

	go func() {
		log.Info().Str("address", s.Addr).Msg("listening for ssh")
		errs <- s.Server.ListenAndServe()
	}()

	if s.HTTPAddress != "" {
		s.http = &http.Server{Addr: s.HTTPAddress, Handler: NewRouter(s.Sessions, s.Store)}
		go func() {
			log.Info().Str("address", s.HTTPAddress).Msg("listening for http")
			errs <- s.http.ListenAndServe()
		}()
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errs:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.http != nil {
		s.http.Shutdown(shutdownCtx)
	}
	s.Server.Shutdown(shutdownCtx)

	if errors.Is(err, ssh.ErrServerClosed) || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
