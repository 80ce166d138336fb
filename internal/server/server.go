package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/Speshl/gorrc_iracer/internal/config"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const (
	acceptRetryInitial = 5 * time.Millisecond
	acceptRetryMax     = time.Second
)

var ErrConnectionClosed = errors.New("connection closed")

// Handler acts on one inbound chunk and reports whether the peer asked to quit.
type Handler interface {
	Handle(ctx context.Context, chunk string) bool
}

// Outbox is the pending outbound text. Pending snapshots it, Commit drops what was sent.
type Outbox interface {
	Pending() (text string, through uint64)
	Commit(through uint64)
}

type ConnectionHook func(session uuid.UUID, remote net.Addr)

// Server talks to one controller at a time. When a peer leaves the next one is accepted, the
// server only stops when its context is cancelled.
type Server struct {
	cfg     config.ServerConfig
	handler Handler
	events  Outbox

	OnConnect    ConnectionHook
	OnDisconnect ConnectionHook

	lock     sync.Mutex
	listener net.Listener
}

func NewServer(cfg config.ServerConfig, handler Handler, events Outbox) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		events:  events,
	}
}

func (s *Server) Start(ctx context.Context) error {
	err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx)
}

func (s *Server) Listen() error {
	address := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("error listening on %s - %w", address, err)
	}

	s.lock.Lock()
	s.listener = listener
	s.lock.Unlock()
	log.Printf("starting socket server (%s)\n", listener.Addr())
	return nil
}

// Addr is the bound address, nil before Listen.
func (s *Server) Addr() net.Addr {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) Serve(ctx context.Context) error {
	s.lock.Lock()
	listener := s.listener
	s.lock.Unlock()
	if listener == nil {
		return fmt.Errorf("server not listening")
	}

	stop := context.AfterFunc(ctx, func() {
		listener.Close()
	})
	defer stop()
	defer listener.Close()

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = acceptRetryInitial
	retry.MaxInterval = acceptRetryMax
	retry.MaxElapsedTime = 0
	retry.Reset()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("stopping socket server: %s\n", ctx.Err().Error())
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("socket server listener closed: %w", err)
			}
			wait := retry.NextBackOff()
			log.Printf("error: accept failed: %s - retrying in %s\n", err.Error(), wait)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
			case <-timer.C:
			}
			timer.Stop()
			continue
		}
		retry.Reset()

		err = s.serve(ctx, conn)
		if err != nil && !errors.Is(err, ErrConnectionClosed) && ctx.Err() == nil {
			log.Printf("connection ended with error: %s\n", err.Error())
		}
	}
}

// serve runs one connection lifecycle until the peer closes, quits or a read fails.
func (s *Server) serve(ctx context.Context, conn net.Conn) error {
	session := uuid.New()
	remote := conn.RemoteAddr()
	log.Printf("client %s connected (session %s)\n", remote, session)

	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer func() {
		stop()
		conn.Close()
		log.Printf("closing connection with %s (session %s)\n", remote, session)
		if s.OnDisconnect != nil {
			s.OnDisconnect(session, remote)
		}
	}()

	if s.OnConnect != nil {
		s.OnConnect(session, remote)
	}

	chunkSize := s.cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = config.DefaultChunkSize
	}
	buf := make([]byte, chunkSize)

	for {
		if s.cfg.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		}

		n, err := conn.Read(buf)
		if n == 0 {
			if err == nil || errors.Is(err, io.EOF) {
				log.Printf("%s closed the socket\n", remote)
				return ErrConnectionClosed
			}
			return fmt.Errorf("unable to read data: %w", err)
		}

		chunk := strings.TrimRightFunc(string(buf[:n]), unicode.IsSpace)
		if s.handler.Handle(ctx, chunk) {
			log.Printf("%s sent quit\n", remote)
			return ErrConnectionClosed
		}
		s.flush(conn)

		if err != nil {
			if errors.Is(err, io.EOF) {
				return ErrConnectionClosed
			}
			return fmt.Errorf("unable to read data: %w", err)
		}
	}
}

// flush sends everything pending. On failure the text stays pending for the next chunk.
func (s *Server) flush(conn net.Conn) {
	text, through := s.events.Pending()
	if text == "" {
		return
	}

	if s.cfg.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	_, err := io.WriteString(conn, text)
	if err != nil {
		log.Printf("error: sending events failed: %s\n", err.Error())
		return
	}
	s.events.Commit(through)
}
