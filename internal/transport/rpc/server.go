// Package rpc exposes recording operations over JSON-RPC for internal clients
// that capture traffic and push it to the recorder without going through HTTP.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"

	"github.com/xiaot623/gogo/recorder/internal/domain"
	"github.com/xiaot623/gogo/recorder/internal/logging"
	"github.com/xiaot623/gogo/recorder/internal/service"
)

// Server accepts JSON-RPC connections bound to the recorder service.
type Server struct {
	listener  net.Listener
	rpcServer *rpc.Server
	log       *logging.Logger
	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
}

// NewServer creates a new RPC server bound to the recorder service.
func NewServer(svc *service.Service, log *logging.Logger) (*Server, error) {
	if log == nil {
		log = logging.Nop()
	}
	rpcServer := rpc.NewServer()
	handler := &Handler{service: svc}
	if err := rpcServer.RegisterName("Recorder", handler); err != nil {
		return nil, fmt.Errorf("register rpc handler: %w", err)
	}

	return &Server{
		rpcServer: rpcServer,
		log:       log.Sub("rpc"),
		ready:     make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Start begins accepting RPC connections on the given address. It returns nil after Shutdown.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.readyOnce.Do(func() { close(s.ready) })
		return err
	}
	s.listener = ln
	s.readyOnce.Do(func() { close(s.ready) })
	s.log.Info().Str("addr", ln.Addr().String()).Msg("rpc listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				close(s.done)
				return nil
			}
			s.log.Warn().Err(err).Msg("rpc accept error")
			continue
		}

		go s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(conn))
	}
}

// Addr blocks until Start has tried to listen and returns the bound address,
// or nil when listening failed.
func (s *Server) Addr() net.Addr {
	<-s.ready
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting new RPC connections.
func (s *Server) Shutdown(ctx context.Context) error {
	select {
	case <-s.ready:
	default:
		return nil
	}
	if s.listener == nil {
		return nil
	}

	if err := s.listener.Close(); err != nil {
		return err
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handler implements the recorder RPC methods.
type Handler struct {
	service *service.Service
}

// AttachPayloadArgs names the session a payload is recorded against.
type AttachPayloadArgs struct {
	SessionID string         `json:"session_id"`
	Payload   domain.Payload `json:"payload"`
}

// SessionArgs identifies a session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// PayloadIDsArgs lists payload IDs to look up.
type PayloadIDsArgs struct {
	PayloadIDs []string `json:"payload_ids"`
}

// PayloadsReply carries the payloads found, if any.
type PayloadsReply struct {
	Payloads []domain.Payload `json:"payloads"`
}

// ExistsReply reports whether a session exists.
type ExistsReply struct {
	Exists bool `json:"exists"`
}

// RecordPayload stores a standalone payload.
func (h *Handler) RecordPayload(req *domain.Payload, resp *domain.Payload) error {
	if req == nil {
		return errors.New("payload is required")
	}

	payload, err := h.service.CreatePayload(context.Background(), req)
	if err != nil {
		return err
	}
	if resp != nil {
		*resp = *payload
	}
	return nil
}

// AttachPayload stores a payload linked to an existing session.
func (h *Handler) AttachPayload(req *AttachPayloadArgs, resp *domain.Payload) error {
	if req == nil {
		return errors.New("attach request is required")
	}

	payload, err := h.service.CreatePayloadForSession(context.Background(), req.SessionID, &req.Payload)
	if err != nil {
		return err
	}
	if resp != nil {
		*resp = *payload
	}
	return nil
}

// SessionExists reports whether a session exists.
func (h *Handler) SessionExists(req *SessionArgs, resp *ExistsReply) error {
	if req == nil || req.SessionID == "" {
		return errors.New("session_id is required")
	}

	exists, err := h.service.SessionExists(context.Background(), req.SessionID)
	if err != nil {
		return err
	}
	if resp != nil {
		resp.Exists = exists
	}
	return nil
}

// GetPayloads returns the payloads matching the given payload IDs.
func (h *Handler) GetPayloads(req *PayloadIDsArgs, resp *PayloadsReply) error {
	if req == nil || len(req.PayloadIDs) == 0 {
		return errors.New("payload_ids is required")
	}

	payloads, err := h.service.GetPayloadsByPayloadIDs(context.Background(), req.PayloadIDs)
	if err != nil {
		return err
	}
	if resp != nil {
		resp.Payloads = payloads
	}
	return nil
}
