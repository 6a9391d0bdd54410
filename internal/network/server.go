package network

import (
	"context"
	"errors"
	"io"
	"net"

	"go.uber.org/zap"

	"github.com/Faultbox/voxelslice/internal/logger"
	"github.com/Faultbox/voxelslice/internal/network/packets"
	"github.com/Faultbox/voxelslice/internal/predict"
)

// Server answers prediction requests with a local Predictor.
type Server struct {
	Predictor predict.Predictor
}

// NewServer creates a server backed by p.
func NewServer(p predict.Predictor) *Server {
	return &Server{Predictor: p}
}

// Serve accepts connections until ln is closed or ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			// Serve may have returned already.
			select {
			case <-done:
				return
			default:
			}
			ln.Close()
		case <-done:
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.ServeConn(ctx, conn)
	}
}

// ServeConn handles requests on a single connection until it closes.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	logger.Debug("prediction client connected", zap.String("remote", remote))

	for {
		req, err := packets.Read(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Warn("reading request", zap.String("remote", remote), zap.Error(err))
			}
			return
		}

		resp := s.handle(ctx, req)
		if err := packets.Write(conn, resp); err != nil {
			logger.Warn("writing response", zap.String("remote", remote), zap.Error(err))
			return
		}
	}
}

// handle turns one request into a response packet.
func (s *Server) handle(ctx context.Context, req *packets.Packet) *packets.Packet {
	if req.PacketID != packets.CP_PREDICT_REQ {
		return errorPacket("unexpected packet")
	}

	in, err := req.Image()
	if err != nil {
		return errorPacket(err.Error())
	}

	out, err := predict.Run(ctx, s.Predictor, in)
	if err != nil {
		return errorPacket(err.Error())
	}

	resp, err := packets.NewImagePacket(packets.PC_PREDICT_ACK, out)
	if err != nil {
		return errorPacket(err.Error())
	}
	return resp
}

func errorPacket(msg string) *packets.Packet {
	return &packets.Packet{PacketID: packets.PC_PREDICT_ERROR, Body: []byte(msg)}
}
