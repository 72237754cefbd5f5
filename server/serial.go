// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
)

// SerialServer serves the same routes over a blocking accept loop that
// handles exactly one connection at a time: accept, answer one request,
// close, accept the next. Requests queue in the listener backlog while a
// request is in flight, so throughput is bounded by the slowest request.
// It exists for single-consumer deployments where strict request ordering
// matters more than concurrency.
type SerialServer struct {
	handler http.Handler
	logger  *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewSerial creates a serial server sharing the concurrent server's routes.
func NewSerial(s *Server) *SerialServer {
	return &SerialServer{
		handler: s.Handler(),
		logger:  s.logger,
	}
}

// Start blocks accepting connections on addr until Close.
func (s *SerialServer) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("serial http server listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		s.serveConn(conn)
	}
}

// Addr returns the bound listener address, or nil before Start.
func (s *SerialServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops the accept loop. The in-flight request, if any, completes.
func (s *SerialServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// serveConn answers a single request and closes the connection.
func (s *SerialServer) serveConn(conn net.Conn) {
	defer conn.Close()

	req, err := http.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		s.logger.Debug("failed to read request", "remote", conn.RemoteAddr().String(), "err", err)
		return
	}
	req.RemoteAddr = conn.RemoteAddr().String()

	w := newConnWriter(conn)
	s.handler.ServeHTTP(w, req)
	w.finish()
}

// connWriter is a minimal http.ResponseWriter over a raw connection.
// Responses are unframed; the connection close delimits the body.
type connWriter struct {
	conn        net.Conn
	buf         *bufio.Writer
	header      http.Header
	wroteHeader bool
}

func newConnWriter(conn net.Conn) *connWriter {
	return &connWriter{
		conn:   conn,
		buf:    bufio.NewWriter(conn),
		header: make(http.Header),
	}
}

func (w *connWriter) Header() http.Header {
	return w.header
}

func (w *connWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	fmt.Fprintf(w.buf, "HTTP/1.1 %d %s\r\n", status, http.StatusText(status))
	w.header.Set("Connection", "close")
	_ = w.header.Write(w.buf)
	w.buf.WriteString("\r\n")
}

func (w *connWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.buf.Write(p)
}

func (w *connWriter) finish() {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	_ = w.buf.Flush()
}
