package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/floatbubble/internal/runtimepath"
)

// Handler executes IPC commands. Implementations must be safe to call from
// multiple connection goroutines.
type Handler interface {
	Status() (StatusData, error)
	Metrics() (MetricsData, error)
	Snap() (SnapData, error)
	Move(p MovePayload) error
	Toggle() (ToggleData, error)
	Reload() error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on the default socket path.
func NewServer(handler Handler) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, handler), nil
}

// NewServerAt creates a new IPC server on socketPath.
func NewServerAt(socketPath string, handler Handler) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		handler:    handler,
		startTime:  time.Now(),
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMetrics:
		return s.handleGetMetrics()
	case CommandSnap:
		return s.handleSnap()
	case CommandMove:
		return s.handleMove(req.Payload)
	case CommandToggle:
		return s.handleToggle()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	if err := s.handler.Reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	log.Println("IPC: Config reloaded successfully")
	return okResponse(nil)
}

func (s *Server) handleGetStatus() *Response {
	status, err := s.handler.Status()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	status.DaemonRunning = true
	return okResponse(status)
}

func (s *Server) handleGetMetrics() *Response {
	metrics, err := s.handler.Metrics()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get metrics: %v", err))
	}
	return okResponse(metrics)
}

func (s *Server) handleSnap() *Response {
	data, err := s.handler.Snap()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to snap: %v", err))
	}
	return okResponse(data)
}

func (s *Server) handleMove(payload json.RawMessage) *Response {
	var req MovePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid move payload: %v", err))
	}

	log.Printf("IPC: Move bubble to (%d,%d)", req.X, req.Y)

	if err := s.handler.Move(req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to move bubble: %v", err))
	}
	return okResponse(nil)
}

func (s *Server) handleToggle() *Response {
	data, err := s.handler.Toggle()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to toggle bubble: %v", err))
	}
	return okResponse(data)
}

func okResponse(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
