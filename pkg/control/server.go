package control

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/b/tabdeck/pkg/app"
	"github.com/b/tabdeck/pkg/logging"
	"github.com/b/tabdeck/pkg/validate"
)

// ErrAlreadyRunning is returned by Start when another dashboard answers on
// the socket.
var ErrAlreadyRunning = errors.New("control socket already in use")

// Options configures a Server.
type Options struct {
	// Send delivers a requested action to the runtime loop, usually
	// (*tea.Program).Send wrapped to accept an app.Action.
	Send func(app.Action)
	// Snapshot returns the latest published state summary.
	Snapshot  func() Snapshot
	Validator *validate.Validator
	Logger    *zap.Logger
}

// Server accepts control connections on a unix socket.
type Server struct {
	socketPath string
	listener   net.Listener
	opts       Options
	log        *zap.Logger
	clients    map[net.Conn]struct{}
	clientsMu  sync.RWMutex
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewServer creates a server for socketPath. Nothing is opened until Start.
func NewServer(socketPath string, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Validator == nil {
		opts.Validator = validate.New()
	}
	return &Server{
		socketPath: socketPath,
		opts:       opts,
		log:        opts.Logger.Named("control"),
		clients:    make(map[net.Conn]struct{}),
		done:       make(chan struct{}),
	}
}

// Start begins listening for client connections
func (s *Server) Start() error {
	if err := s.checkStale(); err != nil {
		return err
	}
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}
	s.listener = listener
	s.log.Info("listening", zap.String("socket", s.socketPath))

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// checkStale removes a socket file nobody answers on.
func (s *Server) checkStale() error {
	if _, err := os.Stat(s.socketPath); err != nil {
		return nil
	}
	conn, err := net.DialTimeout("unix", s.socketPath, 200*time.Millisecond)
	if err == nil {
		conn.Close()
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, s.socketPath)
	}
	s.log.Debug("removing stale socket", zap.String("socket", s.socketPath))
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	return nil
}

// Stop shuts down the server and waits for the accept loop to exit.
func (s *Server) Stop() {
	select {
	case <-s.done:
		return
	default:
	}
	close(s.done)
	s.log.Info("stopping", zap.Int("clients", s.ClientCount()))
	if s.listener != nil {
		s.listener.Close()
	}
	s.clientsMu.Lock()
	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
	s.clientsMu.Unlock()
	s.wg.Wait()
	os.Remove(s.socketPath)
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// SocketPath returns the socket path
func (s *Server) SocketPath() string {
	return s.socketPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	defer logging.RecoverAndLog(s.log, "control accept")
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn("accept failed", zap.Error(err))
			continue
		}
		s.clientsMu.Lock()
		s.clients[conn] = struct{}{}
		s.clientsMu.Unlock()

		s.wg.Add(1)
		go s.handleClient(conn)
	}
}

// handleClient answers each request line with exactly one reply line.
func (s *Server) handleClient(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		conn.Close()
	}()
	defer logging.RecoverAndLog(s.log, "control client")

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4*1024), 64*1024)
	for scanner.Scan() {
		var msg Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			s.sendMessage(conn, Message{Type: MsgError, Error: "malformed message: " + err.Error()})
			continue
		}
		if err := s.sendMessage(conn, s.handle(msg)); err != nil {
			s.log.Debug("reply failed", zap.Error(err))
			return
		}
	}
}

func (s *Server) handle(msg Message) Message {
	reply := Message{ID: msg.ID}
	switch msg.Type {
	case MsgPing:
		reply.Type = MsgPong
	case MsgState:
		if s.opts.Snapshot == nil {
			return fail(reply, "state unavailable")
		}
		snap := s.opts.Snapshot()
		reply.Type = MsgState
		reply.Payload = &snap
	case MsgAction:
		if err := s.check(msg); err != nil {
			return fail(reply, err.Error())
		}
		act := app.ActionByName(msg.Name, msg.Args)
		if act == nil {
			return fail(reply, fmt.Sprintf("unknown action %q", msg.Name))
		}
		if s.opts.Send != nil {
			s.opts.Send(act)
		}
		s.log.Info("action requested", zap.String("name", msg.Name), zap.Strings("args", msg.Args), zap.String("id", msg.ID))
		reply.Type = MsgOK
	default:
		return fail(reply, fmt.Sprintf("unknown message type %q", msg.Type))
	}
	return reply
}

// check validates an action request before it is resolved.
func (s *Server) check(msg Message) error {
	rules := map[string]validate.Rule{
		"name": {Value: msg.Name, Tag: "required,max=32"},
		"args": {Value: msg.Args, Tag: "max=16,dive,max=256"},
	}
	if msg.Name == "run" && len(msg.Args) > 0 {
		rules["command"] = validate.Rule{Value: msg.Args[0], Tag: "commandname"}
	}
	return s.opts.Validator.Batch(rules)
}

func fail(reply Message, text string) Message {
	reply.Type = MsgError
	reply.Error = text
	return reply
}

// sendMessage sends a message to a client
func (s *Server) sendMessage(conn net.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(time.Second))
	_, err = conn.Write(append(data, '\n'))
	return err
}
