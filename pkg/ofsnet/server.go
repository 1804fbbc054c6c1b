package ofsnet

// Server: a net.Listener accepting many connections in parallel, each
// running its own blocking read loop, all of which enqueue their actual
// filesystem work onto one ofs.Dispatcher (spec.md §5: "the external
// transport MAY run many connection-accepting tasks in parallel... requests
// enqueue into one queue consumed by one worker"). Generalized from the
// original's single-connection blocking loop (original_source/source/
// server/server_network.cpp has no concept of concurrent connections at
// all -- that generalization is this file's own contribution).

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Zohaasad/file-verse/pkg/ofs"
)

// Logger is the narrow logging surface the server calls through, satisfied
// by pkg/ofslog.CLI.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// Server owns the listener and the dispatcher it forwards work to.
type Server struct {
	dispatcher  *ofs.Dispatcher
	log         Logger
	idleTimeout time.Duration

	listener net.Listener
}

// NewServer wraps an already-running dispatcher with a TCP listener on
// addr (e.g. ":9090"). idleTimeout is the pkg/ofsconfig queue_timeout
// knob: a connection that sends nothing for that long is dropped.
func NewServer(addr string, dispatcher *ofs.Dispatcher, idleTimeout time.Duration, log Logger) (*Server, error) {
	if log == nil {
		log = nopLogger{}
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("ofsnet: listening on %s: %w", addr, err)
	}
	return &Server{dispatcher: dispatcher, log: log, idleTimeout: idleTimeout, listener: ln}, nil
}

// Addr returns the listener's bound network address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Serve blocks accepting connections until the listener is closed.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

// Close stops accepting new connections. Connections already accepted are
// not closed: each keeps its read loop running until the client
// disconnects, a write fails, or the idle timeout expires.
func (s *Server) Close() error {
	return s.listener.Close()
}

type connState struct {
	sess *ofs.Session
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	state := &connState{}
	scanner := bufio.NewScanner(conn)

	for {
		if s.idleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		}
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		req := ParseRequest(line)
		if req.Command == "" {
			continue
		}

		resp := s.dispatch(state, req)
		if _, err := conn.Write([]byte(SerializeResponse(resp))); err != nil {
			s.log.Warnf("writing response to %s: %v", conn.RemoteAddr(), err)
			return
		}
	}
}

// dispatch runs req against state's session by submitting one closure onto
// the shared dispatcher, so every command this connection issues is fully
// serialized against every other connection's commands (spec.md §5's
// total-order FIFO rule).
func (s *Server) dispatch(state *connState, req Request) Response {
	switch strings.ToLower(req.Command) {
	case "login":
		return s.cmdLogin(state, req)
	case "logout":
		return s.cmdLogout(state)
	default:
		if state.sess == nil {
			return fail(ofs.ErrInvalidSession)
		}
		return s.cmdAuthenticated(state, req)
	}
}

func (s *Server) cmdLogin(state *connState, req Request) Response {
	if len(req.Args) < 2 {
		return fail(ofs.ErrInvalidOperation)
	}
	username, password := req.Args[0], req.Args[1]

	v, err := s.dispatcher.Submit(func(inst *ofs.Instance) (interface{}, error) {
		return inst.UserLogin(username, password)
	})
	if err != nil {
		return fail(err)
	}
	sess := v.(*ofs.Session)
	state.sess = sess
	return Response{Success: true, Message: "logged in", Data: sess.Token}
}

func (s *Server) cmdLogout(state *connState) Response {
	if state.sess == nil {
		return fail(ofs.ErrInvalidSession)
	}
	sess := state.sess
	_, err := s.dispatcher.Submit(func(inst *ofs.Instance) (interface{}, error) {
		return nil, inst.UserLogout(sess)
	})
	state.sess = nil
	if err != nil {
		return fail(err)
	}
	return Response{Success: true, Message: "logged out"}
}

func (s *Server) cmdAuthenticated(state *connState, req Request) Response {
	sess := state.sess
	cmd := strings.ToLower(req.Command)
	args := req.Args

	run := func(fn func(inst *ofs.Instance) (interface{}, error)) Response {
		v, err := s.dispatcher.Submit(fn)
		if err != nil {
			return fail(err)
		}
		return ok(v)
	}

	switch cmd {
	case "file_create":
		if len(args) < 1 {
			return fail(ofs.ErrInvalidOperation)
		}
		data := ""
		if len(args) > 1 {
			data = args[1]
		}
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return nil, inst.FileCreate(sess, args[0], []byte(data))
		})

	case "file_read":
		if len(args) < 1 {
			return fail(ofs.ErrInvalidOperation)
		}
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return inst.FileRead(sess, args[0])
		})

	case "file_edit":
		if len(args) < 3 {
			return fail(ofs.ErrInvalidOperation)
		}
		index, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fail(ofs.ErrInvalidOperation)
		}
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return nil, inst.FileEdit(sess, args[0], index, []byte(args[2]))
		})

	case "file_truncate":
		if len(args) < 2 {
			return fail(ofs.ErrInvalidOperation)
		}
		size, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fail(ofs.ErrInvalidOperation)
		}
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return nil, inst.FileTruncate(sess, args[0], size)
		})

	case "file_delete":
		if len(args) < 1 {
			return fail(ofs.ErrInvalidOperation)
		}
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return nil, inst.FileDelete(sess, args[0])
		})

	case "file_rename":
		if len(args) < 2 {
			return fail(ofs.ErrInvalidOperation)
		}
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return nil, inst.FileRename(sess, args[0], args[1])
		})

	case "file_exists":
		if len(args) < 1 {
			return fail(ofs.ErrInvalidOperation)
		}
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return inst.FileExists(sess, args[0])
		})

	case "dir_create":
		if len(args) < 1 {
			return fail(ofs.ErrInvalidOperation)
		}
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return nil, inst.DirCreate(sess, args[0])
		})

	case "dir_list":
		if len(args) < 1 {
			return fail(ofs.ErrInvalidOperation)
		}
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return inst.DirList(sess, args[0])
		})

	case "dir_delete":
		if len(args) < 1 {
			return fail(ofs.ErrInvalidOperation)
		}
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return nil, inst.DirDelete(sess, args[0])
		})

	case "dir_exists":
		if len(args) < 1 {
			return fail(ofs.ErrInvalidOperation)
		}
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return inst.DirExists(sess, args[0])
		})

	case "get_metadata":
		if len(args) < 1 {
			return fail(ofs.ErrInvalidOperation)
		}
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return inst.GetMetadata(sess, args[0])
		})

	case "set_permissions":
		if len(args) < 2 {
			return fail(ofs.ErrInvalidOperation)
		}
		mode, err := strconv.ParseUint(args[1], 8, 32)
		if err != nil {
			return fail(ofs.ErrInvalidOperation)
		}
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return nil, inst.SetPermissions(sess, args[0], uint32(mode))
		})

	case "get_stats":
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return inst.GetStats(sess)
		})

	case "get_session_info":
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return inst.GetSessionInfo(sess)
		})

	case "user_create":
		if len(args) < 3 {
			return fail(ofs.ErrInvalidOperation)
		}
		role := ofs.RoleNormal
		if strings.EqualFold(args[2], "admin") {
			role = ofs.RoleAdmin
		}
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return nil, inst.UserCreate(sess, args[0], args[1], role)
		})

	case "user_delete":
		if len(args) < 1 {
			return fail(ofs.ErrInvalidOperation)
		}
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return nil, inst.UserDelete(sess, args[0])
		})

	case "user_list":
		return run(func(inst *ofs.Instance) (interface{}, error) {
			return inst.UserList(sess)
		})

	default:
		return fail(ofs.ErrNotImplemented)
	}
}

func ok(v interface{}) Response {
	if v == nil {
		return Response{Success: true, Message: "ok"}
	}
	return Response{Success: true, Message: "ok", Data: fmt.Sprintf("%v", v)}
}

func fail(err error) Response {
	code, _ := ofs.CodeOf(err)
	return Response{Success: false, Message: fmt.Sprintf("%s: %v", code.String(), err)}
}
