package ofsnet

import (
	"bufio"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Zohaasad/file-verse/pkg/ofs"
)

func newTestServer(t *testing.T) (*Server, func()) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.omni")
	cfg := ofs.Config{
		TotalSize: 1 << 20, HeaderSize: ofs.MinHeaderSize, BlockSize: 256,
		MaxFiles: 32, MaxUsers: 4, AdminUsername: "admin", AdminPassword: "admin123",
	}
	inst, err := ofs.Init(path, cfg, nil)
	require.NoError(t, err)

	d := ofs.NewDispatcher(inst, 8)
	srv, err := NewServer("127.0.0.1:0", d, 5*time.Second, nil)
	require.NoError(t, err)

	go srv.Serve()

	cleanup := func() {
		srv.Close()
		d.Close()
		inst.Shutdown()
	}
	return srv, cleanup
}

func dial(t *testing.T, srv *Server) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	return conn, bufio.NewReader(conn)
}

func sendLine(t *testing.T, conn net.Conn, r *bufio.Reader, line string) string {
	t.Helper()
	_, err := conn.Write([]byte(line + "\n"))
	require.NoError(t, err)
	resp, err := r.ReadString('\n')
	require.NoError(t, err)
	return resp
}

func TestServerRejectsCommandsBeforeLogin(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	conn, r := dial(t, srv)
	defer conn.Close()

	resp := sendLine(t, conn, r, `file_exists /a.txt`)
	if want := `"success":false`; !strings.Contains(resp, want) {
		t.Errorf("response %q should report failure before login", resp)
	}
}

func TestServerLoginThenFileLifecycle(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	conn, r := dial(t, srv)
	defer conn.Close()

	loginResp := sendLine(t, conn, r, `login admin admin123`)
	if !strings.Contains(loginResp, `"success":true`) {
		t.Fatalf("login failed: %s", loginResp)
	}

	createResp := sendLine(t, conn, r, `file_create /greeting.txt "hi there"`)
	if !strings.Contains(createResp, `"success":true`) {
		t.Fatalf("file_create failed: %s", createResp)
	}

	existsResp := sendLine(t, conn, r, `file_exists /greeting.txt`)
	if !strings.Contains(existsResp, `"success":true`) {
		t.Fatalf("file_exists failed: %s", existsResp)
	}

	readResp := sendLine(t, conn, r, `file_read /greeting.txt`)
	if !strings.Contains(readResp, `"success":true`) {
		t.Fatalf("file_read failed: %s", readResp)
	}
}
