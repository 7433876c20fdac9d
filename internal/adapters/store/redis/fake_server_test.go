package redis

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/dubvote/internal/core/ports"
)

// fakeRedis is a minimal RESP server. It applies INCR to a single counter
// and can drop connections after applying a command, or never reply at all.
type fakeRedis struct {
	ln        net.Listener
	mu        sync.Mutex
	applied   int
	dropped   int
	dropFirst int
	silent    bool
}

func startFakeRedis(t *testing.T, dropFirst int, silent bool) *fakeRedis {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	f := &fakeRedis{ln: ln, dropFirst: dropFirst, silent: silent}
	t.Cleanup(func() { ln.Close() })
	go f.serve()

	return f
}

func (f *fakeRedis) store(t *testing.T, timeout time.Duration) ports.CounterStore {
	t.Helper()

	host, port, err := net.SplitHostPort(f.ln.Addr().String())
	require.NoError(t, err)

	store := NewCounterStore(NewClient(host, port), timeout)
	t.Cleanup(func() { store.Close() })
	return store
}

func (f *fakeRedis) incrsApplied() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applied
}

func (f *fakeRedis) serve() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeRedis) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)

	for {
		args, err := readCommand(r)
		if err != nil {
			return
		}
		if f.silent {
			continue
		}

		switch strings.ToUpper(args[0]) {
		case "PING":
			io.WriteString(conn, "+PONG\r\n")
		case "INCR":
			f.mu.Lock()
			f.applied++
			total := f.applied
			drop := f.dropped < f.dropFirst
			if drop {
				f.dropped++
			}
			f.mu.Unlock()

			if drop {
				return
			}
			fmt.Fprintf(conn, ":%d\r\n", total)
		default:
			io.WriteString(conn, "-ERR unknown command\r\n")
		}
	}
}

func readCommand(r *bufio.Reader) ([]string, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, "*") {
		return nil, fmt.Errorf("unexpected header %q", header)
	}
	n, err := strconv.Atoi(header[1:])
	if err != nil || n < 1 {
		return nil, fmt.Errorf("bad array length %q", header)
	}

	args := make([]string, 0, n)
	for i := 0; i < n; i++ {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(strings.TrimSpace(line)[1:])
		if err != nil {
			return nil, err
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args = append(args, string(buf[:size]))
	}
	return args, nil
}
