package handlers

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamAdmitsClientAndReceivesData(t *testing.T) {
	h := testHandler()

	mux := http.NewServeMux()
	mux.HandleFunc("/s", h.Stream)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	addr := "127.0.0.1:41301"
	sender, err := net.Dial("udp", addr)
	require.NoError(t, err)
	defer sender.Close()

	conn, err := net.Dial("tcp", srv.Listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("GET /s?udp=" + addr + " HTTP/1.1\r\nHost: test\r\n\r\n"))
	require.NoError(t, err)

	reader := bufio.NewReader(conn)
	statusLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, statusLine, "200")

	for i := 0; i < 3; i++ {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if line == "\r\n" {
			break
		}
	}

	entry, ok := h.registry.Get(addr)
	require.True(t, ok)
	require.Eventually(t, func() bool {
		return entry.StreamCount() > 0
	}, time.Second, 5*time.Millisecond)
	h.registry.Put(entry)

	pkt := make([]byte, 188)
	pkt[0] = 0x47
	_, err = sender.Write(pkt)
	require.NoError(t, err)

	buf := make([]byte, 188)
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	n, err := reader.Read(buf)
	require.NoError(t, err)
	assert.Greater(t, n, 0)
}

func TestStreamMissingAddressClosesImmediately(t *testing.T) {
	h := testHandler()

	mux := http.NewServeMux()
	mux.HandleFunc("/s", h.Stream)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/s")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
