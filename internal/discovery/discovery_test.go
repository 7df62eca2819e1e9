// ABOUTME: Tests for the LAN discovery responder.
// ABOUTME: Probes over loopback UDP and checks the JSON announcement.
package discovery

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"testing"
	"time"
)

func TestResponderAnswersMagicProbe(t *testing.T) {
	// Grab a free port, then hand it to the responder.
	probe, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen probe socket: %v", err)
	}
	defer probe.Close()

	tmp, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	port := tmp.LocalAddr().(*net.UDPAddr).Port
	tmp.Close()

	r := &Responder{
		Name:    "hcbridge-test",
		Magic:   "HC_SYNC_DISCOVER",
		UDPPort: port,
		APIPort: 8765,
		Logger:  log.New(io.Discard, "", 0),
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	target := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}
	if _, err := probe.WriteToUDP([]byte("HC_SYNC_DISCOVER"), target); err != nil {
		t.Fatalf("send probe: %v", err)
	}

	probe.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 512)
	n, _, err := probe.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}

	var ann Announcement
	if err := json.Unmarshal(buf[:n], &ann); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if ann.Name != "hcbridge-test" || ann.Port != 8765 || ann.BaseURL == "" {
		t.Errorf("announcement = %+v", ann)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("responder did not stop on cancel")
	}
}

func TestResponderIgnoresWrongMagic(t *testing.T) {
	probe, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen probe socket: %v", err)
	}
	defer probe.Close()

	tmp, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	port := tmp.LocalAddr().(*net.UDPAddr).Port
	tmp.Close()

	r := &Responder{
		Name:    "hcbridge-test",
		Magic:   "HC_SYNC_DISCOVER",
		UDPPort: port,
		APIPort: 8765,
		Logger:  log.New(io.Discard, "", 0),
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	target := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}
	if _, err := probe.WriteToUDP([]byte("WHO_IS_THERE"), target); err != nil {
		t.Fatalf("send probe: %v", err)
	}

	probe.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	buf := make([]byte, 512)
	if _, _, err := probe.ReadFromUDP(buf); err == nil {
		t.Error("expected no reply to wrong magic")
	}
}
