// ABOUTME: LAN discovery responder so the device app finds the bridge.
// ABOUTME: Answers a magic UDP datagram with the API base URL as JSON.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"strings"
)

// Announcement is the JSON reply to a discovery probe.
type Announcement struct {
	Name    string `json:"name"`
	BaseURL string `json:"baseUrl"`
	Port    int    `json:"port"`
}

// Responder listens for discovery probes on a UDP port.
type Responder struct {
	Name    string
	Magic   string
	UDPPort int
	APIPort int
	Logger  *log.Logger
}

// Run answers probes until the context is cancelled. The reply's baseUrl is
// built from the local address the probe arrived on, so multi-homed hosts
// advertise a reachable address.
func (r *Responder) Run(ctx context.Context) error {
	if r.Logger == nil {
		r.Logger = log.Default()
	}
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: r.UDPPort})
	if err != nil {
		return fmt.Errorf("discovery listen: %w", err)
	}
	defer conn.Close()
	r.Logger.Printf("discovery responder on udp/%d", r.UDPPort)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, 512)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("discovery read: %w", err)
		}
		if strings.TrimSpace(string(buf[:n])) != r.Magic {
			continue
		}

		reply, err := json.Marshal(r.announcement(conn, addr))
		if err != nil {
			continue
		}
		if _, err := conn.WriteToUDP(reply, addr); err != nil {
			r.Logger.Printf("discovery reply to %s failed: %v", addr, err)
		}
	}
}

func (r *Responder) announcement(conn *net.UDPConn, peer *net.UDPAddr) Announcement {
	host := localAddrFor(peer)
	return Announcement{
		Name:    r.Name,
		BaseURL: fmt.Sprintf("http://%s:%d", host, r.APIPort),
		Port:    r.APIPort,
	}
}

// localAddrFor finds the local IP the OS would use to reach the peer.
func localAddrFor(peer *net.UDPAddr) string {
	c, err := net.Dial("udp4", peer.String())
	if err != nil {
		return "127.0.0.1"
	}
	defer c.Close()
	if la, ok := c.LocalAddr().(*net.UDPAddr); ok {
		return la.IP.String()
	}
	return "127.0.0.1"
}
