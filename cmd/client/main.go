package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/matst80/relayroom/internal/proto"
)

func main() {
	var serverAddr string
	var name string
	var chunkSize int
	flag.StringVar(&serverAddr, "server", "127.0.0.1:50007", "relay server address")
	flag.StringVar(&name, "name", "", "display name sent during handshake")
	flag.IntVar(&chunkSize, "chunk", 2048, "voice mode chunk size")
	flag.Parse()
	if name == "" {
		fmt.Fprintln(os.Stderr, "a -name is required")
		os.Exit(1)
	}

	conn, err := net.Dial("tcp", serverAddr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Could not connect to server:", err)
		os.Exit(1)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(proto.NamePrefix + name)); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to send name:", err)
		os.Exit(1)
	}

	// The server answers with REJECT or MODE:<mode> once the operator decides.
	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "No response from server.")
		os.Exit(1)
	}
	resp := strings.TrimSpace(string(buf[:n]))
	switch {
	case resp == proto.Reject:
		fmt.Println("Server rejected the connection request.")
	case strings.HasPrefix(resp, proto.ModePrefix):
		mode := strings.TrimSpace(resp[len(proto.ModePrefix):])
		fmt.Printf("Connected. Server mode: %s\n", mode)
		if mode == "VOICE" {
			runVoice(conn, chunkSize)
		} else {
			runMessaging(conn)
		}
	default:
		fmt.Fprintln(os.Stderr, "Unexpected server response:", resp)
		os.Exit(1)
	}
}

// runMessaging wires stdin lines to the socket and prints whatever the relay
// delivers. Typing the leave command ends the session.
func runMessaging(conn net.Conn) {
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				fmt.Println("Disconnected from server.")
				os.Exit(0)
			}
			fmt.Println(strings.TrimSpace(string(buf[:n])))
		}
	}()

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		msg := strings.TrimSpace(sc.Text())
		if msg == "" {
			continue
		}
		if _, err := conn.Write([]byte(msg)); err != nil {
			return
		}
		if strings.EqualFold(msg, proto.LeaveCommand) {
			// Give the write a moment to flush before the deferred close.
			time.Sleep(200 * time.Millisecond)
			return
		}
	}
	_, _ = conn.Write([]byte(proto.LeaveCommand))
}

// runVoice pipes raw stdin chunks to the relay and received audio to stdout,
// so capture and playback tools can sit on either side of a pipe. Roster and
// server notices go to stderr. Interrupt sends the leave command first.
func runVoice(conn net.Conn, chunkSize int) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		_, _ = conn.Write([]byte(proto.LeaveCommand))
		time.Sleep(200 * time.Millisecond)
		_ = conn.Close()
		os.Exit(0)
	}()

	go func() {
		buf := make([]byte, chunkSize)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				if _, werr := conn.Write(buf[:n]); werr != nil {
					return
				}
			}
			if err != nil {
				// Stdin drained; keep receiving from the call.
				return
			}
		}
	}()

	buf := make([]byte, chunkSize)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Disconnected from server.")
			return
		}
		chunk := buf[:n]
		if s := string(chunk); strings.HasPrefix(s, "[USERS]") || strings.HasPrefix(s, "[Server]") {
			fmt.Fprintln(os.Stderr, strings.TrimSpace(s))
			continue
		}
		_, _ = os.Stdout.Write(chunk)
	}
}
