package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type frame struct {
	Type    string          `json:"type"`
	Target  string          `json:"target,omitempty"`
	Method  string          `json:"method,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func main() {
	addr := flag.String("addr", "localhost:10000", "API host:port")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("Usage: go run ./cmd/app [-addr host:port] <JWT_TOKEN>")
	}

	// Browsers cannot set headers on an upgrade, so the hub also accepts the
	// token as a query parameter. Use the same path here.
	u := url.URL{
		Scheme:   "ws",
		Host:     *addr,
		Path:     "/api/v1/hub",
		RawQuery: url.Values{"access_token": {flag.Arg(0)}}.Encode(),
	}
	fmt.Printf("Connecting to %s://%s%s...\n", u.Scheme, u.Host, u.Path)

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		if resp != nil {
			log.Fatalf("Failed to connect: %v (HTTP %d)", err, resp.StatusCode)
		}
		log.Fatal("Failed to connect:", err)
	}
	defer conn.Close()

	fmt.Println("Connected! Type 'send' to trigger a tenant notification, Ctrl+C to quit.")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			var f frame
			if err := json.Unmarshal(message, &f); err != nil {
				fmt.Printf("%s\n", message)
				continue
			}
			switch f.Type {
			case "notification":
				fmt.Printf("[%s] %s\n", f.Method, f.Payload)
			case "error":
				fmt.Printf("error: %s\n", f.Error)
			default:
				fmt.Printf("%s\n", message)
			}
		}
	}()

	input := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			input <- strings.TrimSpace(scanner.Text())
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	for {
		select {
		case <-done:
			return
		case line := <-input:
			if line != "send" {
				continue
			}
			invoke, _ := json.Marshal(frame{Type: "invoke", Target: "SendNotification"})
			if err := conn.WriteMessage(websocket.TextMessage, invoke); err != nil {
				log.Println("Write:", err)
				return
			}
		case <-interrupt:
			fmt.Println("\nDisconnecting...")

			err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close:", err)
				return
			}

			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		}
	}
}
