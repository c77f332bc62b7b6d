// Package relaytest runs an in-process relay that speaks enough of NIP-01
// for tests: REQ with stored events and EOSE, EVENT with OK, CLOSE.
package relaytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nbd-wtf/go-nostr"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type Relay struct {
	srv *httptest.Server

	mu          sync.Mutex
	events      []nostr.Event
	published   []nostr.Event
	conns       map[*client]bool
	rejectWith  string
	dropOnEvent bool
	okDelay     time.Duration
	connections int
}

type client struct {
	conn *websocket.Conn
	wmu  sync.Mutex
	mu   sync.Mutex
	subs map[string]nostr.Filters
}

func (c *client) send(msg ...any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// New starts a relay. Close it when done.
func New() *Relay {
	r := &Relay{conns: map[*client]bool{}}
	r.srv = httptest.NewServer(http.HandlerFunc(r.serve))
	return r
}

// URL is the ws:// address of the relay.
func (r *Relay) URL() string {
	return "ws" + strings.TrimPrefix(r.srv.URL, "http")
}

func (r *Relay) Close() {
	r.DropConnections()
	r.srv.Close()
}

// Store adds events as if they had been published earlier. They are sent
// to live subscriptions that match.
func (r *Relay) Store(events ...nostr.Event) {
	r.mu.Lock()
	r.events = append(r.events, events...)
	clients := r.clientsLocked()
	r.mu.Unlock()

	for _, evt := range events {
		broadcast(clients, evt)
	}
}

// Published returns the events clients sent with EVENT.
func (r *Relay) Published() []nostr.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]nostr.Event(nil), r.published...)
}

// RejectWith makes the relay answer every EVENT with OK false and reason.
// An empty reason accepts again.
func (r *Relay) RejectWith(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejectWith = reason
}

// DropOnEvent makes the relay close the connection when it receives an
// EVENT, without answering.
func (r *Relay) DropOnEvent(drop bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropOnEvent = drop
}

// DelayOK holds every OK answer back for d.
func (r *Relay) DelayOK(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.okDelay = d
}

// Connections counts websocket connections accepted so far.
func (r *Relay) Connections() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connections
}

// DropConnections closes every open connection from the server side.
func (r *Relay) DropConnections() {
	r.mu.Lock()
	clients := r.clientsLocked()
	r.mu.Unlock()
	for _, c := range clients {
		c.conn.Close()
	}
}

func (r *Relay) clientsLocked() []*client {
	out := make([]*client, 0, len(r.conns))
	for c := range r.conns {
		out = append(out, c)
	}
	return out
}

func (r *Relay) serve(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, subs: map[string]nostr.Filters{}}

	r.mu.Lock()
	r.conns[c] = true
	r.connections++
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.conns, c)
		r.mu.Unlock()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg []json.RawMessage
		if err := json.Unmarshal(data, &msg); err != nil || len(msg) < 2 {
			c.send("NOTICE", "malformed message")
			continue
		}
		var typ string
		json.Unmarshal(msg[0], &typ)

		switch typ {
		case "REQ":
			r.handleReq(c, msg[1:])
		case "CLOSE":
			var id string
			json.Unmarshal(msg[1], &id)
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		case "EVENT":
			r.handleEvent(c, msg[1])
		default:
			c.send("NOTICE", "unsupported: "+typ)
		}
	}
}

func (r *Relay) handleReq(c *client, args []json.RawMessage) {
	var id string
	if err := json.Unmarshal(args[0], &id); err != nil {
		c.send("NOTICE", "bad subscription id")
		return
	}
	var filters nostr.Filters
	for _, raw := range args[1:] {
		var f nostr.Filter
		if err := json.Unmarshal(raw, &f); err != nil {
			c.send("CLOSED", id, "error: bad filter")
			return
		}
		filters = append(filters, f)
	}

	c.mu.Lock()
	c.subs[id] = filters
	c.mu.Unlock()

	r.mu.Lock()
	stored := append([]nostr.Event(nil), r.events...)
	r.mu.Unlock()

	for i := range stored {
		if filters.Match(&stored[i]) {
			c.send("EVENT", id, stored[i])
		}
	}
	c.send("EOSE", id)
}

func (r *Relay) handleEvent(c *client, raw json.RawMessage) {
	var evt nostr.Event
	if err := json.Unmarshal(raw, &evt); err != nil {
		c.send("NOTICE", "bad event")
		return
	}

	r.mu.Lock()
	if r.dropOnEvent {
		r.mu.Unlock()
		c.conn.Close()
		return
	}
	reason := r.rejectWith
	delay := r.okDelay
	if reason == "" {
		r.published = append(r.published, evt)
		r.events = append(r.events, evt)
	}
	clients := r.clientsLocked()
	r.mu.Unlock()

	answer := func() {
		if reason != "" {
			c.send("OK", evt.ID, false, reason)
			return
		}
		c.send("OK", evt.ID, true, "")
		broadcast(clients, evt)
	}
	if delay > 0 {
		time.AfterFunc(delay, answer)
		return
	}
	answer()
}

func broadcast(clients []*client, evt nostr.Event) {
	for _, c := range clients {
		c.mu.Lock()
		var ids []string
		for id, filters := range c.subs {
			if filters.Match(&evt) {
				ids = append(ids, id)
			}
		}
		c.mu.Unlock()
		for _, id := range ids {
			c.send("EVENT", id, evt)
		}
	}
}
