package main

import (
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/jauhararifin/blockfall"
)

type server struct {
	conn   *net.UDPConn
	fps    int
	config blockfall.Config

	m        *sync.RWMutex
	rooms    map[string]*Room
	userAddr map[string]*net.UDPAddr
	userRoom map[string]string
	userName map[string]string
}

func newServer(conn *net.UDPConn, fps int, config blockfall.Config) *server {
	return &server{
		conn:     conn,
		fps:      fps,
		config:   config,
		m:        &sync.RWMutex{},
		rooms:    make(map[string]*Room),
		userAddr: make(map[string]*net.UDPAddr),
		userRoom: make(map[string]string),
		userName: make(map[string]string),
	}
}

func (s *server) OnUserJoin(id, name, room string, addr *net.UDPAddr) {
	s.m.Lock()
	r, ok := s.rooms[room]
	if !ok {
		r = NewRoom(s, s.fps, s.config)
		s.rooms[room] = r
	}
	s.userAddr[id] = addr
	s.userRoom[id] = room
	s.userName[id] = name
	s.m.Unlock()

	if err := r.OnPlayerJoin(Player{ID: id, Name: name}); err != nil {
		log.Printf("cannot join room %s: %v\n", room, err)
	}
}

func (s *server) OnUserLeave(id string) {
	s.m.Lock()
	rid := s.userRoom[id]
	name := s.userName[id]
	r, ok := s.rooms[rid]
	delete(s.userAddr, id)
	delete(s.userRoom, id)
	delete(s.userName, id)
	s.m.Unlock()

	if !ok {
		log.Printf("cannot get room for user id=%s\n", id)
		return
	}
	if err := r.OnPlayerLeave(Player{ID: id, Name: name}); err != nil {
		log.Printf("cannot leave room %s: %v\n", rid, err)
	}

	if r.IsEmpty() {
		s.m.Lock()
		delete(s.rooms, rid)
		s.m.Unlock()
	}
}

func (s *server) Send(playerID string, msg []byte) error {
	s.m.RLock()
	addr, ok := s.userAddr[playerID]
	s.m.RUnlock()
	if !ok {
		return fmt.Errorf("cannot get user addr with id=%s", playerID)
	}
	_, err := s.conn.WriteToUDP(msg, addr)
	return err
}

func (s *server) OnUserMessage(id string, msg []byte) {
	s.m.RLock()
	rid, ok := s.userRoom[id]
	r := s.rooms[rid]
	s.m.RUnlock()

	if !ok || r == nil {
		log.Printf("cannot get room for user id=%s\n", id)
		return
	}

	r.OnMessage(id, msg)
}

func (s *server) handle(buff []byte, addr *net.UDPAddr) {
	userMsg := UserMessage{}
	if err := decode(buff, &userMsg); err != nil {
		log.Printf("cannot parse user message: %v\n", err)
		return
	}

	switch {
	case userMsg.JoinMessage != nil:
		joinMsg := userMsg.JoinMessage
		log.Printf("user %s (%s) joins room %s\n", joinMsg.Name, joinMsg.ID, joinMsg.Room)
		s.OnUserJoin(joinMsg.ID, joinMsg.Name, joinMsg.Room, addr)
	case userMsg.LeaveMessage != nil:
		log.Printf("user %s leaves\n", userMsg.LeaveMessage.ID)
		s.OnUserLeave(userMsg.LeaveMessage.ID)
	case userMsg.RoomMessage != nil:
		s.OnUserMessage(userMsg.RoomMessage.ID, userMsg.RoomMessage.Message)
	}
}

func startServer(listen string, fps int, config blockfall.Config) {
	addr, err := net.ResolveUDPAddr("udp4", listen)
	if err != nil {
		log.Fatalf("cannot resolve %s: %v\n", listen, err)
	}

	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		log.Fatalf("cannot listen on %s: %v\n", listen, err)
	}
	log.Printf("listening on %v\n", conn.LocalAddr())

	gameServer := newServer(conn, fps, config)
	for {
		buff := make([]byte, maxDatagram)
		n, addr, err := conn.ReadFromUDP(buff)
		if err != nil {
			log.Printf("cannot read from udp: %v\n", err)
			continue
		}
		gameServer.handle(buff[:n], addr)
	}
}
