package main

import (
	"bytes"
	"encoding/gob"

	"github.com/jauhararifin/blockfall"
)

// maxDatagram bounds every read from the UDP socket.
const maxDatagram = 1024 * 1024

type JoinMessage struct {
	ID   string
	Name string
	Room string
}

type LeaveMessage struct {
	ID string
}

type RoomMessage struct {
	ID      string
	Message []byte
}

// UserMessage is what clients send to the server. Exactly one field is set.
type UserMessage struct {
	JoinMessage  *JoinMessage
	LeaveMessage *LeaveMessage
	RoomMessage  *RoomMessage
}

type InitGameMessage struct {
	Seed          map[string]int64
	Names         map[string]string
	FPS           int
	Width, Height int
}

// ActionMessage carries one key transition, or a restart request, from a
// player to its room.
type ActionMessage struct {
	Key     blockfall.Key
	Down    bool
	Restart bool
}

type GameStateUpdateMessage struct {
	State map[string]blockfall.State
}

func encode(v interface{}) ([]byte, error) {
	buff := &bytes.Buffer{}
	if err := gob.NewEncoder(buff).Encode(v); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

func decode(msg []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(msg)).Decode(v)
}
