package main

import (
	"flag"
	"log"
	"time"

	"github.com/jauhararifin/blockfall"
)

func main() {
	isServer := flag.Bool("server", false, "run server")
	listen := flag.String("listen", ":8123", "server listen address")
	host := flag.String("host", "localhost:8123", "host")
	name := flag.String("name", "", "name")
	room := flag.String("room", "", "room")
	fps := flag.Int("fps", 30, "server ticks per second")
	fall := flag.Float64("fall", 1, "fall speed in cells per second")
	softDrop := flag.Float64("softdrop", 20, "soft drop speed in cells per second")
	clearDelay := flag.Duration("clear-delay", 200*time.Millisecond, "pause between clearing rows and collapsing")
	flag.Parse()

	if *isServer {
		if *fps <= 0 {
			log.Fatalf("fps must be positive, got %d\n", *fps)
		}
		config := blockfall.DefaultConfig()
		config.FallSpeed = *fall
		config.SoftDropSpeed = *softDrop
		config.ClearDelay = *clearDelay
		if err := config.Validate(); err != nil {
			log.Fatalf("invalid game config: %v\n", err)
		}
		startServer(*listen, *fps, config)
	} else {
		startClient(*host, *name, *room)
	}
}
