package main

import (
	"flag"
	"log"
	"net"
	"time"
)

const maxAttempts = 20

// waitfor blocks until a TCP dependency accepts connections, so that the
// server and worker containers can be ordered behind their stores.
func main() {
	host := flag.String("host", "localhost", "host of the dependency to probe")
	port := flag.String("port", "5432", "port of the dependency to probe")
	flag.Parse()

	addr := net.JoinHostPort(*host, *port)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
		if err == nil {
			conn.Close()
			log.Printf("dependency reachable on [%s]", addr)
			return
		}
		log.Printf("dependency not yet reachable on [%s] (attempt %d/%d): %v", addr, attempt, maxAttempts, err)
		time.Sleep(time.Second)
	}
	log.Panicf("dependency on [%s] stayed unreachable after %d attempts", addr, maxAttempts)
}
