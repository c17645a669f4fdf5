package server

import "strings"

// listenAddr accepts a bare port ("8080"), ":8080" or "host:8080".
func listenAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	switch {
	case addr == "":
		return ":0"
	case strings.Contains(addr, ":"):
		return addr
	default:
		return ":" + addr
	}
}
