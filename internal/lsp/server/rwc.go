package server

import (
	"os"
)

// Stdio is the transport used when the editor spawns the server: requests
// arrive on stdin and responses leave on stdout. Closing it is a no-op, the
// process owns both streams.
type Stdio struct{}

func (Stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (Stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (Stdio) Close() error                { return nil }
