package fsys

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"

	"9fans.net/go/plan9/client"
	"github.com/fhs/mux9p"
)

// Post serves docs as the 9P service name in the current namespace,
// where 9P clients can mount it. Errors from the multiplexer are sent
// on the returned channel.
func Post(name string, docs *Docs, opts ...Option) (*Server, <-chan error, error) {
	if name == "" {
		return nil, nil, fmt.Errorf("empty service name")
	}
	ns := client.Namespace()
	if err := os.MkdirAll(ns, 0700); err != nil {
		return nil, nil, err
	}
	addr := filepath.Join(ns, name)

	p0, p1 := net.Pipe()
	fs := NewServer(p1, docs, opts...)
	errc := make(chan error, 2)
	go func() {
		if err := mux9p.Listen("unix", addr, p0, nil); err != nil {
			errc <- fmt.Errorf("9P multiplexer failed: %w", err)
		}
	}()
	go func() {
		if err := fs.Serve(); err != nil {
			errc <- err
		}
	}()
	log.Printf("serving %d documents at %s", len(docs.All()), addr)
	return fs, errc, nil
}
