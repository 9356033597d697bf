// Copyright 2026 The go-tek Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wfm-watch monitors a spool directory for waveform captures.
//
// Captures are probed on a fixed interval; once a file stops growing it
// is decoded and a summary is logged. Files that repeatedly fail to
// decode trigger an alert mail. A small JSON protocol on -addr reports
// the watcher status.
package main // import "github.com/go-tek/scope/cmd/wfm-watch"

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	mail "gopkg.in/gomail.v2"

	"github.com/go-tek/scope/internal/mmap"
	"github.com/go-tek/scope/wfm"
)

func main() {
	var (
		addr = flag.String("addr", ":8867", "[ip]:port to listen on")
		dir  = flag.String("dir", ".", "directory to monitor")
		freq = flag.Duration("freq", 30*time.Second, "probing interval")
	)

	flag.Parse()

	log.SetPrefix("wfm-watch: ")
	log.SetFlags(0)

	run(*addr, *dir, *freq)
}

func run(addr, dir string, freq time.Duration) {
	srv, err := newServer(addr, dir, freq)
	if err != nil {
		log.Fatalf("could not create server: %+v", err)
	}
	log.Printf("monitoring %q every %v...", dir, freq)
	srv.run()
}

// maxAlerts is the number of decode failures tolerated per file before
// giving up on it and sending an alert.
const maxAlerts = 5

type server struct {
	conn net.Listener
	quit chan int
	once sync.Once

	dir  string
	freq time.Duration

	mu      sync.Mutex
	done    map[string]bool // processed (or given up) capture files
	alerts  map[string]int  // decode failures per file
	decoded int
	failed  int
}

func newServer(addr, dir string, freq time.Duration) (*server, error) {
	conn, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not listen on %q: %w", addr, err)
	}
	return &server{
		conn:   conn,
		quit:   make(chan int),
		dir:    dir,
		freq:   freq,
		done:   make(map[string]bool),
		alerts: make(map[string]int),
	}, nil
}

func (srv *server) run() {
	defer srv.conn.Close()

	go srv.monitor()

	for {
		conn, err := srv.conn.Accept()
		if err != nil {
			select {
			case <-srv.quit:
				return
			default:
				log.Printf("could not accept connection: %+v", err)
				continue
			}
		}
		go srv.handle(conn)
	}
}

func (srv *server) handle(conn net.Conn) {
	defer conn.Close()

	for {
		var (
			req Request
			err = json.NewDecoder(conn).Decode(&req)
		)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("could not decode command: %+v", err)
			}
			return
		}
		switch req.Name {
		case "status":
			decoded, failed := srv.stats()
			_ = json.NewEncoder(conn).Encode(Reply{
				Msg: fmt.Sprintf("decoded=%d failed=%d", decoded, failed),
			})
		case "stop":
			log.Printf("stopping...")
			_ = json.NewEncoder(conn).Encode(Reply{Msg: "ok"})
			srv.close()
			return
		default:
			log.Printf("unknown command %q", req.Name)
			_ = json.NewEncoder(conn).Encode(Reply{Err: "unknown command"})
		}
	}
}

func (srv *server) close() {
	srv.once.Do(func() {
		close(srv.quit)
		srv.conn.Close()
	})
}

type Request struct {
	Name string   `json:"cmd"`
	Args []string `json:"args"`
}

type Reply struct {
	Msg string `json:"msg"`
	Err string `json:"err,omitempty"`
}

func (srv *server) monitor() {
	var (
		tick  = time.NewTicker(srv.freq)
		table = make(map[string]int64)
	)
	defer tick.Stop()

	for {
		select {
		case <-srv.quit:
			return
		case <-tick.C:
			cur, err := list(srv.dir)
			if err != nil {
				log.Printf("could not list captures: %+v", err)
				continue
			}
			for _, fname := range settled(table, cur) {
				srv.process(fname)
			}
			table = cur
		}
	}
}

func list(dir string) (map[string]int64, error) {
	table := make(map[string]int64)
	glob := filepath.Join(dir, "*.wfm")
	files, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("could not glob %q: %w", glob, err)
	}
	for _, fname := range files {
		fi, err := os.Stat(fname)
		if err != nil {
			return nil, fmt.Errorf("could not stat %q: %w", fname, err)
		}
		table[fname] = fi.Size()
	}
	return table, nil
}

// settled returns the files whose size did not change between the two
// probes, in sorted order.
func settled(ref, chk map[string]int64) []string {
	var fnames []string
	for fname, size := range chk {
		refsz, ok := ref[fname]
		if !ok {
			// file just appeared; probe again later.
			continue
		}
		if refsz == size {
			fnames = append(fnames, fname)
		}
	}
	sort.Strings(fnames)
	return fnames
}

func (srv *server) process(fname string) {
	if srv.isDone(fname) {
		return
	}

	hdr, err := decode(fname)
	if err != nil {
		if srv.fail(fname) {
			log.Printf("giving up on %q: %+v", fname, err)
			srv.alertMail(fname, err)
			return
		}
		log.Printf("could not decode %q: %+v", fname, err)
		return
	}

	srv.finish(fname)
	log.Printf("decoded %q: %s, %d frame(s), %d sample(s)",
		fname, hdr.Version, hdr.Frames, hdr.Samples,
	)
}

func decode(fname string) (wfm.Header, error) {
	f, err := mmap.Open(fname)
	if err != nil {
		return wfm.Header{}, fmt.Errorf("could not open capture: %w", err)
	}
	defer f.Close()

	var w wfm.WFM
	err = wfm.NewDecoder(f.Bytes()).Decode(&w)
	if err != nil {
		return wfm.Header{}, err
	}
	return w.Header, nil
}

func (srv *server) isDone(fname string) bool {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return srv.done[fname]
}

// fail records a decode failure for fname and reports whether to give
// up on the file.
func (srv *server) fail(fname string) bool {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.alerts[fname]++
	if srv.alerts[fname] < maxAlerts {
		return false
	}
	srv.done[fname] = true
	srv.failed++
	return true
}

func (srv *server) finish(fname string) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.done[fname] = true
	srv.decoded++
}

func (srv *server) stats() (decoded, failed int) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return srv.decoded, srv.failed
}

var (
	alertMailUsr  = os.Getenv("MAIL_USERNAME")
	alertMailPwd  = os.Getenv("MAIL_PASSWORD")
	alertMailSrv  = os.Getenv("MAIL_SERVER")
	alertMailPort = atoi(os.Getenv("MAIL_PORT"))
	alertMailTgts = strings.Split(os.Getenv("MAIL_TGTS"), ",")
)

func (srv *server) alertMail(fname string, derr error) {
	if alertMailUsr == "" || alertMailPwd == "" ||
		alertMailSrv == "" || alertMailPort == 0 {
		log.Printf("could not send mail alert: missing credentials")
		return
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", alertMailUsr)
	msg.SetHeader("Bcc", alertMailTgts...)
	msg.SetHeader("Subject", fmt.Sprintf("[wfm-watch] capture alert: %q", fname))
	msg.SetBody("text/plain", fmt.Sprintf("file: %q\nerror: %+v\nfreq: %v",
		fname, derr, srv.freq,
	))

	dial := mail.NewDialer(alertMailSrv, alertMailPort, alertMailUsr, alertMailPwd)
	dial.TLSConfig = &tls.Config{
		InsecureSkipVerify: true,
	}
	err := dial.DialAndSend(msg)
	if err != nil {
		log.Printf("could not send mail alert: %+v", err)
	}
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
