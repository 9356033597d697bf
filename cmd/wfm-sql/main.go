// Copyright 2026 The go-tek Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wfm-sql runs SQL queries against the capture catalog,
// interactively or one-shot with -e.
package main // import "github.com/go-tek/scope/cmd/wfm-sql"

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/go-tek/scope/catalog"
)

func main() {
	log.SetPrefix("wfm-sql: ")
	log.SetFlags(0)

	var (
		dbname = flag.String("db", "captures", "name of the capture database")
		query  = flag.String("e", "", "query to execute (disables the interactive shell)")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: wfm-sql [OPTIONS]

ex:
 $> wfm-sql -db captures
 wfm-sql> SELECT path, frames FROM captures ORDER BY id DESC LIMIT 5
 $> wfm-sql -e "SELECT COUNT(*) FROM captures"

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	db, err := catalog.Open(*dbname)
	if err != nil {
		log.Fatalf("could not open capture db: %+v", err)
	}
	defer db.Close()

	if *query != "" {
		err := process(os.Stdout, db, *query)
		if err != nil {
			log.Fatalf("could not run query: %+v", err)
		}
		return
	}

	repl(os.Stdout, db)
}

func repl(w io.Writer, db *catalog.DB) {
	term := liner.NewLiner()
	defer term.Close()
	term.SetCtrlCAborts(true)

	for {
		q, err := term.Prompt("wfm-sql> ")
		if err != nil {
			if err == io.EOF || err == liner.ErrPromptAborted {
				fmt.Fprintf(w, "\n")
				return
			}
			log.Printf("could not read query: %+v", err)
			return
		}

		q = strings.TrimSpace(q)
		switch q {
		case "":
			continue
		case "quit", "exit", `\q`:
			return
		}
		term.AppendHistory(q)

		err = process(w, db, q)
		if err != nil {
			log.Printf("could not run query %q: %+v", q, err)
		}
	}
}

func process(w io.Writer, db *catalog.DB, query string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("could not execute query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("could not retrieve columns: %w", err)
	}
	fmt.Fprintf(w, "%s\n", strings.Join(cols, " | "))

	var (
		n    = 0
		vals = make([]interface{}, len(cols))
		args = make([]interface{}, len(cols))
	)
	for i := range vals {
		args[i] = &vals[i]
	}

	for rows.Next() {
		err = rows.Scan(args...)
		if err != nil {
			return fmt.Errorf("could not scan row %d: %w", n, err)
		}

		out := make([]string, len(vals))
		for i, v := range vals {
			out[i] = cell(v)
		}
		fmt.Fprintf(w, "%s\n", strings.Join(out, " | "))
		n++
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("could not scan rows: %w", err)
	}

	fmt.Fprintf(w, "(%d rows)\n", n)
	return nil
}

func cell(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
