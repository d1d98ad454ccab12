package main

import (
	"flag"
	"fmt"
	"io"
	"mime"
	"os"

	"github.com/davecgh/go-spew/spew"

	fl "github.com/mikedilger/mime-multipart/lib/filelogger"
	. "github.com/mikedilger/mime-multipart/lib/logx"
	"github.com/mikedilger/mime-multipart/lib/mail"
	"github.com/mikedilger/mime-multipart/lib/multipart"
)

func detachAll(mlg LogToX, nodes []multipart.Node) {
	for _, nd := range nodes {
		switch x := nd.(type) {
		case *multipart.FilePart:
			mlg.LogPrintf(INFO, "keeping %q (%d bytes)", x.Path, x.Size)
			x.Detach()
		case *multipart.Multipart:
			detachAll(mlg, x.Children)
		}
	}
}

func main() {
	boundary := flag.String("boundary", "",
		"parse input as a bare body delimited by this boundary value")
	files := flag.Bool("files", false, "extract every part to disk")
	keep := flag.Bool("keep", false, "do not delete extracted file parts")
	rewrite := flag.String("rewrite", "",
		"write the tree back out (plain or chunked) instead of dumping it")

	flag.Parse()

	lgr, err := fl.NewFileLogger(os.Stderr, DEBUG, fl.ColorAuto)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fl.NewFileLogger error: %v\n", err)
		os.Exit(1)
	}
	mlg := NewLogToX(lgr, "demodump")

	switch *rewrite {
	case "", "plain", "chunked":
	default:
		mlg.LogPrintln(CRITICAL, "bad -rewrite mode:", *rewrite)
		os.Exit(1)
	}

	var r io.Reader = os.Stdin
	if fn := flag.Arg(0); fn != "" && fn != "-" {
		f, err := os.Open(fn)
		if err != nil {
			mlg.LogPrintln(CRITICAL, "os.Open error:", err)
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}

	pp := multipart.DefaultParserParams
	pp.Logger = mlg

	var nodes []multipart.Node
	if *boundary != "" {
		h := mail.OneHeader("Content-Type", mime.FormatMediaType(
			"multipart/mixed", map[string]string{"boundary": *boundary}))
		nodes, err = pp.ReadMultipartBody(r, h, *files)
	} else {
		nodes, err = pp.ReadMultipart(r, *files)
	}
	if err != nil {
		// the parser already deleted anything it streamed to disk
		mlg.LogPrintln(CRITICAL, "parse error:", err)
		os.Exit(1)
	}
	cleanup := func() {
		if *keep {
			detachAll(mlg, nodes)
		}
		multipart.RemoveAll(nodes)
	}
	defer cleanup()

	if *rewrite == "" {
		spew.Fdump(os.Stdout, nodes)
		return
	}

	bnd := multipart.GenerateBoundary()
	ct := mime.FormatMediaType(
		"multipart/mixed", map[string]string{"boundary": string(bnd)})
	_, err = fmt.Fprintf(os.Stdout, "Content-Type: %s\r\n\r\n", ct)
	if err == nil {
		if *rewrite == "chunked" {
			err = multipart.WriteMultipartChunked(os.Stdout, bnd, nodes)
		} else {
			_, err = multipart.WriteMultipart(os.Stdout, bnd, nodes)
		}
	}
	if err != nil {
		mlg.LogPrintln(CRITICAL, "write error:", err)
		cleanup()
		os.Exit(1)
	}
}
