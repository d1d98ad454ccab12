package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/davecgh/go-spew/spew"

	fl "github.com/mikedilger/mime-multipart/lib/filelogger"
	"github.com/mikedilger/mime-multipart/lib/form"
	"github.com/mikedilger/mime-multipart/lib/fstore"
	"github.com/mikedilger/mime-multipart/lib/hashtools"
	"github.com/mikedilger/mime-multipart/lib/logx"
	. "github.com/mikedilger/mime-multipart/lib/logx"
	"github.com/mikedilger/mime-multipart/lib/mail"
)

type serverCfg struct {
	Listen            string
	UploadDir         string
	StoreDir          string
	LogLevel          string
	TextFields        []string
	FileFields        []string
	MaxMemory         int
	MaxFields         int
	MaxFileCount      int
	MaxFileSingleSize int64
	MaxFileAllSize    int64
	MaxPartHeaders    int
}

var defaultServerCfg = serverCfg{
	Listen:     "127.0.0.1:1234",
	UploadDir:  "_demo/uploads",
	StoreDir:   "_demo/store",
	LogLevel:   "debug",
	TextFields: []string{"name", "comment"},
	FileFields: []string{"file", "files"},
}

func parseLogLevel(s string) (logx.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "notice":
		return NOTICE, nil
	case "warn":
		return WARN, nil
	case "error":
		return ERROR, nil
	case "critical":
		return CRITICAL, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>upload test</title></head>
<body>
<form action="/upload" method="post" enctype="multipart/form-data">
<p>name: <input type="text" name="name"></p>
<p>comment: <input type="text" name="comment"></p>
<p>file(s): <input type="file" name="file" multiple></p>
<p><input type="submit" value="post it"></p>
</form>
</body>
</html>
`

type storedFile struct {
	Field string `json:"field"`
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Size  int64  `json:"size"`
	Hash  string `json:"hash"`
	Path  string `json:"path"`
}

type uploadServ struct {
	log        LogToX
	fp         form.ParserParams
	textFields []string
	fileFields []string
	uploadDir  string
}

func (s *uploadServ) handlePost(w http.ResponseWriter, r *http.Request) {
	ct, param, e := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if e != nil {
		http.Error(w,
			fmt.Sprintf("failed to parse content type: %v", e),
			http.StatusBadRequest)
		return
	}
	if ct != "multipart/form-data" || param["boundary"] == "" {
		http.Error(w, "bad Content-Type", http.StatusBadRequest)
		return
	}

	f, err := s.fp.ParseForm(
		r.Body, mail.OneHeader("Content-Type", r.Header.Get("Content-Type")),
		s.textFields, s.fileFields)
	if err != nil {
		http.Error(w,
			fmt.Sprintf("error parsing form: %v", err),
			http.StatusBadRequest)
		return
	}
	defer f.RemoveAll()

	lw := logx.NewWriteToLog(s.log, DEBUG)
	spew.Fdump(lw, f.Values, f.Files)
	lw.Close()

	reply := struct {
		Values map[string][]string `json:"values"`
		Files  []storedFile        `json:"files"`
	}{Values: f.Values}

	for field, files := range f.Files {
		for i := range files {
			ff := &files[i]

			o, err := ff.Open()
			if err != nil {
				http.Error(w,
					fmt.Sprintf("failed to store file: %v", err),
					http.StatusInternalServerError)
				return
			}
			hash, err := hashtools.MakeFileHash(o)
			o.Close()
			if err != nil {
				http.Error(w,
					fmt.Sprintf("failed to store file: %v", err),
					http.StatusInternalServerError)
				return
			}

			// FileName went through path stripping already so the
			// extension can't climb out of the upload dir
			dest := filepath.Join(
				s.uploadDir, hash+strings.ToLower(filepath.Ext(ff.FileName)))
			err = os.Rename(ff.FP.Path, dest)
			if err != nil {
				http.Error(w,
					fmt.Sprintf("failed to store file: %v", err),
					http.StatusInternalServerError)
				return
			}
			s.log.LogPrintf(INFO,
				"stored %q (%d bytes) as %q", ff.FileName, ff.Size, dest)

			reply.Files = append(reply.Files, storedFile{
				Field: field,
				Name:  ff.FileName,
				Type:  ff.ContentType,
				Size:  ff.Size,
				Hash:  hash,
				Path:  dest,
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	je := json.NewEncoder(w)
	je.SetIndent("", "  ")
	err = je.Encode(&reply)
	if err != nil {
		s.log.LogPrintln(ERROR, "error writing reply:", err)
	}
}

func main() {
	var err error
	cfgfile := flag.String("cfg", "", "TOML config file")
	listen := flag.String("listen", "", "listen address override")

	flag.Parse()

	cfg := defaultServerCfg
	if *cfgfile != "" {
		b, err := os.ReadFile(*cfgfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read %q: %v\n", *cfgfile, err)
			os.Exit(1)
		}
		_, err = toml.Decode(string(b), &cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse %q: %v\n", *cfgfile, err)
			os.Exit(1)
		}
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	lvl, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad loglevel: %v\n", err)
		os.Exit(1)
	}
	lgr, err := fl.NewFileLogger(os.Stderr, lvl, fl.ColorAuto)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fl.NewFileLogger error: %v\n", err)
		os.Exit(1)
	}
	mlg := NewLogToX(lgr, "main")
	mlg.LogPrint(DEBUG, "testing DEBUG log message")
	mlg.LogPrint(INFO, "testing INFO log message")
	mlg.LogPrint(NOTICE, "testing NOTICE log message")
	mlg.LogPrint(WARN, "testing WARN log message")
	mlg.LogPrint(ERROR, "testing ERROR log message")
	mlg.LogPrint(CRITICAL, "testing CRITICAL log message")

	st, err := fstore.OpenFStore(fstore.Config{
		Path:    cfg.StoreDir,
		Private: "demoserv",
	})
	if err != nil {
		mlg.LogPrintln(CRITICAL, "fstore.OpenFStore error:", err)
		os.Exit(1)
	}
	err = os.MkdirAll(cfg.UploadDir, 0777)
	if err != nil {
		mlg.LogPrintln(CRITICAL, "os.MkdirAll error:", err)
		os.Exit(1)
	}

	fp := form.DefaultParserParams
	if cfg.MaxMemory > 0 {
		fp.MaxMemory = cfg.MaxMemory
	}
	if cfg.MaxFields > 0 {
		fp.MaxFields = cfg.MaxFields
	}
	if cfg.MaxFileCount > 0 {
		fp.MaxFileCount = cfg.MaxFileCount
	}
	fp.MaxFileSingleSize = cfg.MaxFileSingleSize
	fp.MaxFileAllSize = cfg.MaxFileAllSize
	fp.Multipart.MaxPartHeaders = cfg.MaxPartHeaders
	fp.Multipart.Store = &st
	fp.Multipart.Logger = NewLogToX(lgr, "multipart")

	us := &uploadServ{
		log:        NewLogToX(lgr, "web"),
		fp:         fp,
		textFields: cfg.TextFields,
		fileFields: cfg.FileFields,
		uploadDir:  cfg.UploadDir,
	}

	sm := http.NewServeMux()
	sm.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, indexPage)
	})
	sm.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "bad method", http.StatusMethodNotAllowed)
			return
		}
		us.handlePost(w, r)
	})

	server := &http.Server{
		Addr:           cfg.Listen,
		Handler:        sm,
		MaxHeaderBytes: 1 << 20,
	}

	// graceful shutdown by signal
	killc := make(chan os.Signal, 2)
	signal.Notify(killc, os.Interrupt, syscall.SIGTERM)
	go func(c chan os.Signal) {
		for {
			s := <-c
			switch s {
			case os.Interrupt, syscall.SIGTERM:
				signal.Reset(os.Interrupt, syscall.SIGTERM)
				fmt.Fprintf(os.Stderr, "killing server\n")
				if server != nil {
					server.Shutdown(context.Background())
				}
				return
			}
		}
	}(killc)

	mlg.LogPrintf(NOTICE, "serving HTTP on %s", cfg.Listen)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		mlg.LogPrintln(ERROR, "error from ListenAndServe:", err)
	}
}
