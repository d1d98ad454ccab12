package fstore

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
)

func TestOpenFStore(t *testing.T) {
	root := t.TempDir()

	st, err := OpenFStore(Config{Path: root, Private: "test"})
	if err != nil {
		t.Fatalf("OpenFStore error: %v", err)
	}
	if st.Main() != root+string(os.PathSeparator) {
		t.Errorf("Main() = %q; want %q", st.Main(),
			root+string(os.PathSeparator))
	}

	// "." means no private subfolder
	st2, err := OpenFStore(Config{Path: root, Private: "."})
	if err != nil {
		t.Fatalf("OpenFStore error: %v", err)
	}
	d, err := st2.NewDir("", "pfx-", "")
	if err != nil {
		t.Fatalf("NewDir error: %v", err)
	}
	if !strings.HasPrefix(d, root+string(os.PathSeparator)+"pfx-") {
		t.Errorf("NewDir path %q not directly under root", d)
	}
}

func TestNewDirUnique(t *testing.T) {
	st, err := OpenFStore(Config{Path: t.TempDir(), Private: "."})
	if err != nil {
		t.Fatalf("OpenFStore error: %v", err)
	}

	const workers = 8
	const perWorker = 32

	var mu sync.Mutex
	seen := make(map[string]struct{})

	var wg sync.WaitGroup
	errc := make(chan error, workers*perWorker)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				name, err := st.NewDir("d", "t-", "")
				if err != nil {
					errc <- err
					return
				}
				fi, err := os.Stat(name)
				if err != nil {
					errc <- err
					return
				}
				if !fi.IsDir() {
					errc <- fmt.Errorf("%s: not a directory", name)
					return
				}
				mu.Lock()
				_, dup := seen[name]
				seen[name] = struct{}{}
				mu.Unlock()
				if dup {
					t.Errorf("duplicate dir name %q", name)
				}
			}
		}()
	}
	wg.Wait()
	close(errc)
	for err := range errc {
		t.Fatalf("worker error: %v", err)
	}
	if len(seen) != workers*perWorker {
		t.Errorf("made %d dirs; want %d", len(seen), workers*perWorker)
	}
}

func TestMakeDir(t *testing.T) {
	root := t.TempDir()
	st, err := OpenFStore(Config{Path: root, Private: "."})
	if err != nil {
		t.Fatalf("OpenFStore error: %v", err)
	}
	if err = st.MakeDir("sub", 0700); err != nil {
		t.Fatalf("MakeDir error: %v", err)
	}
	fi, err := os.Stat(st.Main() + "sub")
	if err != nil || !fi.IsDir() {
		t.Fatalf("sub dir not made: %v", err)
	}
}
