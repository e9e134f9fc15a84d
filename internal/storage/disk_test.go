package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"
	"testing"

	"github.com/spf13/afero"
)

func newMemDisk(t *testing.T) (*Disk, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	d, err := NewDisk(fsys, "/var/imagens")
	if err != nil {
		t.Fatalf("new disk: %v", err)
	}
	return d, fsys
}

func TestNewDiskCreatesRoot(t *testing.T) {
	d, _ := newMemDisk(t)
	if !d.RootExists() {
		t.Fatalf("raiz deveria existir após NewDisk")
	}
	if !d.RootWritable() {
		t.Fatalf("raiz deveria ser gravável")
	}
	if d.Root() != "/var/imagens" {
		t.Fatalf("expected /var/imagens got %s", d.Root())
	}
}

func TestNewDiskRequiresRoot(t *testing.T) {
	if _, err := NewDisk(afero.NewMemMapFs(), ""); err == nil {
		t.Fatalf("expected error for empty root")
	}
}

func TestRootExistsAfterRemoval(t *testing.T) {
	d, fsys := newMemDisk(t)
	if err := fsys.RemoveAll("/var/imagens"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if d.RootExists() {
		t.Fatalf("raiz removida deveria reportar ausência")
	}
}

func TestNextSequentialName(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		start    int
		want     string
	}{
		{"diretório vazio", nil, 1, "7-1.jpg"},
		{"pula existentes", []string{"7-1.jpg", "7-2.jpg"}, 1, "7-3.jpg"},
		{"preenche buraco", []string{"7-1.jpg", "7-3.jpg"}, 1, "7-2.jpg"},
		{"início custom", []string{"7-5.jpg"}, 5, "7-6.jpg"},
		{"início abaixo de um", nil, -3, "7-1.jpg"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, fsys := newMemDisk(t)
			if err := fsys.MkdirAll("/var/imagens/d", 0o755); err != nil {
				t.Fatalf("mkdir: %v", err)
			}
			for _, name := range tc.existing {
				if err := afero.WriteFile(fsys, "/var/imagens/d/"+name, []byte("x"), 0o644); err != nil {
					t.Fatalf("seed: %v", err)
				}
			}

			got, err := d.NextSequentialName("d", "7", "jpg", tc.start)
			if err != nil {
				t.Fatalf("next: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s got %s", tc.want, got)
			}
			if ok, _ := afero.Exists(fsys, "/var/imagens/d/"+got); ok {
				t.Fatalf("arquivo de sonda ficou para trás")
			}
		})
	}
}

func TestNextSequentialNameCreatesDir(t *testing.T) {
	d, fsys := newMemDisk(t)
	if _, err := d.NextSequentialName("novo", "1", "png", 1); err != nil {
		t.Fatalf("next: %v", err)
	}
	ok, err := afero.DirExists(fsys, "/var/imagens/novo")
	if err != nil || !ok {
		t.Fatalf("diretório não foi criado (%v)", err)
	}
}

func TestNextSequentialNameExhausted(t *testing.T) {
	d, fsys := newMemDisk(t)
	if err := fsys.MkdirAll("/var/imagens/x", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for n := 1; n <= 10000; n++ {
		if err := afero.WriteFile(fsys, fmt.Sprintf("/var/imagens/x/9-%d.jpg", n), nil, 0o644); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if _, err := d.NextSequentialName("x", "9", "jpg", 1); !errors.Is(err, ErrNameSpaceExhausted) {
		t.Fatalf("expected ErrNameSpaceExhausted got %v", err)
	}
}

func TestCreateNewExclusive(t *testing.T) {
	d, fsys := newMemDisk(t)
	if err := d.EnsureDir("5"); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	if err := d.CreateNew("5", "5-1.jpg", []byte("abc")); err != nil {
		t.Fatalf("create: %v", err)
	}
	saved, err := afero.ReadFile(fsys, "/var/imagens/5/5-1.jpg")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(saved, []byte("abc")) {
		t.Fatalf("conteúdo gravado difere")
	}

	err = d.CreateNew("5", "5-1.jpg", []byte("outro"))
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected fs.ErrExist got %v", err)
	}
	saved, err = afero.ReadFile(fsys, "/var/imagens/5/5-1.jpg")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(saved, []byte("abc")) {
		t.Fatalf("conteúdo original foi alterado")
	}
}

// O MemMapFs não garante O_EXCL atômico; a disputa real roda no sistema de
// arquivos do SO.
func TestCreateNewConcurrentSingleWinner(t *testing.T) {
	d, err := NewDisk(afero.NewOsFs(), t.TempDir())
	if err != nil {
		t.Fatalf("new disk: %v", err)
	}
	if err := d.EnsureDir("c"); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	const n = 8
	var wg sync.WaitGroup
	wins := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := d.CreateNew("c", "1-1.jpg", []byte("x"))
			switch {
			case err == nil:
				wins <- struct{}{}
			case errors.Is(err, fs.ErrExist):
			default:
				t.Errorf("erro inesperado: %v", err)
			}
		}()
	}
	wg.Wait()
	close(wins)

	if len(wins) != 1 {
		t.Fatalf("expected exatamente 1 vencedor got %d", len(wins))
	}
}

func TestHTTPFileSystem(t *testing.T) {
	d, _ := newMemDisk(t)
	if err := d.EnsureDir("5"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := d.CreateNew("5", "5-1.jpg", []byte("imagem")); err != nil {
		t.Fatalf("create: %v", err)
	}

	f, err := d.HTTPFileSystem().Open("/5/5-1.jpg")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, []byte("imagem")) {
		t.Fatalf("conteúdo servido difere do gravado")
	}
}
