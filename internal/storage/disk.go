package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/vistoriafacil/imagens/internal/util"
)

// maxNameAttempts limita a busca por um sufixo sequencial livre.
const maxNameAttempts = 10000

// ErrNameSpaceExhausted indica que a busca sequencial esgotou as tentativas.
var ErrNameSpaceExhausted = errors.New("não foi possível gerar nome único")

// Disk persiste imagens em um diretório raiz local. O afero.Fs injetado
// permite trocar o backend nos testes; em produção é o sistema de arquivos
// do SO.
type Disk struct {
	fs   afero.Fs
	root string
}

// NewDisk garante a existência da raiz e devolve o armazenamento pronto.
func NewDisk(fsys afero.Fs, root string) (*Disk, error) {
	if root == "" {
		return nil, errors.New("storage: raiz de imagens obrigatória")
	}
	if err := fsys.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: criar raiz: %w", err)
	}
	return &Disk{fs: fsys, root: root}, nil
}

// Root devolve o caminho da raiz de imagens.
func (d *Disk) Root() string { return d.root }

// EnsureDir cria, se necessário, um subdiretório da raiz.
func (d *Disk) EnsureDir(dir string) error {
	return d.fs.MkdirAll(filepath.Join(d.root, dir), 0o755)
}

// NextSequentialName devolve o próximo nome livre no formato {prefix}-{n}.{ext}
// dentro de dir, com n a partir de max(1, start). A disponibilidade é testada
// com uma sonda create-exclusive, então o backend precisa honrar O_EXCL
// atomicamente. O nome devolvido não fica reservado: quem for gravar deve usar
// CreateNew e tratar fs.ErrExist.
func (d *Disk) NextSequentialName(dir, prefix, ext string, start int) (string, error) {
	if err := d.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("storage: %w", err)
	}

	n := start
	if n < 1 {
		n = 1
	}
	for attempts := 0; attempts < maxNameAttempts; attempts++ {
		candidate := fmt.Sprintf("%s-%d.%s", prefix, n, ext)
		full := filepath.Join(d.root, dir, candidate)

		f, err := d.fs.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			f.Close()
			_ = d.fs.Remove(full)
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("storage: sonda %s: %w", candidate, err)
		}
		n++
	}
	return "", ErrNameSpaceExhausted
}

// CreateNew grava data em dir/name criando o arquivo com O_EXCL. Nome já
// ocupado devolve erro que satisfaz errors.Is(err, fs.ErrExist); falha de
// escrita remove o resíduo para não deixar arquivo parcial.
func (d *Disk) CreateNew(dir, name string, data []byte) error {
	full := filepath.Join(d.root, dir, name)
	f, err := d.fs.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("storage: criar %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = d.fs.Remove(full)
		return fmt.Errorf("storage: gravar %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = d.fs.Remove(full)
		return fmt.Errorf("storage: gravar %s: %w", name, err)
	}
	return nil
}

// RootExists informa se a raiz de imagens está presente.
func (d *Disk) RootExists() bool {
	ok, err := afero.DirExists(d.fs, d.root)
	return err == nil && ok
}

// RootWritable confirma escrita real na raiz criando e removendo um arquivo de
// sonda, o que funciona em qualquer backend afero.
func (d *Disk) RootWritable() bool {
	probe := filepath.Join(d.root, ".probe-"+util.RandomHex(8))
	f, err := d.fs.OpenFile(probe, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return false
	}
	f.Close()
	_ = d.fs.Remove(probe)
	return true
}

// HTTPFileSystem expõe a raiz como http.FileSystem para o exportador estático.
func (d *Disk) HTTPFileSystem() http.FileSystem {
	return afero.NewHttpFs(d.fs).Dir(d.root)
}
