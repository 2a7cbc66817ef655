package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

// FileSystem resuelve los ejecutables de los procesos dentro de programs_path. Los inodos se comparten:
// dos búsquedas del mismo path devuelven el mismo Inode mientras haya referencias.
type FileSystem struct {
	mu     sync.Mutex
	root   string
	inodes map[string]*Inode
}

func NewFileSystem(root string) *FileSystem {
	return &FileSystem{
		root:   root,
		inodes: make(map[string]*Inode),
	}
}

// Inode es un ejecutable abierto. Se libera con Put.
type Inode struct {
	mu   sync.Mutex
	fs   *FileSystem
	path string
	file *os.File
	refs int
}

// LookupByPath abre el ejecutable path, relativo a la raíz. No se permite salir de la raíz.
func (fsys *FileSystem) LookupByPath(path string) (*Inode, error) {
	full, err := fsys.resolve(path)
	if err != nil {
		return nil, err
	}

	fsys.mu.Lock()
	defer fsys.mu.Unlock()

	if ip, exists := fsys.inodes[full]; exists {
		ip.refs++
		return ip, nil
	}

	file, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", models.ErrProgramNotFound, path)
		}
		return nil, fmt.Errorf("%w: abriendo %s: %v", models.ErrIO, path, err)
	}

	ip := &Inode{fs: fsys, path: full, file: file, refs: 1}
	fsys.inodes[full] = ip
	return ip, nil
}

func (fsys *FileSystem) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + path)
	full := filepath.Join(fsys.root, clean)
	rel, err := filepath.Rel(fsys.root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %s", models.ErrProgramNotFound, path)
	}
	return full, nil
}

// OpenInodes cuenta los inodos con referencias vivas.
func (fsys *FileSystem) OpenInodes() int {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	return len(fsys.inodes)
}

func (ip *Inode) Lock() {
	ip.mu.Lock()
}

func (ip *Inode) Unlock() {
	ip.mu.Unlock()
}

// ReadAt lee del ejecutable. Hay que tener el inodo lockeado.
func (ip *Inode) ReadAt(p []byte, off int64) (int, error) {
	return ip.file.ReadAt(p, off)
}

// Put suelta una referencia; con la última se cierra el archivo.
func (ip *Inode) Put() {
	fsys := ip.fs
	fsys.mu.Lock()
	defer fsys.mu.Unlock()

	ip.refs--
	if ip.refs > 0 {
		return
	}
	delete(fsys.inodes, ip.path)
	ip.file.Close()
}
