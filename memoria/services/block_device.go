package services

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

// BlockDevice es la capa de almacenamiento que usa el swap. Los índices son relativos al área de swap:
// el bloque 0 es el primer bloque de la PSA.
type BlockDevice interface {
	ReadBlock(blockno int, buf []byte) error
	WriteBlock(blockno int, buf []byte) error
	BlockSize() int
}

// FileBlockDevice implementa BlockDevice sobre el archivo de swap. El área empieza en el bloque start
// del archivo y tiene blocks bloques; no hay encabezado ni número mágico.
type FileBlockDevice struct {
	mu        sync.RWMutex
	file      *os.File
	path      string
	blockSize int
	start     int
	blocks    int
	delay     time.Duration
}

// OpenFileBlockDevice abre (o crea) el archivo de swap y lo extiende hasta cubrir el área completa.
func OpenFileBlockDevice(path string, blockSize, start, blocks int, delay time.Duration) (*FileBlockDevice, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("no se pudo abrir swapfile %s: %w", path, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("no se pudo obtener tamaño de swapfile: %w", err)
	}

	needed := int64(start+blocks) * int64(blockSize)
	if stat.Size() < needed {
		if err := file.Truncate(needed); err != nil {
			file.Close()
			return nil, fmt.Errorf("no se pudo extender swapfile a %d bytes: %w", needed, err)
		}
	}

	return &FileBlockDevice{
		file:      file,
		path:      path,
		blockSize: blockSize,
		start:     start,
		blocks:    blocks,
		delay:     delay,
	}, nil
}

func (d *FileBlockDevice) BlockSize() int {
	return d.blockSize
}

func (d *FileBlockDevice) offset(blockno int, buf []byte) (int64, error) {
	if blockno < 0 || blockno >= d.blocks {
		return 0, fmt.Errorf("%w: bloque %d fuera del área de swap (%d bloques)", models.ErrIO, blockno, d.blocks)
	}
	if len(buf) != d.blockSize {
		return 0, fmt.Errorf("%w: buffer de %d bytes para bloque de %d", models.ErrIO, len(buf), d.blockSize)
	}
	return int64(d.start+blockno) * int64(d.blockSize), nil
}

// ReadBlock lee un bloque completo; una lectura corta es un error.
func (d *FileBlockDevice) ReadBlock(blockno int, buf []byte) error {
	off, err := d.offset(blockno, buf)
	if err != nil {
		return err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.file == nil {
		return fmt.Errorf("%w: swapfile cerrado", models.ErrIO)
	}

	time.Sleep(d.delay)
	if _, err := d.file.ReadAt(buf, off); err != nil {
		return fmt.Errorf("%w: lectura del bloque %d: %v", models.ErrIO, blockno, err)
	}
	return nil
}

func (d *FileBlockDevice) WriteBlock(blockno int, buf []byte) error {
	off, err := d.offset(blockno, buf)
	if err != nil {
		return err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.file == nil {
		return fmt.Errorf("%w: swapfile cerrado", models.ErrIO)
	}

	time.Sleep(d.delay)
	if _, err := d.file.WriteAt(buf, off); err != nil {
		return fmt.Errorf("%w: escritura del bloque %d: %v", models.ErrIO, blockno, err)
	}
	return nil
}

func (d *FileBlockDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.file == nil {
		return nil
	}
	err := d.file.Sync()
	if closeErr := d.file.Close(); err == nil {
		err = closeErr
	}
	d.file = nil
	return err
}

// MemBlockDevice es un disco en memoria. Sirve para correr memoria sin swapfile y en los tests.
type MemBlockDevice struct {
	mu        sync.Mutex
	data      []byte
	blockSize int
}

func NewMemBlockDevice(blockSize, blocks int) *MemBlockDevice {
	return &MemBlockDevice{
		data:      make([]byte, blockSize*blocks),
		blockSize: blockSize,
	}
}

func (d *MemBlockDevice) BlockSize() int {
	return d.blockSize
}

func (d *MemBlockDevice) bounds(blockno int, buf []byte) (int, error) {
	if blockno < 0 || (blockno+1)*d.blockSize > len(d.data) {
		return 0, fmt.Errorf("%w: bloque %d fuera del disco", models.ErrIO, blockno)
	}
	if len(buf) != d.blockSize {
		return 0, fmt.Errorf("%w: buffer de %d bytes para bloque de %d", models.ErrIO, len(buf), d.blockSize)
	}
	return blockno * d.blockSize, nil
}

func (d *MemBlockDevice) ReadBlock(blockno int, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	off, err := d.bounds(blockno, buf)
	if err != nil {
		return err
	}
	copy(buf, d.data[off:off+d.blockSize])
	return nil
}

func (d *MemBlockDevice) WriteBlock(blockno int, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	off, err := d.bounds(blockno, buf)
	if err != nil {
		return err
	}
	copy(d.data[off:off+d.blockSize], buf)
	return nil
}
