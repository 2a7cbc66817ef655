package services

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

const (
	testPageSize  = 64
	testBlockSize = 16
	testHeapStart = 0x10000
)

type testSegment struct {
	vaddr  uint64
	data   []byte
	memsz  uint64
	flags  elf.ProgFlag
	filesz uint64 // si es 0 se usa len(data)
}

// buildElf arma un ELF64 little endian mínimo: encabezado, tabla de programas y los datos de cada
// segmento uno detrás del otro. No tiene secciones.
func buildElf(t *testing.T, segments []testSegment) []byte {
	t.Helper()

	const ehsize, phentsize = 64, 56
	dataOffset := uint64(ehsize + phentsize*len(segments))

	header := elf.Header64{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_RISCV),
		Version:   uint32(elf.EV_CURRENT),
		Phoff:     ehsize,
		Ehsize:    ehsize,
		Phentsize: phentsize,
		Phnum:     uint16(len(segments)),
	}
	copy(header.Ident[:], elf.ELFMAG)
	header.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	header.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	header.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, header); err != nil {
		t.Fatalf("Error escribiendo encabezado ELF: %v", err)
	}

	offset := dataOffset
	for _, seg := range segments {
		filesz := seg.filesz
		if filesz == 0 {
			filesz = uint64(len(seg.data))
		}
		prog := elf.Prog64{
			Type:   uint32(elf.PT_LOAD),
			Flags:  uint32(seg.flags),
			Off:    offset,
			Vaddr:  seg.vaddr,
			Paddr:  seg.vaddr,
			Filesz: filesz,
			Memsz:  seg.memsz,
			Align:  testPageSize,
		}
		if err := binary.Write(&buf, binary.LittleEndian, prog); err != nil {
			t.Fatalf("Error escribiendo program header: %v", err)
		}
		offset += uint64(len(seg.data))
	}
	for _, seg := range segments {
		buf.Write(seg.data)
	}
	return buf.Bytes()
}

func writeProgram(t *testing.T, dir string, name string, content []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), content, 0644); err != nil {
		t.Fatalf("Error escribiendo programa %s: %v", name, err)
	}
}

func testConfig(t *testing.T) models.Config {
	t.Helper()
	return models.Config{
		MemorySize:   testPageSize * 32,
		PageSize:     testPageSize,
		BlockSize:    testBlockSize,
		PsaStart:     0,
		PsaSize:      64,
		MaxHeap:      8,
		MaxResident:  2,
		ProgramsPath: t.TempDir(),
		DumpPath:     t.TempDir(),
		TlbEntries:   8,
		LogLevel:     "DEBUG",
	}
}

// newTestManager arma un MemoryManager con disco en memoria y un programa "prog" que es un ELF sin
// segmentos, suficiente para los procesos que solo usan heap.
func newTestManager(t *testing.T, cfg models.Config, device BlockDevice, clock Clock) *MemoryManager {
	t.Helper()
	if device == nil {
		device = NewMemBlockDevice(cfg.BlockSize, cfg.PsaSize)
	}
	writeProgram(t, cfg.ProgramsPath, "prog", buildElf(t, nil))

	manager, err := NewMemoryManager(cfg, device, clock)
	if err != nil {
		t.Fatalf("Error creando memoria: %v", err)
	}
	t.Cleanup(func() { manager.Close() })
	return manager
}

// newHeapProcess crea pid con pages páginas de heap registradas.
func newHeapProcess(t *testing.T, m *MemoryManager, pid uint, pages int) *Process {
	t.Helper()
	p, err := m.CreateProcess(pid, "prog", testHeapStart)
	if err != nil {
		t.Fatalf("Error creando proceso %d: %v", pid, err)
	}
	if _, err := m.Sbrk(pid, pages); err != nil {
		t.Fatalf("Error en sbrk de %d páginas: %v", pages, err)
	}
	return p
}

func heapPage(i int) uint64 {
	return testHeapStart + uint64(i)*testPageSize
}

func mustFault(t *testing.T, m *MemoryManager, pid uint, addr uint64, want models.FaultOutcome) {
	t.Helper()
	result := m.HandleFault(pid, addr)
	if result.Outcome != want {
		t.Fatalf("Fault en 0x%x: esperaba %s, obtuvo %s (%v)", addr, want, result.Outcome, result.Err)
	}
}

// fixedClock devuelve siempre el mismo instante, para forzar empates en LRU.
type fixedClock struct {
	now uint64
}

func (c fixedClock) Now() uint64 {
	return c.now
}

var errInjected = errors.New("falla inyectada")

// failingDevice envuelve un disco y hace fallar lecturas o escrituras a pedido.
type failingDevice struct {
	BlockDevice
	failReads  bool
	failWrites bool
}

func (d *failingDevice) ReadBlock(blockno int, buf []byte) error {
	if d.failReads {
		return errors.Join(models.ErrIO, errInjected)
	}
	return d.BlockDevice.ReadBlock(blockno, buf)
}

func (d *failingDevice) WriteBlock(blockno int, buf []byte) error {
	if d.failWrites {
		return errors.Join(models.ErrIO, errInjected)
	}
	return d.BlockDevice.WriteBlock(blockno, buf)
}

func traceKinds(events []TraceEvent) []TraceKind {
	kinds := make([]TraceKind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	return kinds
}

func allFramesFree(m *MemoryManager) bool {
	return m.Memory().FreeFrameCount() == m.Memory().TotalFrames()
}
