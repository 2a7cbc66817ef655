package services

import (
	"debug/elf"
	"fmt"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

// ElfLoader carga bajo demanda las páginas de la imagen ejecutable de un proceso.
type ElfLoader struct {
	fs       *FileSystem
	pageSize uint64
	tracer   *Tracer
}

func NewElfLoader(fs *FileSystem, pageSize int, tracer *Tracer) *ElfLoader {
	return &ElfLoader{fs: fs, pageSize: uint64(pageSize), tracer: tracer}
}

// LoadPage mapea y carga la página addr desde el ejecutable del proceso. Si addr no cae en ningún
// segmento cargable devuelve una violación de invariante sin mapear nada.
func (l *ElfLoader) LoadPage(p *Process, addr uint64) error {
	ip, err := l.fs.LookupByPath(p.Name)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrIO, err)
	}
	defer ip.Put()

	ip.Lock()
	defer ip.Unlock()

	file, err := elf.NewFile(ip)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", models.ErrMalformedImage, p.Name, err)
	}

	segments, err := l.loadSegments(file)
	if err != nil {
		return fmt.Errorf("%s: %w", p.Name, err)
	}

	seg := findSegment(segments, addr)
	if seg == nil {
		return fmt.Errorf("%w: la dirección 0x%x no pertenece al heap ni a un segmento de %s",
			models.ErrInvariantViolation, addr, p.Name)
	}

	end := seg.Vaddr + seg.Memsz
	copyLen := min(l.pageSize, end-addr)
	offset := addr - seg.Vaddr

	if err := p.PageTable.MapPage(addr, copyLen, flagsToPerm(seg.Flags)); err != nil {
		return err
	}
	l.tracer.LoadSegment(p.PID, addr, seg.Off+offset, copyLen)

	// Lo que excede Filesz es .bss y queda en cero.
	var fileLen uint64
	if offset < seg.Filesz {
		fileLen = min(copyLen, seg.Filesz-offset)
	}
	if fileLen == 0 {
		return nil
	}

	buf := make([]byte, fileLen)
	if n, err := ip.ReadAt(buf, int64(seg.Off+offset)); uint64(n) != fileLen {
		p.PageTable.UnmapPage(addr, 1)
		return fmt.Errorf("%w: lectura de %d bytes en offset %d de %s: leídos %d (%v)",
			models.ErrIO, fileLen, seg.Off+offset, p.Name, n, err)
	}
	if err := p.PageTable.CopyToUser(addr, buf); err != nil {
		p.PageTable.UnmapPage(addr, 1)
		return err
	}
	return nil
}

// loadSegments valida todos los segmentos PT_LOAD antes de mapear cualquier cosa, así una tabla
// inconsistente se rechaza sin tocar el espacio de direcciones.
func (l *ElfLoader) loadSegments(file *elf.File) ([]*elf.Prog, error) {
	segments := make([]*elf.Prog, 0, len(file.Progs))
	for i, ph := range file.Progs {
		if ph.Type != elf.PT_LOAD {
			continue
		}
		if ph.Memsz < ph.Filesz {
			return nil, fmt.Errorf("%w: segmento %d con memsz %d < filesz %d",
				models.ErrMalformedImage, i, ph.Memsz, ph.Filesz)
		}
		if ph.Vaddr+ph.Memsz < ph.Vaddr {
			return nil, fmt.Errorf("%w: segmento %d desborda el espacio de direcciones", models.ErrMalformedImage, i)
		}
		if ph.Vaddr%l.pageSize != 0 {
			return nil, fmt.Errorf("%w: segmento %d en 0x%x no está alineado a página",
				models.ErrMalformedImage, i, ph.Vaddr)
		}
		segments = append(segments, ph)
	}
	return segments, nil
}

func findSegment(segments []*elf.Prog, addr uint64) *elf.Prog {
	for _, ph := range segments {
		if addr >= ph.Vaddr && addr < ph.Vaddr+ph.Memsz {
			return ph
		}
	}
	return nil
}

// flagsToPerm traduce los flags del segmento. Toda página de la imagen es legible y de usuario.
func flagsToPerm(flags elf.ProgFlag) models.Perm {
	perm := models.PermRead | models.PermUser
	if flags&elf.PF_W != 0 {
		perm |= models.PermWrite
	}
	if flags&elf.PF_X != 0 {
		perm |= models.PermExec
	}
	return perm
}
