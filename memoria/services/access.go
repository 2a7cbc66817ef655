package services

import (
	"fmt"
	"log/slog"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

// ReadUser simula una lectura del proceso: traduce página por página (TLB, tabla, fault) y copia.
func (m *MemoryManager) ReadUser(pid uint, addr uint64, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("tamaño de lectura inválido: %d", size)
	}
	out := make([]byte, size)
	err := m.access(pid, addr, size, false, func(frame []byte, done int) {
		copy(out[done:], frame)
	})
	if err != nil {
		return nil, err
	}
	slog.Info(fmt.Sprintf("## PID: %d - Lectura - Dir. Virtual: 0x%x - Tamaño: %d", pid, addr, size))
	return out, nil
}

// WriteUser simula una escritura del proceso. Escribir en una página sin permiso de escritura es fatal.
func (m *MemoryManager) WriteUser(pid uint, addr uint64, data []byte) error {
	err := m.access(pid, addr, len(data), true, func(frame []byte, done int) {
		copy(frame, data[done:])
	})
	if err != nil {
		return err
	}
	slog.Info(fmt.Sprintf("## PID: %d - Escritura - Dir. Virtual: 0x%x - Tamaño: %d", pid, addr, len(data)))
	return nil
}

func (m *MemoryManager) access(pid uint, addr uint64, size int, write bool, fn func(frame []byte, done int)) error {
	p, err := m.processes.Get(pid)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Killed {
		return fmt.Errorf("PID %d: %w", pid, models.ErrProcessKilled)
	}

	pageSize := uint64(m.config.PageSize)
	done := 0
	for done < size {
		va := addr + uint64(done)
		page := va - va%pageSize

		entry, err := m.translate(p, page, write)
		if err != nil {
			return err
		}

		offset := va - page
		n := min(int(pageSize-offset), size-done)
		fn(m.memory.Frame(entry.Frame)[offset:offset+uint64(n)], done)
		done += n
	}
	return nil
}

// translate resuelve page como lo haría la MMU: TLB, tabla de páginas y, si no está mapeada, un fault
// seguido de un único reintento.
func (m *MemoryManager) translate(p *Process, page uint64, write bool) (PageEntry, error) {
	vpn := page / uint64(m.config.PageSize)

	entry, hit := p.TLB.Lookup(vpn)
	if !hit {
		var mapped bool
		entry, mapped = p.PageTable.Lookup(page)
		if !mapped {
			result := m.faults.handleFaultLocked(p, page)
			if !result.Ok() {
				return PageEntry{}, fmt.Errorf("PID %d: %w: %w", p.PID, models.ErrProcessKilled, result.Err)
			}
			if entry, mapped = p.PageTable.Lookup(page); !mapped {
				err := fmt.Errorf("%w: 0x%x sigue sin mapear después del fault", models.ErrInvariantViolation, page)
				m.faults.fatal(p, page, err)
				return PageEntry{}, err
			}
		}
	}

	if entry.Perm&models.PermUser == 0 || (write && entry.Perm&models.PermWrite == 0) {
		err := fmt.Errorf("%w: acceso (escritura=%v) sin permiso a 0x%x [%s]",
			models.ErrInvariantViolation, write, page, entry.Perm)
		m.faults.fatal(p, page, err)
		return PageEntry{}, fmt.Errorf("PID %d: %w: %w", p.PID, models.ErrProcessKilled, err)
	}

	if !hit {
		p.TLB.Insert(vpn, entry)
	}
	return entry, nil
}
