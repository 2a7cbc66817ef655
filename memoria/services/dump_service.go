package services

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/helpers"
)

// DumpHeap escribe en dump_path el heap tracker de pid y el contenido de sus páginas residentes.
// Devuelve el path del archivo generado.
func (m *MemoryManager) DumpHeap(pid uint) (string, error) {
	slog.Info(fmt.Sprintf("## PID: %d - Memory Dump solicitado", pid))

	p, err := m.processes.Get(pid)
	if err != nil {
		return "", err
	}

	dumpFilePath := filepath.Join(m.config.DumpPath, helpers.GetDumpName(pid))
	file, err := os.Create(dumpFilePath)
	if err != nil {
		slog.Error(fmt.Sprintf("error al crear archivo de dump: %v", err))
		return "", err
	}
	defer file.Close()

	p.mu.Lock()
	defer p.mu.Unlock()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "PID %d - %s - heap [0x%x, 0x%x) - residentes %d/%d\n",
		p.PID, p.Name, p.HeapStart, p.HeapEnd, p.ResidentHeapPages, m.config.MaxResident)

	page := make([]byte, m.config.PageSize)
	for i := 0; i < p.Heap.Capacity(); i++ {
		entry := p.Heap.At(i)
		if !entry.Used() {
			continue
		}
		fmt.Fprintf(w, "[%d] 0x%x swap=%d last_access=%d\n", i, entry.VirtualAddress, entry.SwapStartBlock, entry.LastAccess)
		if !p.PageTable.IsMapped(entry.VirtualAddress) {
			continue
		}
		if err := p.PageTable.CopyFromUser(page, entry.VirtualAddress); err != nil {
			return "", err
		}
		fmt.Fprint(w, hex.Dump(page))
	}

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("fallo al escribir datos al archivo de dump: %w", err)
	}

	slog.Info(fmt.Sprintf("Memoria: Memory Dump completado para PID %d", pid), "archivo", dumpFilePath)
	return dumpFilePath, nil
}
