package models

import "errors"

type Config struct {
	IpMemory   string `json:"ip_memory"`
	PortMemory int    `json:"port_memory"`
	ScriptPath string `json:"script_path"`
	LogLevel   string `json:"log_level"`
}

var CpuConfig *Config

// Operaciones que entiende el script de la CPU.
const (
	OpProcess = "PROCESS"
	OpSbrk    = "SBRK"
	OpRead    = "READ"
	OpWrite   = "WRITE"
	OpFault   = "FAULT"
	OpDump    = "DUMP"
	OpExit    = "EXIT"
)

// Instruction es una línea del script ya parseada. Solo se completan los campos que usa Op.
type Instruction struct {
	Line      int
	Op        string
	PID       uint
	Path      string
	HeapStart uint64
	Pages     int
	Address   uint64
	Size      int
	Data      []byte
}

// Configuración de memoria que la CPU pide al arrancar.
type MemoryConfig struct {
	PageSize    int `json:"page_size"`
	MaxResident int `json:"max_resident"`
	MaxHeap     int `json:"max_heap"`
}

var MemConfig *MemoryConfig

// DEFINICION DE ERRORES
var ErrInvalidInstruction = errors.New("invalid instruction")
var ErrInvalidAddress = errors.New("invalid address")
