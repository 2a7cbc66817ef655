package models

type PIDRequest struct {
	PID uint `json:"pid"`
}

type CreateProcessRequest struct {
	PID       uint   `json:"pid"`
	Path      string `json:"path"`
	HeapStart uint64 `json:"heap_start"`
}

type SbrkRequest struct {
	PID   uint `json:"pid"`
	Pages int  `json:"pages"`
}

type SbrkResponse struct {
	PID     uint   `json:"pid"`
	HeapEnd uint64 `json:"heap_end"`
}

type FaultRequest struct {
	PID     uint   `json:"pid"`
	Address uint64 `json:"address"`
}

type FaultResponse struct {
	PID     uint      `json:"pid"`
	Address uint64    `json:"address"`
	Outcome string    `json:"outcome"`
	Kind    FaultKind `json:"kind,omitempty"`
	Error   string    `json:"error,omitempty"`
}

type ReadRequest struct {
	PID     uint   `json:"pid"`
	Address uint64 `json:"address"`
	Size    int    `json:"size"`
}

type ReadResponse struct {
	PID  uint   `json:"pid"`
	Data []byte `json:"data"`
}

type WriteRequest struct {
	PID     uint   `json:"pid"`
	Address uint64 `json:"address"`
	Data    []byte `json:"data"`
}

// HeapStatus es la foto del heap de un proceso que devuelve GET /memoria/heap.
type HeapStatus struct {
	PID               uint               `json:"pid"`
	HeapStart         uint64             `json:"heap_start"`
	HeapEnd           uint64             `json:"heap_end"`
	ResidentHeapPages int                `json:"resident_heap_pages"`
	MaxResident       int                `json:"max_resident"`
	Killed            bool               `json:"killed"`
	Entries           []HeapTrackerEntry `json:"entries"`
}

// SwapStatus es la ocupación del área de swap.
type SwapStatus struct {
	TotalBlocks   int    `json:"total_blocks"`
	UsedBlocks    int    `json:"used_blocks"`
	BlocksPerPage int    `json:"blocks_per_page"`
	Occupancy     []bool `json:"occupancy"`
}
