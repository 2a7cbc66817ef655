package services

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// TranslationCache es la TLB de un proceso: número de página virtual -> entrada de la tabla. Es una
// cache: un miss siempre se resuelve recorriendo la tabla de páginas, así que perder una inserción no
// cambia el resultado de un acceso.
type TranslationCache struct {
	cache *ristretto.Cache[uint64, PageEntry]
}

// NewTranslationCache crea una TLB con capacidad para entries traducciones. Con entries <= 0 la TLB queda
// desactivada y todos los accesos recorren la tabla.
func NewTranslationCache(entries int) (*TranslationCache, error) {
	if entries <= 0 {
		return &TranslationCache{}, nil
	}

	cache, err := ristretto.NewCache(&ristretto.Config[uint64, PageEntry]{
		NumCounters:        int64(entries) * 10,
		MaxCost:            int64(entries),
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("no se pudo crear la TLB: %w", err)
	}
	return &TranslationCache{cache: cache}, nil
}

func (t *TranslationCache) Enabled() bool {
	return t != nil && t.cache != nil
}

func (t *TranslationCache) Lookup(vpn uint64) (PageEntry, bool) {
	if !t.Enabled() {
		return PageEntry{}, false
	}
	return t.cache.Get(vpn)
}

func (t *TranslationCache) Insert(vpn uint64, entry PageEntry) {
	if !t.Enabled() {
		return
	}
	t.cache.Set(vpn, entry, 1)
}

// Invalidate descarta todas las traducciones. Llamarla varias veces seguidas es inocuo.
func (t *TranslationCache) Invalidate() {
	if !t.Enabled() {
		return
	}
	t.cache.Clear()
}

func (t *TranslationCache) Close() {
	if !t.Enabled() {
		return
	}
	t.cache.Close()
	t.cache = nil
}
