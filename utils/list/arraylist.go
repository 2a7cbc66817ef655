package list

import (
	"fmt"
	"sync"
)

// List define las operaciones de una lista segura para usar desde varias goroutines.
type List[T any] interface {
	Add(item T)                                   // Añadir un elemento al final de la lista
	Clear()                                       // Vaciar la lista
	Find(predicate func(T) bool) (T, int, bool)   // Buscar el primer elemento que cumple el predicado
	FindAll(predicate func(T) bool) *ArrayList[T] // Todos los elementos que cumplen el predicado, en una lista nueva
	ForEach(callback func(T))                     // Aplicar callback a cada elemento
	Get(index int) (T, error)                     // Obtener un elemento a partir de un índice dado
	GetAll() []T                                  // Copia de todos los elementos
	Size() int                                    // Tamaño de la lista
	TrimFront(max int) int                        // Descartar los más viejos hasta que queden max
	Drain() []T                                   // Devolver todos los elementos y vaciar la lista
}

// ArrayList implements List
type ArrayList[T any] struct {
	mu    sync.RWMutex
	items []T
}

// NewArrayList crea una lista vacía con capacidad inicial reservada.
func NewArrayList[T any](capacity int) *ArrayList[T] {
	return &ArrayList[T]{
		items: make([]T, 0, capacity),
	}
}

// Add inserta un elemento al final de la lista.
//
// Ejemplo:
//
//	func main() {
//		list := &ArrayList[int]{}
//		list.Add(10)
//		list.Add(20)
//	}
func (list *ArrayList[T]) Add(item T) {
	list.mu.Lock()
	defer list.mu.Unlock()

	list.items = append(list.items, item)
}

// Clear vacía la lista conservando la capacidad reservada.
func (list *ArrayList[T]) Clear() {
	list.mu.Lock()
	defer list.mu.Unlock()

	clear(list.items)
	list.items = list.items[:0]
}

// Find permite buscar un elemento de la lista dado un predicado. Devuelve el elemento, su índice y si
// se encontró.
//
// Ejemplo:
//
//	number, index, found := list.Find(func(number int) bool {
//		return number == 20
//	})
func (list *ArrayList[T]) Find(predicate func(T) bool) (T, int, bool) {
	list.mu.RLock()
	defer list.mu.RUnlock()

	for i, item := range list.items {
		if predicate(item) {
			return item, i, true
		}
	}
	var zero T
	return zero, -1, false
}

// FindAll encuentra todos los elementos que satisfacen el predicado y los devuelve en una nueva instancia de ArrayList.
// Si ningún elemento cumple la condición, devuelve un ArrayList vacío.
func (list *ArrayList[T]) FindAll(predicate func(T) bool) *ArrayList[T] {
	list.mu.RLock()
	defer list.mu.RUnlock()

	filteredList := NewArrayList[T](0)
	for _, item := range list.items {
		if predicate(item) {
			filteredList.items = append(filteredList.items, item)
		}
	}

	return filteredList
}

// ForEach a cada elemento de la lista se le aplica callback. El callback no debe modificar la lista.
func (list *ArrayList[T]) ForEach(callback func(T)) {
	list.mu.RLock()
	defer list.mu.RUnlock()

	for _, item := range list.items {
		callback(item)
	}
}

// Get devuelve el elemento en el índice proporcionado.
//
// Ejemplo:
//
//	value, _ := list.Get(1)
func (list *ArrayList[T]) Get(index int) (T, error) {
	list.mu.RLock()
	defer list.mu.RUnlock()

	if index < 0 || index >= len(list.items) {
		var zero T
		return zero, fmt.Errorf("index out of range: %d", index)
	}
	return list.items[index], nil
}

// GetAll retorna una copia de todos los elementos que se encuentra en la lista
func (list *ArrayList[T]) GetAll() []T {
	list.mu.RLock()
	defer list.mu.RUnlock()

	// Copia para que modificaciones externas no afecten la lista interna
	itemsCopy := make([]T, len(list.items))
	copy(itemsCopy, list.items)
	return itemsCopy
}

// Size devuelve el tamaño de la lista.
func (list *ArrayList[T]) Size() int {
	list.mu.RLock()
	defer list.mu.RUnlock()

	return len(list.items)
}

// TrimFront descarta elementos del principio hasta que queden como mucho max. Devuelve cuántos
// descartó.
func (list *ArrayList[T]) TrimFront(max int) int {
	list.mu.Lock()
	defer list.mu.Unlock()

	extra := len(list.items) - max
	if extra <= 0 {
		return 0
	}
	n := copy(list.items, list.items[extra:])
	clear(list.items[n:])
	list.items = list.items[:n]
	return extra
}

// Drain retorna todos los elementos y deja la lista vacía en una sola operación.
func (list *ArrayList[T]) Drain() []T {
	list.mu.Lock()
	defer list.mu.Unlock()

	items := list.items
	list.items = make([]T, 0, cap(items))
	return items
}
