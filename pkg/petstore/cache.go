package petstore

import (
	"sync"
)

const kindPet = "Pet"

// entityRef es la identidad normalizada de una entidad cacheada.
type entityRef struct {
	kind string
	id   EntityID
}

// queryEntry guarda el resultado de una query como refs a entidades
// normalizadas, nunca como copias.
type queryEntry struct {
	filter Filter
	list   bool
	refs   []entityRef
	err    error
	loaded bool
}

// Cache es el cache normalizado del cliente. Una instancia por
// cliente, con lifecycle explícito: se crea con el Client y muere
// con él, nada de estado ambiente compartido.
type Cache struct {
	mu       sync.RWMutex
	entities map[entityRef]Pet
	queries  map[string]*queryEntry
	watchers map[string][]chan struct{}
}

func NewCache() *Cache {
	return &Cache{
		entities: make(map[entityRef]Pet),
		queries:  make(map[string]*queryEntry),
		watchers: make(map[string][]chan struct{}),
	}
}

// Read materializa el resultado cacheado de una query. ok=false si
// la query nunca se registró (ni siquiera en loading).
func (c *Cache) Read(k QueryKey) (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.queries[k.String()]
	if !ok {
		return Snapshot{State: StateLoading}, false
	}
	return c.snapshotLocked(e), true
}

func (c *Cache) snapshotLocked(e *queryEntry) Snapshot {
	if !e.loaded {
		return Snapshot{State: StateLoading}
	}
	if e.err != nil {
		return Snapshot{State: StateError, Err: e.err}
	}

	out := make([]Pet, 0, len(e.refs))
	for _, ref := range e.refs {
		if p, ok := c.entities[ref]; ok {
			out = append(out, p)
		}
	}
	return Snapshot{State: StateReady, Pets: out}
}

// WriteList reemplaza el resultado de una query de lista (last write
// wins por query key) normalizando cada entidad por identidad.
func (c *Cache) WriteList(k QueryKey, items []Pet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(k)
	e.list = true
	e.loaded = true
	e.err = nil
	e.refs = e.refs[:0]

	seen := make(map[entityRef]bool, len(items))
	for _, p := range items {
		ref := entityRef{kind: kindPet, id: CommittedID(p.ID)}
		c.entities[ref] = p
		if seen[ref] {
			continue // invariante: una entrada por identidad
		}
		seen[ref] = true
		e.refs = append(e.refs, ref)
	}

	c.notifyLocked(k.String())
}

// WriteOne registra el resultado de una query single. p == nil
// significa "no hay match" (ausente, no error).
func (c *Cache) WriteOne(k QueryKey, p *Pet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(k)
	e.list = false
	e.loaded = true
	e.err = nil
	e.refs = e.refs[:0]

	// p == nil queda como resultado ausente: ready sin refs.
	if p != nil {
		ref := entityRef{kind: kindPet, id: CommittedID(p.ID)}
		c.entities[ref] = *p
		e.refs = append(e.refs, ref)
	}

	c.notifyLocked(k.String())
}

// WriteError deja la query en estado error (observable vía Watch).
func (c *Cache) WriteError(k QueryKey, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(k)
	e.loaded = true
	e.err = err

	c.notifyLocked(k.String())
}

// MarkLoading registra la query en loading sin resultado, para que
// Watch la vea antes de que llegue la primera respuesta.
func (c *Cache) MarkLoading(k QueryKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.queries[k.String()]; !ok {
		c.queries[k.String()] = &queryEntry{filter: k.Filter, list: k.Op == "pets"}
		c.notifyLocked(k.String())
	}
}

// ApplyOptimistic inserta una entidad especulativa (identidad
// Pending) al frente de toda lista cacheada cuyo filtro la matchee.
// Es síncrono: la vista la ve antes de que salga el request.
func (c *Cache) ApplyOptimistic(tempID string, p Pet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ref := entityRef{kind: kindPet, id: PendingID(tempID)}
	c.entities[ref] = p

	for key, e := range c.queries {
		if !e.list || !e.loaded || e.err != nil {
			continue
		}
		if !e.filter.matches(p) {
			continue
		}
		e.refs = append([]entityRef{ref}, e.refs...)
		c.notifyLocked(key)
	}
}

// Reconcile sustituye la entidad Pending por la confirmada en la
// misma posición de cada lista (sin reordenar, sin duplicar). Después
// queda exactamente una entrada para la entidad lógica.
func (c *Cache) Reconcile(tempID string, real Pet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pendRef := entityRef{kind: kindPet, id: PendingID(tempID)}
	realRef := entityRef{kind: kindPet, id: CommittedID(real.ID)}

	delete(c.entities, pendRef)
	c.entities[realRef] = real

	for key, e := range c.queries {
		idx := indexOf(e.refs, pendRef)
		if idx < 0 {
			continue
		}
		e.refs[idx] = realRef

		// Si la entidad real ya estaba en la lista (p.ej. un refetch
		// llegó antes), se queda la posición del optimista.
		for i := len(e.refs) - 1; i >= 0; i-- {
			if i != idx && e.refs[i] == realRef {
				e.refs = append(e.refs[:i], e.refs[i+1:]...)
				if i < idx {
					idx--
				}
			}
		}

		c.notifyLocked(key)
	}
}

// Rollback revierte una escritura optimista fallida: la entidad
// temporal desaparece de todas las listas, como si nunca se hubiera
// aplicado.
func (c *Cache) Rollback(tempID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pendRef := entityRef{kind: kindPet, id: PendingID(tempID)}
	delete(c.entities, pendRef)

	for key, e := range c.queries {
		idx := indexOf(e.refs, pendRef)
		if idx < 0 {
			continue
		}
		e.refs = append(e.refs[:idx], e.refs[idx+1:]...)
		c.notifyLocked(key)
	}
}

func (c *Cache) entryLocked(k QueryKey) *queryEntry {
	key := k.String()
	e, ok := c.queries[key]
	if !ok {
		e = &queryEntry{filter: k.Filter}
		c.queries[key] = e
	}
	return e
}

func indexOf(refs []entityRef, ref entityRef) int {
	for i, r := range refs {
		if r == ref {
			return i
		}
	}
	return -1
}

// ---------------------------------------------------------------
// Observación (tri-estado por query key)
// ---------------------------------------------------------------

// Watch observa una query: C() avisa en cada escritura al key y
// Snapshot() devuelve el estado vigente (loading/error/data).
type Watch struct {
	cache *Cache
	key   QueryKey
	ch    chan struct{}
}

func (c *Cache) Watch(k QueryKey) *Watch {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan struct{}, 1)
	c.watchers[k.String()] = append(c.watchers[k.String()], ch)
	return &Watch{cache: c, key: k, ch: ch}
}

func (w *Watch) C() <-chan struct{} { return w.ch }

func (w *Watch) Snapshot() Snapshot {
	s, _ := w.cache.Read(w.key)
	return s
}

// Close deja de observar. Las notificaciones posteriores al Close se
// descartan (la vista ya no existe).
func (w *Watch) Close() {
	w.cache.mu.Lock()
	defer w.cache.mu.Unlock()

	key := w.key.String()
	ws := w.cache.watchers[key]
	for i, ch := range ws {
		if ch == w.ch {
			w.cache.watchers[key] = append(ws[:i], ws[i+1:]...)
			break
		}
	}
}

// notifyLocked avisa sin bloquear: si el watcher todavía no consumió
// el aviso anterior, no hace falta otro.
func (c *Cache) notifyLocked(key string) {
	for _, ch := range c.watchers[key] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
