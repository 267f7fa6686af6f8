package doclai

import "sync"

// TranslationMap maps unit keys to translated text.
//
// Every key is present from construction with an empty value meaning
// "pending". Values are filled one unit at a time and keys are never
// removed. The map is safe for concurrent writers.
type TranslationMap struct {
	mu     sync.RWMutex
	keys   []string
	values map[string]string
	nodes  map[string]TextNode // first node seen for each key
}

// NewTranslationMap builds a map holding the unique keys of nodes in first-seen order.
// Nodes with an empty key are skipped.
func NewTranslationMap(nodes []TextNode) *TranslationMap {
	m := &TranslationMap{
		values: make(map[string]string, len(nodes)),
		nodes:  make(map[string]TextNode, len(nodes)),
	}
	for _, n := range nodes {
		if n.Key == "" {
			continue
		}
		if _, ok := m.values[n.Key]; ok {
			continue
		}
		m.keys = append(m.keys, n.Key)
		m.values[n.Key] = ""
		m.nodes[n.Key] = n
	}
	return m
}

// Len returns the number of unique units.
func (m *TranslationMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}

// Keys returns the keys in first-seen order.
func (m *TranslationMap) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Units returns one representative node per key, in key order.
func (m *TranslationMap) Units() []TextNode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TextNode, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.nodes[k])
	}
	return out
}

// Has reports whether key is one of the map's units.
func (m *TranslationMap) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.values[key]
	return ok
}

// Get returns the translation for key. ok is false when the key is unknown
// or the unit is still pending.
func (m *TranslationMap) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, known := m.values[key]
	if !known || v == "" {
		return "", false
	}
	return v, true
}

// Set stores the translation for an existing key.
func (m *TranslationMap) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; !ok {
		return ErrUnknownUnitKey
	}
	m.values[key] = value
	return nil
}

// Pending returns the keys that have no translation yet.
func (m *TranslationMap) Pending() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for _, k := range m.keys {
		if m.values[k] == "" {
			out = append(out, k)
		}
	}
	return out
}

// Snapshot returns a copy of the filled entries.
func (m *TranslationMap) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// MapFrom builds a filled TranslationMap from plain key/value pairs.
// It is mostly useful to merge a known map without running a translation.
func MapFrom(pairs map[string]string) *TranslationMap {
	m := &TranslationMap{
		values: make(map[string]string, len(pairs)),
		nodes:  make(map[string]TextNode, len(pairs)),
	}
	for k, v := range pairs {
		m.keys = append(m.keys, k)
		m.values[k] = v
		m.nodes[k] = TextNode{Key: k, Text: k, Hash: HashText(k)}
	}
	return m
}
