package driver

import "sync"

// reportMemo shares reports between identical inputs of one scan.
type reportMemo struct {
	mu    sync.RWMutex
	byKey map[Digest]Report
}

func newReportMemo(capHint int) *reportMemo {
	return &reportMemo{byKey: make(map[Digest]Report, capHint)}
}

func (m *reportMemo) get(key Digest) (Report, bool) {
	m.mu.RLock()
	rep, ok := m.byKey[key]
	m.mu.RUnlock()
	return rep, ok
}

func (m *reportMemo) put(key Digest, rep Report) {
	m.mu.Lock()
	m.byKey[key] = rep
	m.mu.Unlock()
}
