// Package storage provides the keyed data containers acquisition records persist into.
//
// Invariants:
// - A store opened with Overwrite discards any previous container at the path.
// - Read-only stores reject every mutation with ErrReadOnly.
// - With SaveOnEdit disabled, edits stay in memory until an explicit Save.
//
// Usage:
//
//	st, _ := storage.OpenFile(storage.Options{Filepath: "/data/run.json", SaveOnEdit: true})
//	defer st.Close()
//	_ = st.Set("useful", false)
//	_ = st.Save()
package storage
