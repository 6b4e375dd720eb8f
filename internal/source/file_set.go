// Package source keeps the text of every fragment touched by a run so that
// diagnostics can quote the offending line.
package source

import (
	"crypto/sha256"
	"sync"
)

// FileSet manages the fragments loaded during preprocessing, indexed by
// canonical key. It is safe for concurrent use.
type FileSet struct {
	mu    sync.RWMutex
	files []File
	index map[string]FileID // name -> latest id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores already normalized bytes, computes LineIdx and Hash, and returns a new FileID.
// It always creates a new FileID even if name is already present.
func (s *FileSet) Add(name, display string, content []byte, flags FileFlags) FileID {
	if display == "" {
		display = name
	}
	f := File{
		Name:    name,
		Display: display,
		Content: content,
		LineIdx: newlineOffsets(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = FileID(mustU32(len(s.files)))
	s.files = append(s.files, f)
	// индекс всегда указывает на последнюю версию
	s.index[name] = f.ID
	return f.ID
}

// AddText normalizes BOM/CRLF in text and stores it. The normalized text is returned
// alongside the id because that is what every consumer should split into lines.
func (s *FileSet) AddText(name, display, text string) (FileID, string) {
	content, flags := Normalize([]byte(text))
	id := s.Add(name, display, content, flags)
	return id, string(content)
}

// AddVirtual adds a virtual fragment (stdin, test, merged output) with the FileVirtual flag.
func (s *FileSet) AddVirtual(name string, content []byte) FileID {
	content, flags := Normalize(content)
	return s.Add(name, name, content, flags|FileVirtual)
}

// Len returns the number of stored fragments.
func (s *FileSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Get returns the fragment for the given ID, or nil when id is out of range.
func (s *FileSet) Get(id FileID) *File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(id) >= len(s.files) {
		return nil
	}
	return &s.files[id]
}

// Lookup returns the latest fragment stored under name.
func (s *FileSet) Lookup(name string) (*File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.index[name]; ok {
		return &s.files[id], true
	}
	return nil, false
}

// LookupDisplay finds a fragment by its display name. Used when only a
// rendered location is at hand (translated compiler diagnostics).
func (s *FileSet) LookupDisplay(display string) (*File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.files) - 1; i >= 0; i-- {
		if s.files[i].Display == display {
			return &s.files[i], true
		}
	}
	return nil, false
}
