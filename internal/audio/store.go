package audio

import (
	"io/fs"
	"path"
	"strings"
)

// DefaultExtensions are the audio extensions probed when none are configured.
var DefaultExtensions = []string{"wav", "mp3", "m4a", "aac"}

// Asset is a resolved audio resource.
type Asset struct {
	// Path is the full path of the matched file, extension included.
	Path string
	// Ext is the matched extension without the leading dot.
	Ext string
}

// AssetStore is a synchronous existence probe over a read-only resource set.
// Candidates are extension-less paths; the store tries its own extension list.
type AssetStore interface {
	Resolve(candidate string) (Asset, bool)
}

// FSAssetStore resolves candidates against an fs.FS.
type FSAssetStore struct {
	fsys fs.FS
	exts []string
}

// NewFSAssetStore creates a store probing exts in order. An empty list falls
// back to DefaultExtensions.
func NewFSAssetStore(fsys fs.FS, exts []string) *FSAssetStore {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	return &FSAssetStore{fsys: fsys, exts: exts}
}

// Resolve returns the first existing regular file among candidate+"."+ext.
// A candidate that already carries an extension is tried verbatim first.
func (s *FSAssetStore) Resolve(candidate string) (Asset, bool) {
	candidate = strings.TrimPrefix(path.Clean(candidate), "/")
	if !fs.ValidPath(candidate) {
		return Asset{}, false
	}

	if ext := path.Ext(candidate); ext != "" && s.isFile(candidate) {
		return Asset{Path: candidate, Ext: strings.TrimPrefix(ext, ".")}, true
	}

	for _, ext := range s.exts {
		p := candidate + "." + ext
		if s.isFile(p) {
			return Asset{Path: p, Ext: ext}, true
		}
	}
	return Asset{}, false
}

// Open opens a previously resolved asset.
func (s *FSAssetStore) Open(a Asset) (fs.File, error) {
	return s.fsys.Open(a.Path)
}

func (s *FSAssetStore) isFile(p string) bool {
	info, err := fs.Stat(s.fsys, p)
	return err == nil && info.Mode().IsRegular()
}
