package md2enex

import (
	"crypto/md5" // #nosec G501 -- Evernote identifies resources by MD5
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// placeholderPNG is a 1x1 transparent PNG bound to references that cannot
// be resolved when placeholder substitution is enabled.
const placeholderPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// placeholderFileName is the attachment name given to the stand-in image.
const placeholderFileName = "placeholder.png"

var placeholderData = func() []byte {
	data, err := base64.StdEncoding.DecodeString(placeholderPNG)
	if err != nil {
		panic("md2enex: placeholder PNG constant is corrupt: " + err.Error())
	}
	return data
}()

// mimeOverrides pins MIME types for common note attachments so output
// does not depend on the host's mime tables.
var mimeOverrides = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".heic": "image/heic",
	".pdf":  "application/pdf",
	".rtf":  "application/rtf",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".json": "application/json",
	".zip":  "application/zip",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// detectMime resolves a resource's MIME type from its file extension.
// The overrides table wins, then the stdlib registry, then the generic
// binary type.
func detectMime(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if m, ok := mimeOverrides[ext]; ok {
		return m
	}
	if m := mime.TypeByExtension(ext); m != "" {
		// TypeByExtension may append parameters; ENEX wants the bare type.
		if i := strings.IndexByte(m, ';'); i >= 0 {
			m = m[:i]
		}
		return strings.TrimSpace(m)
	}
	return "application/octet-stream"
}

// ResourceIndex deduplicates resources across a conversion run. Pool
// workers share one index, so a file embedded in many notes is read and
// stored once.
type ResourceIndex struct {
	mu     sync.Mutex
	byHash map[string]*Resource
}

// NewResourceIndex returns an empty index.
func NewResourceIndex() *ResourceIndex {
	return &ResourceIndex{byHash: make(map[string]*Resource)}
}

// intern returns the canonical copy of r, storing it on first sight.
func (ix *ResourceIndex) intern(r *Resource) *Resource {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if existing, ok := ix.byHash[r.Hash]; ok {
		return existing
	}
	ix.byHash[r.Hash] = r
	return r
}

// Len reports how many unique resources the index holds.
func (ix *ResourceIndex) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.byHash)
}

// resourceResolver binds reference names from note content to payloads
// on disk.
type resourceResolver struct {
	maxSize int64
	index   *ResourceIndex
}

// resolve locates a referenced file in the document's resource directory
// and returns its deduplicated record. The match is a case-sensitive
// exact name match; references carrying a path keep only their base
// name. A missing file, an unreadable file, or one over the size limit
// is an error, and the caller decides between placeholder substitution
// and dropping the reference.
func (rr *resourceResolver) resolve(dir, ref string) (*Resource, error) {
	name := path.Base(filepath.ToSlash(strings.TrimSpace(ref)))
	if name == "" || name == "." || name == "/" {
		return nil, fmt.Errorf("%w: %q", ErrResourceNotFound, ref)
	}
	if dir == "" {
		return nil, fmt.Errorf("%w: %q (no resource directory)", ErrResourceNotFound, ref)
	}

	full := filepath.Join(dir, name)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrResourceNotFound, ref)
	}
	if rr.maxSize > 0 && info.Size() > rr.maxSize {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrResourceTooLarge, name, info.Size(), rr.maxSize)
	}

	data, err := os.ReadFile(full) // #nosec G304 -- path comes from the scanned resource directory
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceRead, err)
	}

	sum := md5.Sum(data) // #nosec G401 -- en-media elements key resources by MD5
	r := &Resource{
		Hash:     hex.EncodeToString(sum[:]),
		Data:     data,
		Mime:     detectMime(name),
		FileName: name,
	}
	return rr.index.intern(r), nil
}

// placeholder returns the shared stand-in image for unresolved references.
func (rr *resourceResolver) placeholder() *Resource {
	sum := md5.Sum(placeholderData) // #nosec G401 -- en-media elements key resources by MD5
	r := &Resource{
		Hash:        hex.EncodeToString(sum[:]),
		Data:        placeholderData,
		Mime:        "image/png",
		FileName:    placeholderFileName,
		Placeholder: true,
	}
	return rr.index.intern(r)
}
