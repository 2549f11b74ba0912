package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, object storage).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	// FileDecodedLatin1 marks content that was not valid UTF-8 and was decoded as ISO-8859-1.
	FileDecodedLatin1
)

// File captures metadata and content for a single exchange file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, в байтах
}

// Len returns the content length as a uint32 offset.
func (f *File) Len() uint32 {
	return mustOffset(len(f.Content))
}

// Text returns the bytes covered by span as a string.
func (f *File) Text(span Span) string {
	if span.End > f.Len() || span.Start > span.End {
		return ""
	}
	return string(f.Content[span.Start:span.End])
}

// Position resolves a byte offset of this file into line and column.
func (f *File) Position(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}
