package diagfmt

import (
	"fmt"

	"fortio.org/safecast"

	"stepscan/internal/source"
)

func contentLen(f *source.File) uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return n
}

func lineStartOffset(f *source.File, line uint32) uint32 {
	if line <= 1 {
		return 0
	}
	idx := line - 2
	if int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	return contentLen(f)
}

// lineEndOffset returns the offset of the '\n' closing line, or the content
// length for the last line.
func lineEndOffset(f *source.File, line uint32) uint32 {
	if line == 0 {
		return 0
	}
	idx := line - 1
	if int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx]
	}
	return contentLen(f)
}

func lineCount(f *source.File) uint32 {
	n, err := safecast.Conv[uint32](len(f.LineIdx) + 1)
	if err != nil {
		panic(fmt.Errorf("line count overflow: %w", err))
	}
	if len(f.LineIdx) > 0 && f.LineIdx[len(f.LineIdx)-1]+1 == contentLen(f) {
		// файл заканчивается переводом строки
		n--
	}
	return n
}
