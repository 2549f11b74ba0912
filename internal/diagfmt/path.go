package diagfmt

import "stepscan/internal/source"

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	case PathModeAuto:
		return f.FormatPath("auto", "")
	default:
		return f.Path
	}
}

// validSpan reports whether span points into a file of fs.
func validSpan(fs *source.FileSet, span source.Span) bool {
	return fs != nil && int(span.File) < fs.Len()
}
