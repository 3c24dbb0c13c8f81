package frames

import (
	"bytes"
	"runtime"
	"strconv"
	"strings"
)

// maxDumpBytes caps the buffer used for whole-process stack dumps.
const maxDumpBytes = 16 << 20

// Capture takes a snapshot of every live goroutine's current call stack,
// keyed by goroutine id. It is best effort: blocks the runtime reports
// without a stack (e.g. goroutines running on another thread during the
// dump) are omitted.
func Capture() Snapshot {
	return parseDump(stackDump(true))
}

// CurrentID returns the context id of the calling goroutine.
func CurrentID() ContextID {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	id, _ := parseHeader(string(buf[:n]))
	return id
}

// CaptureCurrent returns the calling goroutine's innermost frame. skip
// drops that many additional frames below the caller of CaptureCurrent,
// letting instrumentation helpers exclude themselves from the chain.
func CaptureCurrent(skip int) *Frame {
	pcs := make([]uintptr, 256)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	var entries []frameEntry
	cf := runtime.CallersFrames(pcs[:n])
	for {
		fr, more := cf.Next()
		if fr.Function != "" {
			entries = append(entries, frameEntry{
				code: Code{Name: fr.Function, File: fr.File},
				line: fr.Line,
			})
		}
		if !more {
			break
		}
	}
	return linkEntries(entries)
}

type frameEntry struct {
	code Code
	line int
}

// linkEntries turns an innermost-first entry list into a linked frame chain
// and returns its head.
func linkEntries(entries []frameEntry) *Frame {
	var caller *Frame
	for i := len(entries) - 1; i >= 0; i-- {
		caller = NewFrame(entries[i].code, entries[i].line, caller)
	}
	return caller
}

// stackDump reads the runtime's textual stack dump, growing the buffer until
// the dump fits.
func stackDump(all bool) []byte {
	buf := make([]byte, 64<<10)
	for {
		n := runtime.Stack(buf, all)
		if n < len(buf) || len(buf) >= maxDumpBytes {
			return buf[:n]
		}
		buf = make([]byte, len(buf)*2)
	}
}

// parseDump parses a runtime.Stack whole-process dump into a snapshot.
//
// Each goroutine block has the shape:
//
//	goroutine 42 [running]:
//	main.work(0x1, 0x2)
//		/src/main.go:10 +0x3f
//	main.main()
//		/src/main.go:5 +0x1a
//	created by main.spawn in goroutine 1
//		/src/main.go:3 +0x2b
//
// Function/location line pairs are innermost-first; the created-by trailer
// is not part of the call stack and is dropped.
func parseDump(dump []byte) Snapshot {
	snap := make(Snapshot)
	for _, block := range bytes.Split(dump, []byte("\n\n")) {
		if len(block) == 0 {
			continue
		}
		id, head := parseBlock(string(block))
		if head != nil {
			snap[id] = head
		}
	}
	return snap
}

func parseBlock(block string) (ContextID, *Frame) {
	lines := strings.Split(strings.TrimRight(block, "\n"), "\n")
	if len(lines) == 0 {
		return 0, nil
	}

	id, ok := parseHeader(lines[0])
	if !ok {
		return 0, nil
	}

	var entries []frameEntry
	for i := 1; i+1 < len(lines); i += 2 {
		fn := strings.TrimSpace(lines[i])
		if strings.HasPrefix(fn, "created by ") {
			break
		}
		name := trimCallArgs(fn)
		file, line := parseLocation(lines[i+1])
		if name == "" || file == "" {
			continue
		}
		entries = append(entries, frameEntry{code: Code{Name: name, File: file}, line: line})
	}
	return id, linkEntries(entries)
}

// parseHeader extracts the goroutine id from a "goroutine N [status]:" line.
func parseHeader(line string) (ContextID, bool) {
	rest, ok := strings.CutPrefix(line, "goroutine ")
	if !ok {
		return 0, false
	}
	idStr, _, ok := strings.Cut(rest, " ")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, false
	}
	return ContextID(id), true
}

// trimCallArgs strips the argument list from a traceback function line,
// e.g. "main.(*T).work(0x1, 0x2)" -> "main.(*T).work".
func trimCallArgs(line string) string {
	if i := strings.LastIndexByte(line, '('); i > 0 {
		return line[:i]
	}
	return line
}

// parseLocation splits a "\t/src/main.go:10 +0x3f" line into file and line.
func parseLocation(line string) (string, int) {
	line = strings.TrimSpace(line)
	if i := strings.IndexByte(line, ' '); i >= 0 {
		line = line[:i]
	}
	i := strings.LastIndexByte(line, ':')
	if i <= 0 {
		return line, 0
	}
	n, err := strconv.Atoi(line[i+1:])
	if err != nil {
		return line, 0
	}
	return line[:i], n
}
