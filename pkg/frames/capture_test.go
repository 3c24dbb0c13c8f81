package frames

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

const sampleDump = `goroutine 1 [running]:
main.work(0x1, 0x2)
	/src/app/main.go:42 +0x3f
main.run()
	/src/app/main.go:21 +0x1a
main.main()
	/src/app/main.go:10 +0x2b

goroutine 18 [chan receive]:
app/worker.(*pool).loop(0xc000010000)
	/src/app/worker.go:33 +0x5c
created by app/worker.Spawn in goroutine 1
	/src/app/worker.go:12 +0x9e

goroutine 27 [running]:
	goroutine running on other thread; stack unavailable`

func TestParseDump_SampleBlocks(t *testing.T) {
	snap := parseDump([]byte(sampleDump))

	require.Contains(t, snap, ContextID(1))
	require.Contains(t, snap, ContextID(18))
	// stack-unavailable blocks are omitted
	assert.NotContains(t, snap, ContextID(27))

	head := snap[1]
	assert.Equal(t, "main.work", head.Code().Name)
	assert.Equal(t, "/src/app/main.go", head.Code().File)
	assert.Equal(t, 42, head.Line())

	require.NotNil(t, head.Caller())
	assert.Equal(t, "main.run", head.Caller().Code().Name)
	require.NotNil(t, head.Caller().Caller())
	assert.Equal(t, "main.main", head.Caller().Caller().Code().Name)
	assert.Nil(t, head.Caller().Caller().Caller())
}

func TestParseDump_CreatedByTrailerDropped(t *testing.T) {
	snap := parseDump([]byte(sampleDump))

	head := snap[18]
	require.NotNil(t, head)
	assert.Equal(t, "app/worker.(*pool).loop", head.Code().Name)
	assert.Equal(t, 33, head.Line())
	assert.Nil(t, head.Caller())
}

func TestParseHeader(t *testing.T) {
	id, ok := parseHeader("goroutine 123 [select, 2 minutes]:")
	require.True(t, ok)
	assert.Equal(t, ContextID(123), id)

	_, ok = parseHeader("not a goroutine line")
	assert.False(t, ok)
}

func TestParseLocation(t *testing.T) {
	file, line := parseLocation("\t/src/app/main.go:42 +0x3f")
	assert.Equal(t, "/src/app/main.go", file)
	assert.Equal(t, 42, line)
}

func TestCapture_IncludesCurrentGoroutine(t *testing.T) {
	snap := Capture()
	id := CurrentID()
	require.Contains(t, snap, id)

	found := false
	for f := snap[id]; f != nil; f = f.Caller() {
		if strings.Contains(f.Code().Name, "TestCapture_IncludesCurrentGoroutine") {
			found = true
			break
		}
	}
	assert.True(t, found, "current goroutine's stack should contain this test frame")
}

func TestCurrentID_DiffersAcrossGoroutines(t *testing.T) {
	id := CurrentID()
	require.NotZero(t, id)
	assert.Equal(t, id, CurrentID())

	ch := make(chan ContextID)
	go func() { ch <- CurrentID() }()
	other := <-ch

	assert.NotZero(t, other)
	assert.NotEqual(t, id, other)
}

func TestCaptureCurrent_InnermostIsCaller(t *testing.T) {
	head := CaptureCurrent(0)
	require.NotNil(t, head)

	assert.Contains(t, head.Code().Name, "TestCaptureCurrent_InnermostIsCaller")
	assert.Greater(t, head.Line(), 0)

	found := false
	for f := head; f != nil; f = f.Caller() {
		if strings.Contains(f.Code().Name, "tRunner") {
			found = true
		}
	}
	assert.True(t, found, "chain should reach the test runner")
}
