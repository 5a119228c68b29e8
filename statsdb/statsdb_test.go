package statsdb_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/simulator"
	"github.com/sarchlab/cachesim/statsdb"
)

type stubComponent struct {
	component.Base
}

func newStub(name string) *stubComponent {
	c := &stubComponent{}
	c.Init(name, nil, c)
	return c
}

func (c *stubComponent) ProcessRequest(*request.Request) int { return 0 }
func (c *stubComponent) ProcessReturn(*request.Request) int  { return 0 }

func TestWriteCountersPersistsEveryRegisteredCounter(t *testing.T) {
	llc := newStub("CmpLLC")
	h := llc.Stats.Register("hits", "hits")
	llc.Stats.Add(h, 3)

	path := filepath.Join(t.TempDir(), "run.sqlite3")

	db, err := statsdb.Open(path)
	require.NoError(t, err)
	defer db.Close()

	err = db.WriteCounters(map[string]component.Component{"CmpLLC": llc})
	require.NoError(t, err)

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer raw.Close()

	var value int64
	err = raw.QueryRow(
		`SELECT value FROM counters WHERE run_id = ? AND component = ? AND name = ?`,
		db.RunID(), "CmpLLC", "hits",
	).Scan(&value)
	require.NoError(t, err)
	require.Equal(t, int64(3), value)
}

func TestWriteIPCPersistsEveryRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.sqlite3")

	db, err := statsdb.Open(path)
	require.NoError(t, err)
	defer db.Close()

	records := []simulator.IPCRecord{
		{CPUID: 0, CheckpointICount: 0, FinishICount: 100, CheckpointCycle: 0, FinishCycle: 200},
		{CPUID: 1, CheckpointICount: 0, FinishICount: 50, CheckpointCycle: 0, FinishCycle: 300},
	}

	require.NoError(t, db.WriteIPC(records))

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer raw.Close()

	var count int
	err = raw.QueryRow(`SELECT COUNT(*) FROM ipc WHERE run_id = ?`, db.RunID()).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
