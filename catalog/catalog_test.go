package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/uritemplates/errors"
	testutil "github.com/teranos/uritemplates/internal/testing"
	"github.com/teranos/uritemplates/isotime"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(testutil.CreateTestDB(t), zaptest.NewLogger(t).Sugar())
}

func day(y, m, d int) isotime.Time {
	return isotime.Time{Year: y, Month: m, Day: d}
}

func entry(name string, start, stop isotime.Time) Entry {
	return Entry{Name: name, Template: "data_$Y$m$d.dat", Range: isotime.TimeRange{Start: start, Stop: stop}}
}

func TestPutAndQuery(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	for _, e := range []Entry{
		entry("data_20120103.dat", day(2012, 1, 3), day(2012, 1, 4)),
		entry("data_20120101.dat", day(2012, 1, 1), day(2012, 1, 2)),
		entry("data_20120102.dat", day(2012, 1, 2), day(2012, 1, 3)),
		entry("data_20120110.dat", day(2012, 1, 10), day(2012, 1, 11)),
	} {
		require.NoError(t, s.Put(ctx, e))
	}
	other := entry("other", day(2012, 1, 1), day(2012, 1, 2))
	other.Template = "other_$Y"
	require.NoError(t, s.Put(ctx, other))

	tests := []struct {
		name  string
		query isotime.TimeRange
		want  []string
	}{
		{"spans three days", isotime.TimeRange{Start: day(2012, 1, 1), Stop: day(2012, 1, 4)},
			[]string{"data_20120101.dat", "data_20120102.dat", "data_20120103.dat"}},
		{"touching stop is excluded", isotime.TimeRange{Start: day(2012, 1, 4), Stop: day(2012, 1, 10)}, nil},
		{"inside one bucket", isotime.TimeRange{
			Start: isotime.Time{Year: 2012, Month: 1, Day: 2, Hour: 6},
			Stop:  isotime.Time{Year: 2012, Month: 1, Day: 2, Hour: 7}},
			[]string{"data_20120102.dat"}},
		{"sub-millisecond overlap", isotime.TimeRange{
			Start: isotime.Time{Year: 2012, Month: 1, Day: 10, Hour: 23, Minute: 59, Second: 59, Nano: 999_999_500},
			Stop:  day(2012, 1, 12)},
			[]string{"data_20120110.dat"}},
		{"sub-millisecond stop", isotime.TimeRange{
			Start: isotime.Time{Year: 2012, Month: 1, Day: 3, Hour: 23, Minute: 59, Second: 59, Nano: 999_999_500},
			Stop:  isotime.Time{Year: 2012, Month: 1, Day: 4, Nano: 100}},
			[]string{"data_20120103.dat"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Query(ctx, "data_$Y$m$d.dat", tt.query)
			require.NoError(t, err)
			var names []string
			for _, e := range got {
				names = append(names, e.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	n, err := s.Count(ctx, "data_$Y$m$d.dat")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestPutReplaces(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	e := entry("data_v1.dat", day(2012, 1, 1), day(2012, 1, 2))
	e.Extras = map[string]string{"v": "1"}
	require.NoError(t, s.Put(ctx, e))

	e.Range.Stop = day(2012, 1, 3)
	e.Extras = map[string]string{"v": "2"}
	require.NoError(t, s.Put(ctx, e))

	got, err := s.Query(ctx, e.Template, isotime.TimeRange{Start: day(2012, 1, 1), Stop: day(2013, 1, 1)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, e.Range, got[0].Range)
	assert.Equal(t, map[string]string{"v": "2"}, got[0].Extras)
	assert.Empty(t, got[0].ScanID)
}

func TestScans(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	id, err := s.BeginScan(ctx, "data_$Y.dat", "/srv/data")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	e := entry("data_2012.dat", day(2012, 1, 1), day(2013, 1, 1))
	e.ScanID = id
	require.NoError(t, s.Put(ctx, e))

	sc, err := s.GetScan(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "/srv/data", sc.Source)
	assert.Nil(t, sc.FinishedAt)

	require.NoError(t, s.FinishScan(ctx, id, 1, 2))
	sc, err = s.GetScan(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, sc.FinishedAt)
	assert.True(t, fixed.Equal(*sc.FinishedAt))
	assert.Equal(t, 1, sc.Matched)
	assert.Equal(t, 2, sc.Skipped)

	got, err := s.Query(ctx, e.Template, e.Range)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ScanID)

	err = s.FinishScan(ctx, "no-such-scan", 0, 0)
	assert.True(t, errors.IsNotFoundError(err))

	_, err = s.GetScan(ctx, "no-such-scan")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	e := entry("data_20120101.dat", day(2012, 1, 1), day(2012, 1, 2))
	require.NoError(t, s.Put(ctx, e))
	require.NoError(t, s.Delete(ctx, e.Template, e.Name))

	n, err := s.Count(ctx, e.Template)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.True(t, errors.IsNotFoundError(s.Delete(ctx, e.Template, e.Name)))
}

func TestStoreFailures(t *testing.T) {
	ctx := context.Background()
	q := isotime.TimeRange{Start: day(2012, 1, 1), Stop: day(2012, 1, 2)}

	tests := []struct {
		name   string
		expect func(mock sqlmock.Sqlmock)
		call   func(s *Store) error
		msg    string
	}{
		{
			name:   "put",
			expect: func(m sqlmock.Sqlmock) { m.ExpectExec("INSERT INTO entries").WillReturnError(errors.New("disk full")) },
			call:   func(s *Store) error { return s.Put(ctx, entry("a", q.Start, q.Stop)) },
			msg:    "put a",
		},
		{
			name:   "query",
			expect: func(m sqlmock.Sqlmock) { m.ExpectQuery("SELECT name").WillReturnError(errors.New("disk I/O error")) },
			call: func(s *Store) error {
				_, err := s.Query(ctx, "t", q)
				return err
			},
			msg: "query t",
		},
		{
			name: "query bad row",
			expect: func(m sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"name", "template", "start", "stop", "extras", "scan_id"}).
					AddRow("a", "t", "garbage", "2012-01-02", "{}", nil)
				m.ExpectQuery("SELECT name").WillReturnRows(rows)
			},
			call: func(s *Store) error {
				_, err := s.Query(ctx, "t", q)
				return err
			},
			msg: "entry a start",
		},
		{
			name:   "begin scan",
			expect: func(m sqlmock.Sqlmock) { m.ExpectExec("INSERT INTO scans").WillReturnError(errors.New("locked")) },
			call: func(s *Store) error {
				_, err := s.BeginScan(ctx, "t", "src")
				return err
			},
			msg: "begin scan of src",
		},
		{
			name:   "count",
			expect: func(m sqlmock.Sqlmock) { m.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("locked")) },
			call: func(s *Store) error {
				_, err := s.Count(ctx, "t")
				return err
			},
			msg: "count t",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer conn.Close()

			tt.expect(mock)
			err = tt.call(NewStore(conn, nil))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
