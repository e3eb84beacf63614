package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Charile333/TGBOT/internal/leakradar"
)

type fakeSource struct {
	unlockErr map[leakradar.LeakKind]error
	unlocked  map[leakradar.LeakKind]int
	records   map[leakradar.LeakKind]int
	email     int
	calls     []string
}

func (f *fakeSource) UnlockDomainLeaks(_ context.Context, _ string, kind leakradar.LeakKind, max int) ([]leakradar.Record, error) {
	f.calls = append(f.calls, "unlock:"+kind.Path())
	if err := f.unlockErr[kind]; err != nil {
		return nil, err
	}
	return make([]leakradar.Record, f.unlocked[kind]), nil
}

func (f *fakeSource) UnlockEmailLeaks(context.Context, string, int) ([]leakradar.Record, error) {
	f.calls = append(f.calls, "unlock:email")
	return nil, nil
}

func (f *fakeSource) FetchAllDomainLeaks(_ context.Context, _ string, kind leakradar.LeakKind, _ int) []leakradar.Record {
	f.calls = append(f.calls, "fetch:"+kind.Path())
	return make([]leakradar.Record, f.records[kind])
}

func (f *fakeSource) FetchAllEmailLeaks(context.Context, string, int) []leakradar.Record {
	f.calls = append(f.calls, "fetch:email")
	return make([]leakradar.Record, f.email)
}

type fakeSender struct {
	err      error
	captions []string
	paths    []string
}

func (s *fakeSender) SendDocument(_ context.Context, _ int64, path, _ string, caption string) error {
	s.paths = append(s.paths, path)
	s.captions = append(s.captions, caption)
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return s.err
}

type failingWriter struct{}

func (failingWriter) Write([]leakradar.Record, string) (string, error) {
	return "", errors.New("disk full")
}

func newTestPipeline(t *testing.T, src LeakSource, sender DocumentSender) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	return NewPipeline(src, sender, NewCSVWriter(dir), Options{}), dir
}

func TestExportAllCountsCompletedAndNeverStopsEarly(t *testing.T) {
	src := &fakeSource{
		unlockErr: map[leakradar.LeakKind]error{leakradar.Customers: &leakradar.Error{Op: "unlock customers", Kind: leakradar.KindQuota, Status: 403}},
		unlocked:  map[leakradar.LeakKind]int{leakradar.Employees: 4},
		records:   map[leakradar.LeakKind]int{leakradar.Employees: 5, leakradar.Customers: 3},
	}
	sender := &fakeSender{}
	p, dir := newTestPipeline(t, src, sender)

	rep := p.ExportAll(context.Background(), 1, "example.com")

	assert.Equal(t, 3, rep.Attempted)
	assert.Equal(t, 2, rep.Completed)
	assert.NoError(t, rep.Err)
	require.Len(t, rep.Outcomes, 3)
	assert.Equal(t, StatusDelivered, rep.Outcomes[0].Status)
	assert.Equal(t, 4, rep.Outcomes[0].Unlocked)
	assert.Equal(t, StatusDelivered, rep.Outcomes[1].Status)
	assert.Error(t, rep.Outcomes[1].UnlockErr)
	assert.Equal(t, StatusNoData, rep.Outcomes[2].Status)
	assert.Equal(t, []string{
		"unlock:employees", "fetch:employees",
		"unlock:customers", "fetch:customers",
		"unlock:third_parties", "fetch:third_parties",
	}, src.calls)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "delivered files are removed")
}

func TestExportOneKeepsFileWhenDeliveryFails(t *testing.T) {
	src := &fakeSource{records: map[leakradar.LeakKind]int{leakradar.Employees: 2}}
	sender := &fakeSender{err: errors.New("telegram sendDocument: http 413")}
	p, _ := newTestPipeline(t, src, sender)

	out := p.ExportOne(context.Background(), 1, DomainTarget("example.com", leakradar.Employees))

	assert.Equal(t, StatusDeliveryFailed, out.Status)
	require.NotEmpty(t, out.Path)
	_, err := os.Stat(out.Path)
	assert.NoError(t, err, "file stays on disk after a failed send")
	assert.Len(t, sender.paths, 1, "no retry")
}

func TestExportOneMaterializeFailure(t *testing.T) {
	src := &fakeSource{records: map[leakradar.LeakKind]int{leakradar.Employees: 2}}
	sender := &fakeSender{}
	p := NewPipeline(src, sender, failingWriter{}, Options{})

	out := p.ExportOne(context.Background(), 1, DomainTarget("example.com", leakradar.Employees))
	assert.Equal(t, StatusMaterializeFailed, out.Status)
	assert.Empty(t, sender.paths)
}

func TestExportAllAggregatesFailures(t *testing.T) {
	src := &fakeSource{records: map[leakradar.LeakKind]int{leakradar.Employees: 1, leakradar.Customers: 1, leakradar.ThirdParties: 1}}
	sender := &fakeSender{err: errors.New("boom")}
	p, _ := newTestPipeline(t, src, sender)

	rep := p.ExportAll(context.Background(), 1, "example.com")
	assert.Equal(t, 3, rep.Attempted)
	assert.Equal(t, 0, rep.Completed)
	require.Error(t, rep.Err)
	assert.Contains(t, rep.Err.Error(), "3 errors occurred")
}

func TestExportOneEmailUsesCaption(t *testing.T) {
	src := &fakeSource{email: 7}
	sender := &fakeSender{}
	dir := t.TempDir()
	p := NewPipeline(src, sender, NewCSVWriter(dir), Options{
		Caption: func(tg Target, records, unlocked int) string {
			assert.True(t, tg.Email)
			return "caption"
		},
	})

	out := p.ExportOne(context.Background(), 1, EmailTarget("john@example.com"))
	assert.True(t, out.Delivered())
	assert.Equal(t, 7, out.Records)
	assert.Equal(t, []string{"caption"}, sender.captions)
	assert.Contains(t, filepath.Base(sender.paths[0]), "email_john@example.com_")
	assert.Equal(t, []string{"unlock:email", "fetch:email"}, src.calls)
}
