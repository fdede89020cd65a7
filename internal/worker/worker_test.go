package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/GTDGit/prize_address/internal/models"
	"github.com/GTDGit/prize_address/internal/refdata"
)

type stubReader struct {
	provinces []models.Province
	err       error
}

func (r *stubReader) GetAllProvinces(context.Context) ([]models.Province, error) {
	return r.provinces, r.err
}

func (r *stubReader) GetAllDistricts(context.Context) ([]models.District, error) {
	return []models.District{}, nil
}

func (r *stubReader) GetAllSubdistricts(context.Context) ([]models.Subdistrict, error) {
	return []models.Subdistrict{}, nil
}

func (r *stubReader) GetAllSites(context.Context) ([]models.Site, error) {
	return []models.Site{}, nil
}

func TestRefDataWorker_SingleLoad(t *testing.T) {
	holder := refdata.NewHolder()
	reader := &stubReader{provinces: []models.Province{{ProvinceCode: 10}}}

	done := make(chan struct{})
	go func() {
		NewRefDataWorker(refdata.NewLoader(reader), holder, 0).Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker with zero interval did not return")
	}
	assert.True(t, holder.Snapshot().AllLoaded())
	assert.Len(t, holder.Snapshot().Provinces(), 1)
}

func TestRefDataWorker_ReloadKeepsGoodData(t *testing.T) {
	holder := refdata.NewHolder()
	reader := &stubReader{provinces: []models.Province{{ProvinceCode: 10}}}
	w := NewRefDataWorker(refdata.NewLoader(reader), holder, time.Hour)

	w.run(context.Background())
	reader.provinces, reader.err = nil, errors.New("source down")
	w.run(context.Background())

	snap := holder.Snapshot()
	assert.True(t, snap.Loaded(refdata.DatasetProvinces))
	assert.Len(t, snap.Provinces(), 1)
}

type recordingNotifier struct {
	mu        sync.Mutex
	published []*refdata.Snapshot
}

func (n *recordingNotifier) NotifyPublished(snap *refdata.Snapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.published = append(n.published, snap)
}

func TestRefDataWorker_NotifiesEveryPublish(t *testing.T) {
	holder := refdata.NewHolder()
	notifier := &recordingNotifier{}
	w := NewRefDataWorker(refdata.NewLoader(&stubReader{}), holder, time.Hour).WithNotifier(notifier)

	w.run(context.Background())
	w.run(context.Background())

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Len(t, notifier.published, 2*len(refdata.Datasets), "one notification per dataset per load")
	assert.Same(t, holder.Snapshot(), notifier.published[len(notifier.published)-1])
}

func TestRefDataWorker_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewRefDataWorker(refdata.NewLoader(&stubReader{}), refdata.NewHolder(), time.Hour)

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestSweepWorker_RunOnce(t *testing.T) {
	calls := 0
	w := NewSweepWorker(map[string]Sweeper{
		"a": SweeperFunc(func() int { calls++; return 2 }),
		"b": SweeperFunc(func() int { calls++; return 0 }),
	}, time.Minute)

	assert.Equal(t, 2, w.RunOnce())
	assert.Equal(t, 2, calls)
}
