package refdata

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GTDGit/prize_address/internal/models"
)

// Dataset names one reference collection.
type Dataset string

const (
	DatasetProvinces    Dataset = "provinces"
	DatasetDistricts    Dataset = "districts"
	DatasetSubdistricts Dataset = "subdistricts"
	DatasetSites        Dataset = "sites"
)

// Datasets lists every reference collection in load order.
var Datasets = []Dataset{DatasetProvinces, DatasetDistricts, DatasetSubdistricts, DatasetSites}

// State is the load state of a dataset. Pending and Failed both mean the
// collection is not loaded yet; only Loaded distinguishes "loaded but empty".
type State string

const (
	StatePending State = "pending"
	StateLoaded  State = "loaded"
	StateFailed  State = "failed"
)

// Status describes one dataset slot.
type Status struct {
	State    State     `json:"state"`
	Count    int       `json:"count"`
	Error    string    `json:"error,omitempty"`
	LoadedAt time.Time `json:"loadedAt,omitempty"`
}

// Snapshot is an immutable set of reference tables. Callers must not modify
// the returned slices.
type Snapshot struct {
	provinces    []models.Province
	districts    []models.District
	subdistricts []models.Subdistrict
	sites        []models.Site
	status       map[Dataset]Status
}

// NewPendingSnapshot returns a snapshot where nothing has been loaded yet.
func NewPendingSnapshot() *Snapshot {
	status := make(map[Dataset]Status, len(Datasets))
	for _, ds := range Datasets {
		status[ds] = Status{State: StatePending}
	}
	return &Snapshot{status: status}
}

// NewSnapshot builds a fully loaded snapshot from in-memory tables.
func NewSnapshot(provinces []models.Province, districts []models.District, subdistricts []models.Subdistrict, sites []models.Site) *Snapshot {
	now := time.Now()
	return &Snapshot{
		provinces:    provinces,
		districts:    districts,
		subdistricts: subdistricts,
		sites:        sites,
		status: map[Dataset]Status{
			DatasetProvinces:    {State: StateLoaded, Count: len(provinces), LoadedAt: now},
			DatasetDistricts:    {State: StateLoaded, Count: len(districts), LoadedAt: now},
			DatasetSubdistricts: {State: StateLoaded, Count: len(subdistricts), LoadedAt: now},
			DatasetSites:        {State: StateLoaded, Count: len(sites), LoadedAt: now},
		},
	}
}

func (s *Snapshot) Provinces() []models.Province       { return s.provinces }
func (s *Snapshot) Districts() []models.District       { return s.districts }
func (s *Snapshot) Subdistricts() []models.Subdistrict { return s.subdistricts }
func (s *Snapshot) Sites() []models.Site               { return s.sites }

// Status returns the status of ds.
func (s *Snapshot) Status(ds Dataset) Status {
	st, ok := s.status[ds]
	if !ok {
		return Status{State: StatePending}
	}
	return st
}

// Statuses returns a copy of every dataset status.
func (s *Snapshot) Statuses() map[Dataset]Status {
	out := make(map[Dataset]Status, len(s.status))
	for ds, st := range s.status {
		out[ds] = st
	}
	return out
}

// Loaded reports whether ds finished loading successfully.
func (s *Snapshot) Loaded(ds Dataset) bool {
	return s.Status(ds).State == StateLoaded
}

// AllLoaded reports whether every dataset is loaded.
func (s *Snapshot) AllLoaded() bool {
	for _, ds := range Datasets {
		if !s.Loaded(ds) {
			return false
		}
	}
	return true
}

// ResolveSite finds the site whose name equals name, ignoring case.
// The boolean is false for an unknown or empty name ("invalid site").
func (s *Snapshot) ResolveSite(name string) (models.Site, bool) {
	if name == "" {
		return models.Site{}, false
	}
	want := strings.ToLower(name)
	for _, site := range s.sites {
		if strings.ToLower(site.Name) == want {
			return site, true
		}
	}
	return models.Site{}, false
}

// WithFallback returns a snapshot that keeps prev's collections for every
// dataset that failed in s but was loaded in prev.
func (s *Snapshot) WithFallback(prev *Snapshot) *Snapshot {
	if prev == nil {
		return s
	}
	out := &Snapshot{
		provinces:    s.provinces,
		districts:    s.districts,
		subdistricts: s.subdistricts,
		sites:        s.sites,
		status:       s.Statuses(),
	}
	for _, ds := range Datasets {
		if s.Loaded(ds) || !prev.Loaded(ds) {
			continue
		}
		switch ds {
		case DatasetProvinces:
			out.provinces = prev.provinces
		case DatasetDistricts:
			out.districts = prev.districts
		case DatasetSubdistricts:
			out.subdistricts = prev.subdistricts
		case DatasetSites:
			out.sites = prev.sites
		}
		out.status[ds] = prev.Status(ds)
	}
	return out
}

// WithSlot returns a copy of s with one dataset replaced. rows must be the
// slice type of ds. A failed result keeps s's collection and status when s
// had ds loaded.
func (s *Snapshot) WithSlot(ds Dataset, rows any, st Status) *Snapshot {
	out := &Snapshot{
		provinces:    s.provinces,
		districts:    s.districts,
		subdistricts: s.subdistricts,
		sites:        s.sites,
		status:       s.Statuses(),
	}
	switch ds {
	case DatasetProvinces:
		out.provinces, _ = rows.([]models.Province)
	case DatasetDistricts:
		out.districts, _ = rows.([]models.District)
	case DatasetSubdistricts:
		out.subdistricts, _ = rows.([]models.Subdistrict)
	case DatasetSites:
		out.sites, _ = rows.([]models.Site)
	}
	out.status[ds] = st
	return out.WithFallback(s)
}

// SiteNameFromPath returns the final segment of a URL path.
func SiteNameFromPath(p string) string {
	parts := strings.Split(p, "/")
	return parts[len(parts)-1]
}

// Holder publishes the current snapshot. Readers always see a complete snapshot.
type Holder struct {
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// NewHolder returns a holder primed with a pending snapshot.
func NewHolder() *Holder {
	h := &Holder{}
	h.current.Store(NewPendingSnapshot())
	return h
}

// Snapshot returns the current snapshot.
func (h *Holder) Snapshot() *Snapshot {
	return h.current.Load()
}

// Publish replaces the current snapshot.
func (h *Holder) Publish(s *Snapshot) {
	if s == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current.Store(s)
}

// Update derives a new snapshot from the current one and publishes it.
// Concurrent updates are applied one at a time so none is lost.
func (h *Holder) Update(fn func(*Snapshot) *Snapshot) *Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	next := fn(h.current.Load())
	if next == nil {
		return h.current.Load()
	}
	h.current.Store(next)
	return next
}
