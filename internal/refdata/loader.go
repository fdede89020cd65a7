package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/GTDGit/prize_address/internal/models"
)

// Reader returns the four reference collections. JSONReader and
// repository.TerritoryRepository implement it.
type Reader interface {
	GetAllProvinces(ctx context.Context) ([]models.Province, error)
	GetAllDistricts(ctx context.Context) ([]models.District, error)
	GetAllSubdistricts(ctx context.Context) ([]models.Subdistrict, error)
	GetAllSites(ctx context.Context) ([]models.Site, error)
}

// Paths holds the dataset document paths relative to a Source.
type Paths struct {
	Provinces    string
	Districts    string
	Subdistricts string
	Sites        string
}

// DefaultPaths mirrors the layout of the public form site.
var DefaultPaths = Paths{
	Provinces:    "thaigeo/provinces.json",
	Districts:    "thaigeo/district.json",
	Subdistricts: "thaigeo/subdistricts.json",
	Sites:        "site.json",
}

// JSONReader decodes JSON array documents fetched from a Source.
type JSONReader struct {
	source Source
	paths  Paths
}

// NewJSONReader creates a JSONReader.
func NewJSONReader(source Source, paths Paths) *JSONReader {
	return &JSONReader{source: source, paths: paths}
}

func (r *JSONReader) GetAllProvinces(ctx context.Context) ([]models.Province, error) {
	var out []models.Province
	return out, r.decode(ctx, r.paths.Provinces, &out)
}

func (r *JSONReader) GetAllDistricts(ctx context.Context) ([]models.District, error) {
	var out []models.District
	return out, r.decode(ctx, r.paths.Districts, &out)
}

func (r *JSONReader) GetAllSubdistricts(ctx context.Context) ([]models.Subdistrict, error) {
	var out []models.Subdistrict
	return out, r.decode(ctx, r.paths.Subdistricts, &out)
}

func (r *JSONReader) GetAllSites(ctx context.Context) ([]models.Site, error) {
	var out []models.Site
	return out, r.decode(ctx, r.paths.Sites, &out)
}

func (r *JSONReader) decode(ctx context.Context, name string, dst any) error {
	body, err := r.source.Fetch(ctx, name)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// DefaultFetchTimeout bounds a single dataset load.
const DefaultFetchTimeout = 30 * time.Second

// Loader loads every dataset from a Reader into a Snapshot.
type Loader struct {
	reader  Reader
	timeout time.Duration
}

// NewLoader creates a Loader.
func NewLoader(reader Reader) *Loader {
	return &Loader{reader: reader, timeout: DefaultFetchTimeout}
}

// WithTimeout sets the per-dataset load timeout. Zero disables it.
func (l *Loader) WithTimeout(d time.Duration) *Loader {
	l.timeout = d
	return l
}

// Load fetches the four datasets concurrently into a fresh snapshot. A
// failing dataset is marked StateFailed and left empty; it never aborts the
// other loads.
func (l *Loader) Load(ctx context.Context) *Snapshot {
	return l.LoadInto(ctx, NewHolder(), nil)
}

// LoadInto fetches the four datasets concurrently and publishes each one to
// h as soon as it finishes, so a slow dataset never holds back the others.
// A dataset that fails keeps its previously loaded collection. onPublish, if
// set, is called with every snapshot published. The returned snapshot is
// the one current after all loads finished.
func (l *Loader) LoadInto(ctx context.Context, h *Holder, onPublish func(*Snapshot)) *Snapshot {
	var (
		g     errgroup.Group
		pubMu sync.Mutex
	)
	run := func(ds Dataset, fn func(ctx context.Context) (any, int, error)) {
		g.Go(func() error {
			fetchCtx := ctx
			if l.timeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(ctx, l.timeout)
				defer cancel()
			}

			start := time.Now()
			rows, n, err := fn(fetchCtx)
			st := Status{State: StateLoaded, Count: n, LoadedAt: time.Now()}
			if err != nil {
				rows = nil
				st = Status{State: StateFailed, Error: err.Error()}
				log.Error().Err(err).Str("dataset", string(ds)).Msg("Failed to load reference dataset")
			} else {
				log.Info().Str("dataset", string(ds)).Int("count", n).Dur("duration", time.Since(start)).Msg("Reference dataset loaded")
			}

			// Notifications leave in publish order.
			pubMu.Lock()
			defer pubMu.Unlock()
			snap := h.Update(func(cur *Snapshot) *Snapshot {
				return cur.WithSlot(ds, rows, st)
			})
			if onPublish != nil {
				onPublish(snap)
			}
			return nil
		})
	}

	run(DatasetProvinces, func(ctx context.Context) (any, int, error) {
		rows, err := l.reader.GetAllProvinces(ctx)
		return rows, len(rows), err
	})
	run(DatasetDistricts, func(ctx context.Context) (any, int, error) {
		rows, err := l.reader.GetAllDistricts(ctx)
		return rows, len(rows), err
	})
	run(DatasetSubdistricts, func(ctx context.Context) (any, int, error) {
		rows, err := l.reader.GetAllSubdistricts(ctx)
		return rows, len(rows), err
	})
	run(DatasetSites, func(ctx context.Context) (any, int, error) {
		rows, err := l.reader.GetAllSites(ctx)
		return rows, len(rows), err
	})

	_ = g.Wait()
	return h.Snapshot()
}
