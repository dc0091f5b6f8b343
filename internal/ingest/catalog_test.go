package ingest_test

import (
	"archive/tar"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draft-together/server/internal/domain"
	"github.com/draft-together/server/internal/ingest"
	"github.com/draft-together/server/internal/repository/postgres"
	"github.com/draft-together/server/internal/testutil"
	"github.com/draft-together/server/internal/validation"
)

// stubJob satisfies ingest.Job and counts its runs.
type stubJob struct {
	mu   sync.Mutex
	runs int
	err  error
}

func (j *stubJob) Run(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs++
	return j.err
}

func (j *stubJob) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

type tarEntry struct {
	name string
	body string
}

// buildTarball produces a gzipped tar with the given regular files.
func buildTarball(t *testing.T, entries []tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, entry := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     entry.name,
			Mode:     0o644,
			Size:     int64(len(entry.body)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(entry.body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// dragontailFor builds a minimal asset tree for version with the given
// champion index entries. Each entry gets a default and a centered image.
func dragontailFor(t *testing.T, version string, ids ...string) []byte {
	t.Helper()
	data := make(map[string]any, len(ids))
	entries := make([]tarEntry, 0, 2*len(ids)+1)
	for _, id := range ids {
		data[id] = map[string]any{
			"id":    id,
			"name":  id,
			"image": map[string]any{"full": id + ".png"},
			"skins": []map[string]any{{"name": "default", "num": 0}},
		}
		entries = append(entries,
			tarEntry{fmt.Sprintf("%s/img/champion/%s.png", version, id), "default-" + id},
			tarEntry{fmt.Sprintf("img/champion/centered/%s_0.jpg", id), "centered-" + id},
		)
	}
	index, err := json.Marshal(map[string]any{"data": data})
	require.NoError(t, err)
	entries = append(entries, tarEntry{
		fmt.Sprintf("%s/data/en_US/championFull.json", version),
		string(index),
	})
	return buildTarball(t, entries)
}

// upstream is a local stand-in for the version and tarball endpoints.
type upstream struct {
	server      *httptest.Server
	tarballHits atomic.Int32
}

func newUpstream(t *testing.T, versions []string, tarball []byte) *upstream {
	t.Helper()
	u := &upstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/versions.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(versions)
	})
	mux.HandleFunc("/cdn/", func(w http.ResponseWriter, r *http.Request) {
		u.tarballHits.Add(1)
		if tarball == nil {
			http.Error(w, "no tarball configured", http.StatusInternalServerError)
			return
		}
		w.Write(tarball)
	})
	u.server = httptest.NewServer(mux)
	t.Cleanup(u.server.Close)
	return u
}

func (u *upstream) versionsURL() string {
	return u.server.URL + "/api/versions.json"
}

func (u *upstream) tarballPattern() string {
	return u.server.URL + "/cdn/dragontail-%s.tgz"
}

// newCatalogSync wires a sync against the test database and upstream double.
func newCatalogSync(tdb *testutil.TestDB, u *upstream, dir string, roles ingest.Job) (*ingest.CatalogSync, *validation.Set) {
	repos := postgres.NewRepositories(tdb.DB)
	validator := validation.NewSet()
	catalog := ingest.NewCatalogSync(repos.Champion, repos.Version, validator, roles, dir)
	catalog.VersionsURL = u.versionsURL()
	catalog.TarballURL = u.tarballPattern()
	return catalog, validator
}

func TestCatalogSync_FirstRunPopulatesCatalog(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	u := newUpstream(t, []string{"15.1.1", "15.0.1"}, dragontailFor(t, "15.1.1", "Aatrox", "Annie"))
	dir := t.TempDir()
	roles := &stubJob{}
	catalog, validator := newCatalogSync(tdb, u, dir, roles)

	require.NoError(t, catalog.Run(context.Background()))

	repos := postgres.NewRepositories(tdb.DB)
	ctx := context.Background()
	champions, err := repos.Champion.List(ctx)
	require.NoError(t, err)
	require.Len(t, champions, 2)
	assert.Equal(t, "Aatrox", champions[0].Name)
	assert.Equal(t, "Annie", champions[1].Name)

	// Stored image paths point at the extracted copies, and the copies are
	// real files with the tarball contents.
	outDir := filepath.Join(dir, "dragontail-extracted-15.1.1")
	assert.Equal(t, filepath.Join(outDir, "img", "Aatrox.png"), champions[0].DefaultSkinImagePath)
	assert.Equal(t, filepath.Join(outDir, "img", "Aatrox_0.jpg"), champions[0].CenteredDefaultSkinImagePath)
	for _, champion := range champions {
		body, err := os.ReadFile(champion.DefaultSkinImagePath)
		require.NoError(t, err)
		assert.Equal(t, "default-"+champion.RiotID, string(body))
		body, err = os.ReadFile(champion.CenteredDefaultSkinImagePath)
		require.NoError(t, err)
		assert.Equal(t, "centered-"+champion.RiotID, string(body))
	}
	_, err = os.Stat(filepath.Join(outDir, "championFull.json"))
	assert.NoError(t, err, "the champion index is kept next to the images")

	// The validation set now accepts exactly the catalog ids.
	assert.Equal(t, 2, validator.Len())
	for _, champion := range champions {
		assert.True(t, validator.Contains(champion.ID))
	}

	assert.Equal(t, 1, roles.count(), "role sync runs after a successful refresh")

	version, err := repos.Version.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "15.1.1", version)

	// Download artifacts are cleaned up after success.
	_, err = os.Stat(filepath.Join(dir, "dragontail-15.1.1.tgz"))
	assert.True(t, os.IsNotExist(err), "tarball must be removed")
	_, err = os.Stat(filepath.Join(dir, "dragontail-15.1.1"))
	assert.True(t, os.IsNotExist(err), "decompressed tree must be removed")
}

func TestCatalogSync_SkipsWhenVersionCurrent(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	u := newUpstream(t, []string{"15.1.1"}, nil)
	roles := &stubJob{}
	catalog, _ := newCatalogSync(tdb, u, t.TempDir(), roles)

	repos := postgres.NewRepositories(tdb.DB)
	ctx := context.Background()
	require.NoError(t, repos.Version.Set(ctx, "15.1.1"))

	require.NoError(t, catalog.Run(ctx))

	assert.Equal(t, int32(0), u.tarballHits.Load(), "no download when already current")
	assert.Equal(t, 0, roles.count())
	champions, err := repos.Champion.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, champions, "a skipped sync writes nothing")
}

func TestCatalogSync_NewVersionUpdatesExistingEntries(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	u := newUpstream(t, []string{"15.1.1"}, dragontailFor(t, "15.1.1", "Aatrox", "Annie"))
	catalog, _ := newCatalogSync(tdb, u, t.TempDir(), &stubJob{})

	repos := postgres.NewRepositories(tdb.DB)
	ctx := context.Background()
	require.NoError(t, repos.Version.Set(ctx, "15.0.1"))
	require.NoError(t, repos.Champion.Insert(ctx, &domain.Champion{
		RiotID:               "Aatrox",
		Name:                 "Old Aatrox",
		DefaultSkinImagePath: "stale/path.png",
	}))

	require.NoError(t, catalog.Run(ctx))

	champions, err := repos.Champion.List(ctx)
	require.NoError(t, err)
	require.Len(t, champions, 2, "existing entries are updated, not duplicated")
	assert.Equal(t, "Aatrox", champions[0].Name)
	assert.NotEqual(t, "stale/path.png", champions[0].DefaultSkinImagePath)

	version, err := repos.Version.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "15.1.1", version)
}

func TestCatalogSync_ReusesCachedTarball(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	// The endpoint would fail, which proves the cached file is used.
	u := newUpstream(t, []string{"15.1.1"}, nil)
	dir := t.TempDir()
	catalog, _ := newCatalogSync(tdb, u, dir, &stubJob{})

	tarball := dragontailFor(t, "15.1.1", "Aatrox")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dragontail-15.1.1.tgz"), tarball, 0o644))

	require.NoError(t, catalog.Run(context.Background()))

	assert.Equal(t, int32(0), u.tarballHits.Load(), "a cached tarball is not re-downloaded")
}

func TestCatalogSync_FailureKeepsArtifactsForResume(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	// Tarball is missing Annie's centered image, so extraction fails after
	// the download and decompression finished.
	broken := buildTarball(t, []tarEntry{
		{"15.1.1/data/en_US/championFull.json", `{"data":{"Annie":{"id":"Annie","name":"Annie","image":{"full":"Annie.png"},"skins":[{"name":"default","num":0}]}}}`},
		{"15.1.1/img/champion/Annie.png", "default-annie"},
	})
	u := newUpstream(t, []string{"15.1.1"}, broken)
	dir := t.TempDir()
	catalog, _ := newCatalogSync(tdb, u, dir, &stubJob{})

	ctx := context.Background()
	require.Error(t, catalog.Run(ctx))

	_, err := os.Stat(filepath.Join(dir, "dragontail-15.1.1.tgz"))
	assert.NoError(t, err, "the tarball survives a failed run")
	_, err = os.Stat(filepath.Join(dir, "dragontail-15.1.1"))
	assert.NoError(t, err, "the decompressed tree survives a failed run")

	repos := postgres.NewRepositories(tdb.DB)
	champions, err := repos.Champion.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, champions, "a failed extraction writes no catalog entries")
	_, err = repos.Version.Current(ctx)
	assert.ErrorIs(t, err, domain.ErrVersionNotSet, "a failed run does not advance the version")
}

func TestCatalogSync_RenamesMiscasedFiddlesticksImage(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	tarball := buildTarball(t, []tarEntry{
		{"15.1.1/data/en_US/championFull.json", `{"data":{"Fiddlesticks":{"id":"Fiddlesticks","name":"Fiddlesticks","image":{"full":"Fiddlesticks.png"},"skins":[{"name":"default","num":0}]}}}`},
		{"15.1.1/img/champion/Fiddlesticks.png", "default-fiddle"},
		// Some releases ship the centered image with a camel-cased name.
		{"img/champion/centered/FiddleSticks_0.jpg", "centered-fiddle"},
	})
	u := newUpstream(t, []string{"15.1.1"}, tarball)
	dir := t.TempDir()
	catalog, _ := newCatalogSync(tdb, u, dir, &stubJob{})

	require.NoError(t, catalog.Run(context.Background()))

	body, err := os.ReadFile(filepath.Join(dir, "dragontail-extracted-15.1.1", "img", "Fiddlesticks_0.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "centered-fiddle", string(body))
}

func TestCatalogSync_CenteredImageUsesDefaultSkinNum(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	// Jax's default skin is not numbered zero, and Sona's skin list carries
	// no "default" entry at all.
	index, err := json.Marshal(map[string]any{"data": map[string]any{
		"Jax": map[string]any{
			"id":    "Jax",
			"name":  "Jax",
			"image": map[string]any{"full": "Jax.png"},
			"skins": []map[string]any{
				{"name": "Mighty Jax", "num": 3},
				{"name": "default", "num": 12},
			},
		},
		"Sona": map[string]any{
			"id":    "Sona",
			"name":  "Sona",
			"image": map[string]any{"full": "Sona.png"},
			"skins": []map[string]any{{"name": "Arcade Sona", "num": 4}},
		},
	}})
	require.NoError(t, err)
	tarball := buildTarball(t, []tarEntry{
		{"15.1.1/data/en_US/championFull.json", string(index)},
		{"15.1.1/img/champion/Jax.png", "default-Jax"},
		{"15.1.1/img/champion/Sona.png", "default-Sona"},
		{"img/champion/centered/Jax_12.jpg", "centered-Jax"},
		{"img/champion/centered/Sona_0.jpg", "centered-Sona"},
	})
	u := newUpstream(t, []string{"15.1.1"}, tarball)
	dir := t.TempDir()
	catalog, _ := newCatalogSync(tdb, u, dir, &stubJob{})

	require.NoError(t, catalog.Run(context.Background()))

	repos := postgres.NewRepositories(tdb.DB)
	champions, err := repos.Champion.List(context.Background())
	require.NoError(t, err)
	require.Len(t, champions, 2)

	imgDir := filepath.Join(dir, "dragontail-extracted-15.1.1", "img")
	assert.Equal(t, filepath.Join(imgDir, "Jax_12.jpg"), champions[0].CenteredDefaultSkinImagePath,
		"the centered image is named after the default skin's number")
	assert.Equal(t, filepath.Join(imgDir, "Sona_0.jpg"), champions[1].CenteredDefaultSkinImagePath,
		"no default skin falls back to number zero")
	for _, champion := range champions {
		body, err := os.ReadFile(champion.CenteredDefaultSkinImagePath)
		require.NoError(t, err)
		assert.Equal(t, "centered-"+champion.RiotID, string(body))
	}
}

func TestCatalogSync_RoleSyncFailureDoesNotFailRefresh(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	u := newUpstream(t, []string{"15.1.1"}, dragontailFor(t, "15.1.1", "Aatrox"))
	roles := &stubJob{err: fmt.Errorf("rates feed down")}
	catalog, _ := newCatalogSync(tdb, u, t.TempDir(), roles)

	ctx := context.Background()
	require.NoError(t, catalog.Run(ctx))

	assert.Equal(t, 1, roles.count())
	repos := postgres.NewRepositories(tdb.DB)
	version, err := repos.Version.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "15.1.1", version, "the refresh itself still completes")
}

func TestCatalogSync_RejectsEscapingTarEntries(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	tarball := buildTarball(t, []tarEntry{
		{"../evil.txt", "outside"},
	})
	u := newUpstream(t, []string{"15.1.1"}, tarball)
	dir := t.TempDir()
	catalog, _ := newCatalogSync(tdb, u, dir, &stubJob{})

	err := catalog.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes extraction dir")

	_, statErr := os.Stat(filepath.Join(dir, "evil.txt"))
	assert.True(t, os.IsNotExist(statErr), "nothing may be written outside the scratch dir")
}

func TestCatalogSync_RejectsBadVersionFeed(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	dir := t.TempDir()

	t.Run("empty feed", func(t *testing.T) {
		u := newUpstream(t, []string{}, nil)
		catalog, _ := newCatalogSync(tdb, u, dir, &stubJob{})
		require.Error(t, catalog.Run(context.Background()))
	})

	t.Run("non-semver head", func(t *testing.T) {
		u := newUpstream(t, []string{"lolpatch_7.20"}, nil)
		catalog, _ := newCatalogSync(tdb, u, dir, &stubJob{})
		err := catalog.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a semver")
	})
}
