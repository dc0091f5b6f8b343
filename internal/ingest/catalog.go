package ingest

import (
	"archive/tar"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/coreos/go-semver/semver"
	"github.com/draft-together/server/internal/domain"
	"github.com/draft-together/server/internal/repository"
	"github.com/draft-together/server/internal/validation"
	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"
)

const (
	versionsURL   = "https://ddragon.leagueoflegends.com/api/versions.json"
	dragontailURL = "https://ddragon.leagueoflegends.com/cdn/dragontail-%s.tgz"
)

// CatalogSync mirrors the upstream champion catalog into the database and
// swaps the validation set after each successful refresh. A refresh is a
// no-op while the stored catalog version matches the newest published one;
// otherwise it downloads the full asset tarball for that version, extracts
// champion data and images, and upserts every entry.
//
// The endpoint fields default to the public feeds and exist so tests can
// point the sync at local doubles.
type CatalogSync struct {
	// VersionsURL serves the JSON array of published game versions,
	// newest first.
	VersionsURL string
	// TarballURL is a printf pattern for the asset tarball; %s is the
	// version.
	TarballURL string

	champions repository.ChampionRepository
	versions  repository.VersionRepository
	validator *validation.Set
	roles     Job
	dir       string

	client   *http.Client
	download *http.Client
}

// NewCatalogSync builds a sync writing through the given repositories.
// dir is the scratch directory holding downloaded and extracted artifacts;
// roles is run inline after each successful catalog refresh.
func NewCatalogSync(champions repository.ChampionRepository, versions repository.VersionRepository, validator *validation.Set, roles Job, dir string) *CatalogSync {
	return &CatalogSync{
		VersionsURL: versionsURL,
		TarballURL:  dragontailURL,
		champions:   champions,
		versions:    versions,
		validator:   validator,
		roles:       roles,
		dir:         dir,
		client:      &http.Client{Timeout: 30 * time.Second},
		// The tarball is a multi-hundred-MB download, so it gets a much
		// longer timeout than the metadata client.
		download: &http.Client{Timeout: 15 * time.Minute},
	}
}

// Run performs one catalog refresh. On failure the downloaded tarball and
// decompressed tree are kept so the next attempt resumes instead of
// re-downloading; they are removed only after a fully successful refresh.
func (s *CatalogSync) Run(ctx context.Context) error {
	latest, err := s.latestVersion(ctx)
	if err != nil {
		return fmt.Errorf("fetch latest version: %w", err)
	}
	log.WithField("version", latest).Debug("latest upstream game version")

	stored, err := s.versions.Current(ctx)
	if err != nil && !errors.Is(err, domain.ErrVersionNotSet) {
		return fmt.Errorf("read stored version: %w", err)
	}
	if err == nil && sameVersion(stored, latest) {
		log.WithField("version", stored).Info("catalog already at latest version, sync skipped")
		return nil
	}

	tarball, err := s.ensureTarball(ctx, latest)
	if err != nil {
		return fmt.Errorf("fetch dragontail tarball: %w", err)
	}

	extracted, err := s.ensureDecompressed(tarball, latest)
	if err != nil {
		return err
	}

	champions, err := s.extractChampions(extracted, latest)
	if err != nil {
		return err
	}

	for _, champion := range champions {
		exists, err := s.champions.ExistsByRiotID(ctx, champion.RiotID)
		if err != nil {
			return fmt.Errorf("check champion %s: %w", champion.RiotID, err)
		}
		if exists {
			if err := s.champions.Update(ctx, champion); err != nil {
				return fmt.Errorf("update champion %s: %w", champion.RiotID, err)
			}
		} else {
			if err := s.champions.Insert(ctx, champion); err != nil {
				return fmt.Errorf("insert champion %s: %w", champion.RiotID, err)
			}
		}
	}

	catalog, err := s.champions.List(ctx)
	if err != nil {
		log.WithError(err).Error("failed to reload catalog after refresh")
	} else {
		ids := make([]int32, 0, len(catalog))
		for _, champion := range catalog {
			ids = append(ids, champion.ID)
		}
		s.validator.Replace(ids)
		log.WithFields(log.Fields{
			"version":   latest,
			"champions": len(ids),
		}).Info("catalog refreshed")

		if err := s.roles.Run(ctx); err != nil {
			log.WithError(err).Error("role sync after catalog refresh failed")
		}
	}

	if err := s.versions.Set(ctx, latest); err != nil {
		return fmt.Errorf("store version: %w", err)
	}

	log.Debug("removing dragontail artifacts")
	if err := os.RemoveAll(extracted); err != nil {
		return fmt.Errorf("remove decompressed tree: %w", err)
	}
	if err := os.Remove(tarball); err != nil {
		return fmt.Errorf("remove tarball: %w", err)
	}

	return nil
}

func (s *CatalogSync) latestVersion(ctx context.Context) (string, error) {
	var versions []string
	if err := getJSON(ctx, s.client, s.VersionsURL, &versions); err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", errors.New("versions feed is empty")
	}
	latest := versions[0]
	if _, err := semver.NewVersion(latest); err != nil {
		return "", fmt.Errorf("latest version %q is not a semver: %w", latest, err)
	}
	return latest, nil
}

// sameVersion compares two version strings as semvers, falling back to
// string equality when either does not parse.
func sameVersion(stored, latest string) bool {
	a, errA := semver.NewVersion(stored)
	b, errB := semver.NewVersion(latest)
	if errA != nil || errB != nil {
		return stored == latest
	}
	return a.Equal(*b)
}

// ensureTarball returns the path of the cached tarball for version,
// downloading it when absent.
func (s *CatalogSync) ensureTarball(ctx context.Context, version string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, "dragontail-"+version+".tgz")
	if _, err := os.Stat(path); err == nil {
		log.WithField("path", path).Debug("dragontail tarball already downloaded")
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	url := fmt.Sprintf(s.TarballURL, version)
	log.WithField("url", url).Info("downloading dragontail tarball")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.download.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s returned %s", url, resp.Status)
	}

	// Stream to a scratch name first so an interrupted download can never
	// be mistaken for a complete tarball by the next run.
	partial := path + ".partial"
	file, err := os.Create(partial)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(partial)
		return "", fmt.Errorf("download tarball: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(partial)
		return "", err
	}
	if err := os.Rename(partial, path); err != nil {
		return "", err
	}
	return path, nil
}

// ensureDecompressed returns the directory holding the unpacked tarball for
// version, extracting it when absent.
func (s *CatalogSync) ensureDecompressed(tarball, version string) (string, error) {
	dir := filepath.Join(s.dir, "dragontail-"+version)
	if _, err := os.Stat(dir); err == nil {
		log.WithField("path", dir).Debug("dragontail already decompressed")
		return dir, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	log.WithField("path", tarball).Info("decompressing dragontail tarball")
	scratch := dir + ".partial"
	if err := os.RemoveAll(scratch); err != nil {
		return "", err
	}
	if err := untar(tarball, scratch); err != nil {
		os.RemoveAll(scratch)
		return "", fmt.Errorf("decompress tarball: %w", err)
	}
	if err := os.Rename(scratch, dir); err != nil {
		return "", err
	}
	return dir, nil
}

func untar(tarball, dest string) error {
	file, err := os.Open(tarball)
	if err != nil {
		return err
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer gz.Close()

	reader := tar.NewReader(gz)
	for {
		header, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target := filepath.Join(dest, filepath.FromSlash(header.Name))
		if target != dest && !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
			return fmt.Errorf("tar entry %q escapes extraction dir", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.Create(target)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, reader); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
}

type championIndex struct {
	Data map[string]championIndexEntry `json:"data"`
}

type championIndexEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image struct {
		Full string `json:"full"`
	} `json:"image"`
	Skins []struct {
		Name string `json:"name"`
		Num  int    `json:"num"`
	} `json:"skins"`
}

// extractChampions parses the champion index of an unpacked tarball and
// copies each champion's default and centered images into the extracted
// assets directory for this version. The returned entries carry the copied
// image paths, which is what gets persisted and served.
func (s *CatalogSync) extractChampions(ddragonDir, version string) ([]*domain.Champion, error) {
	outDir := filepath.Join(s.dir, "dragontail-extracted-"+version)
	imgDir := filepath.Join(outDir, "img")
	if err := os.MkdirAll(imgDir, 0o755); err != nil {
		return nil, err
	}

	// The index is copied next to the images so the data the catalog was
	// built from survives artifact cleanup.
	src := filepath.Join(ddragonDir, version, "data", "en_US", "championFull.json")
	dst := filepath.Join(outDir, "championFull.json")
	if err := copyFile(src, dst); err != nil {
		return nil, fmt.Errorf("copy champion index: %w", err)
	}

	champions, err := parseChampionIndex(dst)
	if err != nil {
		return nil, err
	}

	for _, champion := range champions {
		centeredSrc := filepath.Join(ddragonDir, "img", "champion", "centered", champion.CenteredDefaultSkinImagePath)
		if champion.RiotID == "Fiddlesticks" {
			if err := fixFiddlesticksFilename(centeredSrc); err != nil {
				return nil, err
			}
		}
		centeredDst := filepath.Join(imgDir, champion.CenteredDefaultSkinImagePath)
		if err := copyFile(centeredSrc, centeredDst); err != nil {
			return nil, fmt.Errorf("copy centered image for %s: %w", champion.RiotID, err)
		}

		defaultSrc := filepath.Join(ddragonDir, version, "img", "champion", champion.DefaultSkinImagePath)
		defaultDst := filepath.Join(imgDir, champion.DefaultSkinImagePath)
		if err := copyFile(defaultSrc, defaultDst); err != nil {
			return nil, fmt.Errorf("copy default image for %s: %w", champion.RiotID, err)
		}

		champion.DefaultSkinImagePath = defaultDst
		champion.CenteredDefaultSkinImagePath = centeredDst
	}

	return champions, nil
}

func parseChampionIndex(path string) ([]*domain.Champion, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var index championIndex
	if err := json.NewDecoder(file).Decode(&index); err != nil {
		return nil, fmt.Errorf("parse champion index: %w", err)
	}
	if len(index.Data) == 0 {
		return nil, errors.New("champion index has no entries")
	}

	champions := make([]*domain.Champion, 0, len(index.Data))
	for key, entry := range index.Data {
		if entry.ID == "" || entry.Name == "" || entry.Image.Full == "" {
			return nil, fmt.Errorf("champion index entry %q is missing id, name or image", key)
		}

		// Entries without a default skin resolve to skin number 0.
		num := 0
		for _, skin := range entry.Skins {
			if skin.Name == "default" {
				num = skin.Num
				break
			}
		}

		champions = append(champions, &domain.Champion{
			RiotID:                       entry.ID,
			Name:                         entry.Name,
			DefaultSkinImagePath:         entry.Image.Full,
			CenteredDefaultSkinImagePath: fmt.Sprintf("%s_%d.jpg", entry.ID, num),
		})
	}
	return champions, nil
}

// fixFiddlesticksFilename renames the camel-cased "FiddleSticks" centered
// image some releases ship to the expected name. No-op when the expected
// file is already present.
func fixFiddlesticksFilename(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	variant := strings.ReplaceAll(path, "Fiddlesticks", "FiddleSticks")
	if _, err := os.Stat(variant); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Neither spelling present; the copy that follows reports it.
			return nil
		}
		return err
	}
	log.WithFields(log.Fields{"from": variant, "to": path}).Debug("fixing Fiddlesticks image name")
	return os.Rename(variant, path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
