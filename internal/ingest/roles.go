package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/draft-together/server/internal/domain"
	"github.com/draft-together/server/internal/repository"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const (
	ratesURL   = "http://cdn.merakianalytics.com/riot/lol/resources/latest/en-US/championrates.json"
	summaryURL = "https://raw.communitydragon.org/latest/plugins/rcp-be-lol-game-data/global/default/v1/champion-summary.json"
)

// playRateThreshold is the share of games above which a role counts as one
// of a champion's positions.
const playRateThreshold = 0.1

// RoleSync derives the playable roles of every champion from community
// play-rate data and stores them on the catalog entries. The two feeds key
// champions by a community id unrelated to ours, so entries are matched to
// catalog rows by display name first and feed alias second.
//
// The endpoint fields default to the public feeds and exist so tests can
// point the sync at local doubles.
type RoleSync struct {
	RatesURL   string
	SummaryURL string

	champions repository.ChampionRepository
	client    *http.Client
}

func NewRoleSync(champions repository.ChampionRepository) *RoleSync {
	return &RoleSync{
		RatesURL:   ratesURL,
		SummaryURL: summaryURL,
		champions:  champions,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

type positionRate struct {
	PlayRate float64 `json:"playRate"`
}

type championRates struct {
	Top     positionRate `json:"TOP"`
	Jungle  positionRate `json:"JUNGLE"`
	Middle  positionRate `json:"MIDDLE"`
	Bottom  positionRate `json:"BOTTOM"`
	Utility positionRate `json:"UTILITY"`
}

// roles lists the positions played above the threshold, in board order.
func (r championRates) roles() []domain.Role {
	roles := make([]domain.Role, 0, len(domain.AllRoles))
	if r.Top.PlayRate > playRateThreshold {
		roles = append(roles, domain.RoleTop)
	}
	if r.Jungle.PlayRate > playRateThreshold {
		roles = append(roles, domain.RoleJungle)
	}
	if r.Middle.PlayRate > playRateThreshold {
		roles = append(roles, domain.RoleMid)
	}
	if r.Bottom.PlayRate > playRateThreshold {
		roles = append(roles, domain.RoleBot)
	}
	if r.Utility.PlayRate > playRateThreshold {
		roles = append(roles, domain.RoleSupport)
	}
	return roles
}

type ratesFeed struct {
	Data map[int32]championRates `json:"data"`
}

type summaryEntry struct {
	ID    int32  `json:"id"`
	Name  string `json:"name"`
	Alias string `json:"alias"`
}

// Run refreshes the role set of every champion both feeds know about.
// Champions missing from the rates feed or from the catalog are logged and
// skipped, as are per-champion storage failures; only a feed fetch failure
// fails the run.
func (s *RoleSync) Run(ctx context.Context) error {
	log.Debug("fetching champion play rates")
	var rates ratesFeed
	if err := getJSON(ctx, s.client, s.RatesURL, &rates); err != nil {
		return fmt.Errorf("fetch play rates: %w", err)
	}

	log.Debug("fetching champion summary")
	var summary []summaryEntry
	if err := getJSON(ctx, s.client, s.SummaryURL, &summary); err != nil {
		return fmt.Errorf("fetch champion summary: %w", err)
	}

	for _, champion := range summary {
		entry, ok := rates.Data[champion.ID]
		if !ok {
			log.WithField("champion", champion.Name).Warn("no play rates for champion")
			continue
		}

		roles, err := json.Marshal(entry.roles())
		if err != nil {
			return fmt.Errorf("encode roles for %s: %w", champion.Name, err)
		}
		if err := s.setRoles(ctx, champion, datatypes.JSON(roles)); err != nil {
			log.WithError(err).WithField("champion", champion.Name).Warn("failed to store champion roles")
		}
	}

	return nil
}

// setRoles matches the feed entry to a catalog row by name, then by alias.
// A champion in the feeds but not in the catalog is logged and dropped.
func (s *RoleSync) setRoles(ctx context.Context, champion summaryEntry, roles datatypes.JSON) error {
	err := s.champions.SetRoles(ctx, champion.Name, roles)
	if err == nil {
		log.WithFields(log.Fields{
			"champion": champion.Name,
			"roles":    string(roles),
		}).Debug("champion roles updated")
		return nil
	}
	if !errors.Is(err, domain.ErrChampionNotFound) {
		return err
	}

	err = s.champions.SetRoles(ctx, champion.Alias, roles)
	if errors.Is(err, domain.ErrChampionNotFound) {
		log.WithFields(log.Fields{
			"name":  champion.Name,
			"alias": champion.Alias,
		}).Warn("champion from summary feed is not in the catalog")
		return nil
	}
	if err == nil {
		log.WithFields(log.Fields{
			"champion": champion.Alias,
			"roles":    string(roles),
		}).Debug("champion roles updated")
	}
	return err
}
