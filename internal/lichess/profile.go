package lichess

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/vytor/chessvault/internal/errors"
	"github.com/vytor/chessvault/internal/logger"
	"github.com/vytor/chessvault/internal/models"
)

type rawUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Title    string `json:"title"`
	Online   bool   `json:"online"`
	Patron   bool   `json:"patron"`
	Verified bool   `json:"verified"`
	Profile  struct {
		Country string `json:"country"`
		Bio     string `json:"bio"`
	} `json:"profile"`
	Count struct {
		All  int `json:"all"`
		Win  int `json:"win"`
		Loss int `json:"loss"`
		Draw int `json:"draw"`
	} `json:"count"`
	Perfs     map[string]rawPerf `json:"perfs"`
	CreatedAt int64              `json:"createdAt"`
	SeenAt    int64              `json:"seenAt"`
	Followers int                `json:"nbFollowers"`
	Following int                `json:"nbFollowing"`
}

type rawPerf struct {
	Rating      int  `json:"rating"`
	RD          int  `json:"rd"`
	Provisional bool `json:"prov"`
	Games       int  `json:"games"`
	Wins        int  `json:"win"`
	Losses      int  `json:"loss"`
	Draws       int  `json:"draw"`
}

// FetchProfile fetches a user's public profile summary.
func (c *Client) FetchProfile(ctx context.Context, username string) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("lichess").WithField("username", username)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/api/user/%s", c.baseURL, url.PathEscape(username))
	log.Debug("fetching profile from: %s", reqURL)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("failed to fetch profile: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	log.Debug("profile response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		log.Debug("profile not found upstream")
		return nil, apperrors.NewNotFoundError("user", username)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("profile request failed: status=%d, body=%s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("profile status %d: %s", resp.StatusCode, string(body))
	}

	var raw rawUser
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		log.Error("failed to decode profile response: %v", err)
		return nil, err
	}

	p := mapProfile(raw)
	log.Info("fetched profile for %s (%d games)", p.Username, p.TotalGames)
	return &p, nil
}

func mapProfile(raw rawUser) models.Profile {
	p := models.Profile{
		Username:    strings.ToLower(raw.Username),
		DisplayName: raw.Username,
		Title:       raw.Title,
		Online:      raw.Online,
		Patron:      raw.Patron,
		Verified:    raw.Verified,
		Country:     raw.Profile.Country,
		Bio:         raw.Profile.Bio,
		TotalGames:  raw.Count.All,
		Wins:        raw.Count.Win,
		Losses:      raw.Count.Loss,
		Draws:       raw.Count.Draw,
		Followers:   raw.Followers,
		Following:   raw.Following,
	}
	if raw.CreatedAt > 0 {
		p.JoinedAt = time.UnixMilli(raw.CreatedAt).UTC()
	}
	if raw.SeenAt > 0 {
		p.LastSeenAt = time.UnixMilli(raw.SeenAt).UTC()
	}
	if len(raw.Perfs) > 0 {
		p.Perfs = make(map[string]models.PerfRating, len(raw.Perfs))
		for name, perf := range raw.Perfs {
			p.Perfs[name] = models.PerfRating{
				Rating:      perf.Rating,
				Deviation:   perf.RD,
				Provisional: perf.Provisional,
				Games:       perf.Games,
				Wins:        perf.Wins,
				Losses:      perf.Losses,
				Draws:       perf.Draws,
			}
		}
	}
	return p
}
