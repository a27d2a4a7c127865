package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"market-buzz/src/helpers"
	"market-buzz/src/interfaces"
	"market-buzz/src/logger"
	"market-buzz/src/models"
)

const (
	SourceName = "reddit"

	// pageSize is the listing maximum accepted by the API.
	pageSize = 100
)

type RedditSource struct {
	Config    *models.MConfig
	Network   interfaces.INetworkManager
	Logger    *logger.Logger
	BaseURL   string
	PostLimit int

	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewRedditSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *RedditSource {
	return &RedditSource{
		Config:    cfg,
		Network:   netMgr,
		Logger:    logger.NewLogger(cfg, "RedditSource"),
		BaseURL:   strings.TrimRight(cfg.Social.BaseURL, "/"),
		PostLimit: cfg.Social.PostLimit,
		now:       time.Now,
	}
}

// -----------------------------------------------------------------------------

func (s *RedditSource) Name() string {
	return SourceName
}

// -----------------------------------------------------------------------------

type listingResponse struct {
	Kind string `json:"kind"`
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				ID          string  `json:"id"`
				Subreddit   string  `json:"subreddit"`
				Title       string  `json:"title"`
				Author      string  `json:"author"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				CreatedUTC  float64 `json:"created_utc"`
				Permalink   string  `json:"permalink"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// -----------------------------------------------------------------------------

// FetchPosts walks the "new" listing of subreddit backwards in time until it
// leaves the requested range, runs out of pages or hits the post limit.
func (s *RedditSource) FetchPosts(ctx context.Context, subreddit string, rangeDays int) ([]models.MSocialPost, error) {
	subreddit = strings.TrimPrefix(strings.TrimSpace(subreddit), "r/")
	if subreddit == "" {
		return nil, helpers.NewValidationError("subreddit cannot be empty", nil)
	}
	if rangeDays <= 0 {
		return nil, helpers.NewValidationError(fmt.Sprintf("invalid range %d", rangeDays), nil)
	}

	limit := s.PostLimit
	if limit <= 0 {
		limit = pageSize
	}

	since := s.now().UTC().AddDate(0, 0, -rangeDays).Unix()
	endpoint := fmt.Sprintf("%s/r/%s/new.json", s.BaseURL, url.PathEscape(subreddit))

	var posts []models.MSocialPost
	after := ""

	for page := 0; len(posts) < limit; page++ {
		params := map[string]string{
			"limit":    strconv.Itoa(pageSize),
			"raw_json": "1",
		}
		if after != "" {
			params["after"] = after
		}

		listing, err := s.fetchPage(ctx, endpoint, params)
		if err != nil {
			if page == 0 {
				return nil, fmt.Errorf("r/%s: %w", subreddit, err)
			}
			s.Logger.Warning("Stopping r/%s pagination at page %d: %v", subreddit, page+1, err)
			break
		}

		children := listing.Data.Children
		if len(children) == 0 {
			break
		}

		reachedStart := false
		for _, child := range children {
			d := child.Data
			created := int64(d.CreatedUTC)
			if created < since {
				reachedStart = true
				continue
			}
			posts = append(posts, models.MSocialPost{
				ID:          d.ID,
				Subreddit:   d.Subreddit,
				Title:       d.Title,
				Author:      d.Author,
				Score:       d.Score,
				NumComments: d.NumComments,
				CreatedUTC:  created,
				Permalink:   d.Permalink,
			})
			if len(posts) >= limit {
				break
			}
		}

		after = listing.Data.After
		if reachedStart || after == "" {
			break
		}
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedUTC < posts[j].CreatedUTC
	})

	s.Logger.Info("Fetched r/%s: %d posts over %d days", subreddit, len(posts), rangeDays)
	return posts, nil
}

// -----------------------------------------------------------------------------

func (s *RedditSource) fetchPage(ctx context.Context, endpoint string, params map[string]string) (*listingResponse, error) {
	body, err := s.Network.Get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	var listing listingResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, helpers.NewDataSourceError("malformed listing", err)
	}
	if listing.Kind != "" && listing.Kind != "Listing" {
		return nil, helpers.NewDataSourceError(fmt.Sprintf("unexpected payload kind %q", listing.Kind), nil)
	}
	return &listing, nil
}
