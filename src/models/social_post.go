package models

// MSocialPost is a single subreddit post with its engagement counters.
type MSocialPost struct {
	ID          string `json:"id"`
	Subreddit   string `json:"subreddit"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Score       int    `json:"score"`
	NumComments int    `json:"num_comments"`
	CreatedUTC  int64  `json:"created_utc"`
	Permalink   string `json:"permalink"`
}

// Engagement weighs comments twice as much as votes.
func (p MSocialPost) Engagement() float64 {
	return float64(p.Score) + 2*float64(p.NumComments)
}
