package models

type ArcticShiftSearchResponse[T any] struct {
	Data  []T    `json:"data"`
	Error string `json:"error"`
}

type ArcticShiftPost struct {
	ID          string `json:"id"`
	Subreddit   string `json:"subreddit"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Selftext    string `json:"selftext"`
	Permalink   string `json:"permalink"`
	NumComments int    `json:"num_comments"`
	CreatedUTC  int64  `json:"created_utc"`
}
