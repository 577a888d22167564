package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAccessKey is returned when no API key is configured
	ErrMissingAccessKey = errors.New("UNSPLASH_ACCESS_KEY not set")

	// ErrMalformedResponse is returned when a response body does not have
	// the expected shape
	ErrMalformedResponse = errors.New("malformed provider response")
)

// Photo is a single search result
type Photo struct {
	ID             string     `json:"id"`
	Description    string     `json:"description"`
	AltDescription string     `json:"alt_description"`
	Width          int        `json:"width"`
	Height         int        `json:"height"`
	Likes          int        `json:"likes"`
	URLs           PhotoURLs  `json:"urls"`
	User           User       `json:"user"`
	Links          PhotoLinks `json:"links"`
}

// PhotoURLs holds the rendition URLs of a photo
type PhotoURLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

// User is the photographer
type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Links    UserLinks `json:"links"`
}

// UserLinks holds the photographer's profile links
type UserLinks struct {
	HTML string `json:"html"`
}

// PhotoLinks holds the photo's page and download links
type PhotoLinks struct {
	HTML             string `json:"html"`
	Download         string `json:"download"`
	DownloadLocation string `json:"download_location"`
}

// Alt returns the best available alternative text
func (p Photo) Alt() string {
	if p.AltDescription != "" {
		return p.AltDescription
	}
	return p.Description
}

// SearchRequest describes one page of a photo search
type SearchRequest struct {
	Query       string
	Page        int
	PerPage     int
	Orientation string
}

type searchResponse struct {
	Total      int      `json:"total"`
	TotalPages int      `json:"total_pages"`
	Results    *[]Photo `json:"results"`
}

type apiErrorBody struct {
	Errors []string `json:"errors"`
}

// APIError is a non-2xx response from the provider
type APIError struct {
	StatusCode int
	Messages   []string
	Body       string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("provider API error (%d): %s", e.StatusCode, e.Messages[0])
	}
	return fmt.Sprintf("provider API error (%d): %s", e.StatusCode, e.Body)
}

// ResponseError is a 2xx response whose body failed validation
type ResponseError struct {
	StatusCode int
	Reason     string
	Preview    string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s [status=%d]: %s", ErrMalformedResponse, e.StatusCode, e.Reason)
}

// Unwrap lets errors.Is match ErrMalformedResponse
func (e *ResponseError) Unwrap() error {
	return ErrMalformedResponse
}

// validate checks the fields the rest of the pipeline depends on
func (p Photo) validate() error {
	if p.ID == "" {
		return errors.New("result without id")
	}
	if p.URLs.Regular == "" {
		return fmt.Errorf("result %s without urls.regular", p.ID)
	}
	return nil
}
