package features

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ts4z/brochure/model"
)

type Fetcher interface {
	Fetch(ctx context.Context) ([]model.FeatureItem, error)
}

// HTTPFetcher GETs a JSON array of features.  Any non-2xx status or body
// that isn't a JSON array of {title, desc} is an error.
type HTTPFetcher struct {
	Client *http.Client
	URL    string
}

var _ Fetcher = (*HTTPFetcher)(nil)

type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Status)
}

func (h *HTTPFetcher) Fetch(ctx context.Context) ([]model.FeatureItem, error) {
	if h.URL == "" {
		return nil, errors.New("no features url")
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("can't build features request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("can't fetch features: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: h.URL, Status: resp.StatusCode}
	}

	var items []model.FeatureItem
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("can't decode features from %s: %w", h.URL, err)
	}
	if items == nil {
		return nil, fmt.Errorf("features from %s: not a list", h.URL)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("features from %s: trailing data after list", h.URL)
	}
	return items, nil
}

// Lister is the part of feature storage StorageFetcher needs.
type Lister interface {
	FetchFeatures(ctx context.Context, lang string) ([]model.FeatureItem, error)
}

// StorageFetcher reads a language's list straight from storage, for pages
// rendered by the server that hosts features.json.
type StorageFetcher struct {
	Storage Lister
	Lang    string
}

var _ Fetcher = (*StorageFetcher)(nil)

func (s *StorageFetcher) Fetch(ctx context.Context) ([]model.FeatureItem, error) {
	items, err := s.Storage.FetchFeatures(ctx, s.Lang)
	if err != nil {
		return nil, fmt.Errorf("can't read %s features: %w", s.Lang, err)
	}
	return items, nil
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]model.FeatureItem, error)

func (f FetcherFunc) Fetch(ctx context.Context) ([]model.FeatureItem, error) {
	return f(ctx)
}
