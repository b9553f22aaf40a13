package dbnotify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ts4z/brochure/state"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		payload string
		want    *state.NotificationEvent
		wantErr bool
	}{
		{`{"Table":"features","Key":"es"}`, &state.NotificationEvent{Table: "features", Key: "es"}, false},
		{`{"Table":"site_config"}`, &state.NotificationEvent{Table: "site_config"}, false},
		{`{"Key":"es"}`, nil, true},
		{`not json`, nil, true},
	}
	for _, tt := range tests {
		got, err := parseEvent(tt.payload)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseEvent(%q) err = %v", tt.payload, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("parseEvent(%q) (-want +got):\n%s", tt.payload, diff)
		}
	}
}

type recordingCache struct{ keys []string }

func (r *recordingCache) CacheInvalidate(_ context.Context, key string) {
	r.keys = append(r.keys, key)
}

type warmer struct {
	keys []string
	err  error
}

func (w *warmer) Warm(_ context.Context, key string) error {
	w.keys = append(w.keys, key)
	return w.err
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	features := &recordingCache{}
	w := &warmer{err: errors.New("db down")}
	site := &recordingCache{}
	l, err := NewDBNotifyListener(nil,
		NewChangeDispatcher(state.FeaturesTable, features, w),
		NewChangeDispatcher(state.SiteConfigTable, site, nil))
	if err != nil {
		t.Fatal(err)
	}

	if !l.Dispatch(ctx, &state.NotificationEvent{Table: "features", Key: "es"}) {
		t.Errorf("features event not dispatched")
	}
	if l.Dispatch(ctx, &state.NotificationEvent{Table: "users"}) {
		t.Errorf("unknown table dispatched")
	}
	l.Dispatch(ctx, &state.NotificationEvent{Table: "site_config"})

	if diff := cmp.Diff([]string{"es"}, features.keys); diff != "" {
		t.Errorf("features invalidations (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"es"}, w.keys); diff != "" {
		t.Errorf("warmed (-want +got):\n%s", diff)
	}
	if len(site.keys) != 1 {
		t.Errorf("site invalidations = %v", site.keys)
	}
}

func TestDuplicateConsumer(t *testing.T) {
	c := &recordingCache{}
	_, err := NewDBNotifyListener(nil,
		NewChangeDispatcher("features", c, nil),
		NewChangeDispatcher("features", c, nil))
	if err == nil {
		t.Errorf("duplicate consumers accepted")
	}
}

func TestChannelFor(t *testing.T) {
	if got := channelFor(state.FeaturesTable); got != "features_changes" {
		t.Errorf("channelFor = %q", got)
	}
}
