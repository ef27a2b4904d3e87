package estimator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ride-share/internal/domain/geo"
	"ride-share/internal/general/logger"

	"github.com/redis/go-redis/v9"
)

var (
	almaty      = geo.Point{Address: "Almaty", Latitude: 43.238, Longitude: 76.945}
	taldykorgan = geo.Point{Address: "Taldykorgan", Latitude: 45.017, Longitude: 78.373}
)

type stubEstimator struct {
	d     time.Duration
	err   error
	calls int
}

func (s *stubEstimator) TravelTime(context.Context, geo.Point, geo.Point) (time.Duration, error) {
	s.calls++
	return s.d, s.err
}

type fakeKV struct {
	data   map[string]string
	getErr error
	setErr error
	ttl    time.Duration
}

func (f *fakeKV) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = fmt.Sprint(value)
	f.ttl = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestHaversine(t *testing.T) {
	h := NewHaversine(60)
	d, err := h.TravelTime(context.Background(), almaty, taldykorgan)
	if err != nil {
		t.Fatalf("TravelTime: %v", err)
	}
	// roughly 230 km as the crow flies
	if d < 200*time.Minute || d > 260*time.Minute {
		t.Fatalf("unexpected duration %v", d)
	}
	if d%time.Minute != 0 {
		t.Fatalf("expected whole minutes, got %v", d)
	}

	same, _ := h.TravelTime(context.Background(), almaty, almaty)
	if same != time.Minute {
		t.Fatalf("zero distance rounds up to one minute, got %v", same)
	}
}

func TestOSRM(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if strings.Contains(r.URL.Path, "0.000000,0.000000") {
			fmt.Fprint(w, `{"code":"NoRoute","routes":[]}`)
			return
		}
		fmt.Fprint(w, `{"code":"Ok","routes":[{"duration":5400.4}]}`)
	}))
	defer srv.Close()

	o := NewOSRM(srv.URL+"/", time.Second)
	d, err := o.TravelTime(context.Background(), almaty, taldykorgan)
	if err != nil {
		t.Fatalf("TravelTime: %v", err)
	}
	if d != 90*time.Minute {
		t.Fatalf("expected 90m, got %v", d)
	}
	if want := "/route/v1/driving/76.945000,43.238000;78.373000,45.017000"; gotPath != want {
		t.Fatalf("expected lon,lat path %s, got %s", want, gotPath)
	}

	zero := geo.Point{Address: "null island"}
	if _, err := o.TravelTime(context.Background(), zero, zero); err == nil {
		t.Fatal("expected an error for NoRoute")
	}
}

func TestOSRMStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewOSRM(srv.URL, time.Second).TravelTime(context.Background(), almaty, taldykorgan); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestFallback(t *testing.T) {
	primary := &stubEstimator{err: errors.New("unreachable")}
	secondary := &stubEstimator{d: time.Hour}
	f := NewFallback(primary, secondary, logger.Discard())

	d, err := f.TravelTime(context.Background(), almaty, taldykorgan)
	if err != nil || d != time.Hour {
		t.Fatalf("expected secondary answer, got %v %v", d, err)
	}

	primary.err, primary.d = nil, 2*time.Hour
	if d, _ := f.TravelTime(context.Background(), almaty, taldykorgan); d != 2*time.Hour || secondary.calls != 1 {
		t.Fatalf("primary must win when healthy, got %v (secondary calls %d)", d, secondary.calls)
	}
}

func TestRedisCache(t *testing.T) {
	store := &fakeKV{data: map[string]string{}}
	next := &stubEstimator{d: 95 * time.Minute}
	c := NewRedisCache(store, next, 10*time.Minute, logger.Discard())

	for range 3 {
		d, err := c.TravelTime(context.Background(), almaty, taldykorgan)
		if err != nil || d != 95*time.Minute {
			t.Fatalf("unexpected %v %v", d, err)
		}
	}
	if next.calls != 1 {
		t.Fatalf("expected one backend call, got %d", next.calls)
	}
	if store.ttl != 10*time.Minute {
		t.Fatalf("expected ttl to be passed through, got %v", store.ttl)
	}
	if store.data[cacheKey(almaty, taldykorgan)] != "5700" {
		t.Fatalf("expected seconds in cache, got %v", store.data)
	}
}

func TestRedisCacheDegrades(t *testing.T) {
	store := &fakeKV{data: map[string]string{}, getErr: errors.New("conn refused"), setErr: errors.New("conn refused")}
	next := &stubEstimator{d: time.Hour}
	c := NewRedisCache(store, next, time.Minute, logger.Discard())

	d, err := c.TravelTime(context.Background(), almaty, taldykorgan)
	if err != nil || d != time.Hour {
		t.Fatalf("cache failures must be bypassed, got %v %v", d, err)
	}

	next.err = errors.New("backend down")
	if _, err := c.TravelTime(context.Background(), almaty, taldykorgan); err == nil {
		t.Fatal("backend errors must surface")
	}
}
