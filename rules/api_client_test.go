package rules

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRemoteDriverSteer(t *testing.T) {
	createClient = singleEndpointMockClient(t, "http://driver/move", `{"move":"left"}`)
	defer func() { createClient = getNetClient }()

	d := &RemoteDriver{URL: "http://driver"}
	dir, err := d.Steer(context.Background(), testMatch(), twoCycleFrame(3), 1)
	require.NoError(t, err)
	require.Equal(t, DirectionLeft, dir)
}

func TestRemoteDriverSendsCellCoordinates(t *testing.T) {
	var sent SteerRequest
	createClient = func(time.Duration) httpClient {
		return mockHTTPClient{
			resp: func(url string, body []byte) *http.Response {
				require.NoError(t, json.Unmarshal(body, &sent))
				return jsonResponse(http.StatusOK, `{"move":"up"}`)
			},
		}
	}
	defer func() { createClient = getNetClient }()

	d := &RemoteDriver{URL: "http://driver/"}
	_, err := d.Steer(context.Background(), testMatch(), twoCycleFrame(3), 2)
	require.NoError(t, err)

	require.Equal(t, "match_123", sent.Match.ID)
	require.Equal(t, "walled", sent.Match.Arena)
	require.Equal(t, int64(3), sent.Turn)
	require.Equal(t, 10, sent.Board.Width)
	require.Equal(t, 8, sent.Board.Height)
	require.Len(t, sent.Board.Cycles, 2)
	require.Equal(t, 2, sent.You.Player)
	require.Equal(t, DirectionRight, sent.You.Heading)
	require.Equal(t, []Coords{{X: 5, Y: 6}, {X: 4, Y: 6}, {X: 3, Y: 6}}, sent.You.Body)
}

func TestRemoteDriverErrors(t *testing.T) {
	tests := []struct {
		Name   string
		Client func(time.Duration) httpClient
	}{
		{
			Name: "post failure",
			Client: func(time.Duration) httpClient {
				return mockHTTPClient{err: errors.New("connection refused")}
			},
		},
		{
			Name: "bad status",
			Client: func(time.Duration) httpClient {
				return mockHTTPClient{resp: func(string, []byte) *http.Response {
					return jsonResponse(http.StatusInternalServerError, `{"move":"up"}`)
				}}
			},
		},
		{
			Name: "bad json",
			Client: func(time.Duration) httpClient {
				return mockHTTPClient{resp: func(string, []byte) *http.Response {
					return jsonResponse(http.StatusOK, `{"move":`)
				}}
			},
		},
	}
	defer func() { createClient = getNetClient }()

	for _, test := range tests {
		createClient = test.Client
		d := &RemoteDriver{URL: "http://driver"}
		_, err := d.Steer(context.Background(), testMatch(), twoCycleFrame(0), 1)
		require.Error(t, err, test.Name)
	}
}

func TestRemoteDriverHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	d := &RemoteDriver{URL: server.URL, Timeout: 5 * time.Second}
	start := time.Now()
	_, err := d.Steer(ctx, testMatch(), twoCycleFrame(0), 1)
	require.Error(t, err)
	require.True(t, time.Since(start) < 2*time.Second, "steer waited %v", time.Since(start))
}

func TestNotifyOnlyCallsRemoteDrivers(t *testing.T) {
	rec := &recordingClient{}
	createClient = rec.create
	defer func() { createClient = getNetClient }()

	m := testMatch()
	m.Players[1].Driver = "http://two.example.com"
	f := twoCycleFrame(0)

	NotifyMatchStart(m, f)
	NotifyMatchEnd(m, f)

	sort.Strings(rec.urls)
	require.Equal(t, []string{
		"http://two.example.com/end",
		"http://two.example.com/start",
	}, rec.urls)
}

func TestNewDriver(t *testing.T) {
	require.Equal(t, Bot{}, NewDriver(&Player{Driver: DriverBot}))
	require.Nil(t, NewDriver(&Player{Driver: DriverHuman}))

	d, ok := NewDriver(&Player{Driver: "http://localhost:8080"}).(*RemoteDriver)
	require.True(t, ok)
	require.Equal(t, "http://localhost:8080", d.URL)

	m := testMatch()
	m.Players[0].Driver = DriverHuman
	drivers := DefaultDrivers(m)
	require.Len(t, drivers, 1)
	require.Contains(t, drivers, 2)
}
