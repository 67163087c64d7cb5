package rules

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

var (
	driverRequestsHistogramMetric = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "engine",
			Subsystem: "worker",
			Name:      "driver_requests_duration",
			Help:      "Calls to remote drivers.",
		},
		[]string{"method", "code"},
	)
)

func init() { prometheus.MustRegister(driverRequestsHistogramMetric) }

// RemoteDriver steers a cycle by asking an HTTP server. Every tick it POSTs a
// SteerRequest to <URL>/move and expects a MoveResponse back.
type RemoteDriver struct {
	URL     string
	Timeout time.Duration
}

// Steer implements Driver.
func (d *RemoteDriver) Steer(ctx context.Context, match *Match, frame *Frame, player int) (string, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = match.Tick()
	}
	data, err := d.post(ctx, getURL(d.URL, "move"), timeout, buildSteerRequest(match, frame, player))
	if err != nil {
		return "", err
	}

	mr := &MoveResponse{}
	if err := json.Unmarshal(data, mr); err != nil {
		return "", errors.Wrap(err, "invalid move response")
	}
	return mr.Move, nil
}

func (d *RemoteDriver) post(ctx context.Context, url string, timeout time.Duration, req SteerRequest) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "error while marshaling steer request")
	}

	netClient := createClient(timeout)
	start := time.Now()
	resp, err := netClient.Post(ctx, url, "application/json", bytes.NewBuffer(data))
	latency := time.Since(start)
	if err != nil {
		instrumentDriverCall(url, 0, 0)
		log.WithError(err).WithField("url", url).Error("error POSTing to driver")
		return nil, errors.Wrap(err, "error POSTing to driver")
	}
	defer func() {
		if bErr := resp.Body.Close(); bErr != nil {
			log.WithError(bErr).Warn("failed to close response body")
		}
	}()
	instrumentDriverCall(url, resp.StatusCode, latency)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("driver returned status %d", resp.StatusCode)
	}

	// Limited read to 1mb of data.
	return ioutil.ReadAll(io.LimitReader(resp.Body, 1000000))
}

func instrumentDriverCall(url string, statusCode int, latency time.Duration) {
	var status string
	switch {
	case statusCode >= 500:
		status = "5xx"
	case statusCode >= 400:
		status = "4xx"
	case statusCode >= 300:
		status = "3xx"
	case statusCode >= 200:
		status = "2xx"
	default:
		status = "err"
	}
	driverRequestsHistogramMetric.WithLabelValues(url, status).Observe(latency.Seconds())
}
