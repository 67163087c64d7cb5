package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
}

func apiURL(path string) string {
	return strings.TrimSuffix(apiAddr, "/") + path
}

func getJSON(path string, v interface{}) error {
	resp, err := httpClient.Get(apiURL(path))
	if err != nil {
		return errors.Wrap(err, "error while calling the api")
	}
	return decodeResponse(resp, v)
}

func postJSON(path string, body, v interface{}) error {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "unable to marshal request")
		}
		buf = bytes.NewBuffer(data)
	}
	resp, err := httpClient.Post(apiURL(path), "application/json", buf)
	if err != nil {
		return errors.Wrap(err, "error while calling the api")
	}
	return decodeResponse(resp, v)
}

func decodeResponse(resp *http.Response, v interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := struct {
			Error string `json:"error"`
		}{}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			return fmt.Errorf("api responded with %s", resp.Status)
		}
		return fmt.Errorf("api responded with %s: %s", resp.Status, apiErr.Error)
	}
	if v == nil {
		return nil
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(v), "unable to decode response")
}
