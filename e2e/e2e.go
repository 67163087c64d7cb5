package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lightcycles/engine/api"
	"github.com/lightcycles/engine/rules"
)

type client struct {
	apiURL string
	client *http.Client
}

func (c *client) beginMatch(cr *rules.CreateRequest) (string, error) {
	var matchID string

	{
		data, err := json.Marshal(cr)
		if err != nil {
			return "", err
		}
		buf := bytes.NewBuffer(data)
		resp, err := c.client.Post(fmt.Sprintf("%s/matches", c.apiURL), "application/json", buf)
		if err != nil {
			return "", err
		}
		res := &api.CreateResponse{}
		err = json.NewDecoder(resp.Body).Decode(res)
		if cErr := resp.Body.Close(); cErr != nil {
			return "", cErr
		}
		if err != nil {
			return "", err
		}
		matchID = res.ID
	}

	{
		resp, err := c.client.Post(fmt.Sprintf("%s/matches/%s/start", c.apiURL, matchID), "application/json", nil)
		if err != nil {
			return "", err
		}
		err = resp.Body.Close()
		if err != nil {
			return "", err
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("start responded with %s", resp.Status)
		}
	}

	return matchID, nil
}

func (c *client) matchStatus(matchID string) (*api.StatusResponse, *api.FramesResponse, error) {
	st := &api.StatusResponse{}
	frames := &api.FramesResponse{}

	{
		resp, err := c.client.Get(fmt.Sprintf("%s/matches/%s", c.apiURL, matchID))
		if err != nil {
			return nil, nil, err
		}
		err = json.NewDecoder(resp.Body).Decode(st)
		if err != nil {
			return nil, nil, err
		}
		err = resp.Body.Close()
		if err != nil {
			return nil, nil, err
		}
	}
	{
		resp, err := c.client.Get(fmt.Sprintf("%s/matches/%s/frames", c.apiURL, matchID))
		if err != nil {
			return nil, nil, err
		}
		err = json.NewDecoder(resp.Body).Decode(frames)
		if err != nil {
			return nil, nil, err
		}
		err = resp.Body.Close()
		if err != nil {
			return nil, nil, err
		}
	}
	return st, frames, nil
}
