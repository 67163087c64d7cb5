package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/lightcycles/engine/api"
	"github.com/lightcycles/engine/controller"
	"github.com/lightcycles/engine/rules"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "creates a new match for the workers of a server to run",
	Args: func(c *cobra.Command, args []string) error {
		if configFile == "" {
			return nil
		}
		data, err := ioutil.ReadFile(configFile) // nolint: gosec
		if err != nil {
			return err
		}
		return json.Unmarshal(data, createReq)
	},
	RunE: func(*cobra.Command, []string) error {
		id, err := createMatch(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf(`{"ID": "%s"}`+"\n", id)
		return nil
	},
}

var (
	configFile string
	startMatch = true
	createReq  = defaultCreateRequest()
)

func init() {
	createCmd.Flags().StringVarP(&configFile, "config", "c", "", "json file with the match to create, two bots when empty")
	createCmd.Flags().BoolVar(&startMatch, "start", startMatch, "start the match right away")
}

func defaultCreateRequest() *rules.CreateRequest {
	return &rules.CreateRequest{
		Players: []rules.PlayerOptions{
			{Name: "Player 1", Driver: rules.DriverBot},
			{Name: "Player 2", Driver: rules.DriverBot},
		},
	}
}

func createMatch(ctx context.Context) (string, error) {
	if apiAddr != "" {
		cr := &api.CreateResponse{}
		if err := postJSON("/matches", createReq, cr); err != nil {
			return "", err
		}
		if startMatch {
			if err := postJSON(fmt.Sprintf("/matches/%s/start", cr.ID), nil, nil); err != nil {
				return "", err
			}
		}
		return cr.ID, nil
	}

	store, closeStore, err := openStore()
	if err != nil {
		return "", err
	}
	defer closeStore()

	ctrl := controller.New(store)
	match, err := ctrl.Create(ctx, createReq)
	if err != nil {
		return "", err
	}
	if startMatch {
		if err := ctrl.Start(ctx, match.ID); err != nil {
			return "", err
		}
	}
	return match.ID, nil
}
