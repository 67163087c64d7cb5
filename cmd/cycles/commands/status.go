package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/lightcycles/engine/api"
	"github.com/lightcycles/engine/controller"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "gets the status of a match",
	Args: func(c *cobra.Command, args []string) error {
		if len(matchID) == 0 {
			return errors.New("match id is required")
		}
		return nil
	},
	RunE: func(*cobra.Command, []string) error {
		sr, err := getStatus(context.Background(), matchID)
		if err != nil {
			return err
		}
		spew.Dump(sr)
		return nil
	},
}

var (
	matchID string
)

func init() {
	statusCmd.Flags().StringVarP(&matchID, "match-id", "m", "", "the id of the match to get the status of")
}

func getStatus(ctx context.Context, id string) (*api.StatusResponse, error) {
	sr := &api.StatusResponse{}
	if apiAddr != "" {
		err := getJSON(fmt.Sprintf("/matches/%s", id), sr)
		return sr, err
	}

	store, closeStore, err := openStore()
	if err != nil {
		return nil, err
	}
	defer closeStore()

	sr.Match, sr.LastFrame, err = controller.New(store).Status(ctx, id)
	return sr, err
}
