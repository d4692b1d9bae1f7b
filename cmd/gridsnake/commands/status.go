package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/battlesnakeio/gridsnake/api"
	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "gets the status of a game from the gridsnake api",
	Args: func(c *cobra.Command, args []string) error {
		if len(gameID) == 0 {
			return errors.New("game id is required")
		}
		return nil
	},
	RunE: func(*cobra.Command, []string) error {
		s, err := getStatus(gameID)
		if err != nil {
			return err
		}
		spew.Dump(s)
		return nil
	},
}

var (
	gameID string
)

func init() {
	statusCmd.Flags().StringVarP(&gameID, "game-id", "g", "", "the game id of the game to get the status of")
}

func getStatus(id string) (*api.StatusResponse, error) {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get(fmt.Sprintf("%s/games/%s", strings.TrimSuffix(apiAddr, "/"), id))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	sr := &api.StatusResponse{}
	err = json.Unmarshal(data, sr)
	if err != nil {
		log.WithFields(log.Fields{
			"resp": string(data),
			"id":   id,
		}).Info("unable to unmarshal status response")
		return nil, err
	}
	if sr.Game == nil {
		return nil, errors.New("status response has no game")
	}

	return sr, nil
}
