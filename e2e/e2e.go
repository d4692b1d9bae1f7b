// Package e2e drives a recorded session through the worker and reads it
// back over the api, the way the replay commands do.
package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/battlesnakeio/gridsnake/api"
	"github.com/battlesnakeio/gridsnake/game"
	"github.com/gorilla/websocket"
)

type client struct {
	apiURL string
	client *http.Client
}

func (c *client) getJSON(path string, out interface{}) error {
	resp, err := c.client.Get(c.apiURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) gameStatus(gameID string) (*api.StatusResponse, error) {
	st := &api.StatusResponse{}
	err := c.getJSON(fmt.Sprintf("/games/%s", gameID), st)
	return st, err
}

func (c *client) listFrames(gameID string, limit, offset int) (*api.ListFramesResponse, error) {
	frames := &api.ListFramesResponse{}
	err := c.getJSON(fmt.Sprintf("/games/%s/frames?limit=%d&offset=%d", gameID, limit, offset), frames)
	return frames, err
}

// streamFrames reads the game socket until the server closes it.
func (c *client) streamFrames(gameID string) ([]*game.Frame, error) {
	url := "ws" + strings.TrimPrefix(c.apiURL, "http") + "/socket/" + gameID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var frames []*game.Frame
	for {
		_, data, err := conn.ReadMessage()
		if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		f := &game.Frame{}
		if err := json.Unmarshal(data, f); err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
}
