package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Identity is one bot persona that can fill a seat.
type Identity struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

const botIDPrefix = "bot-"

var (
	identities []Identity
	byUserID   map[string]Identity
	loadOnce   sync.Once
	loadErr    error
)

// LoadIdentities loads the bot roster from a JSON file once. When the
// file is missing a built-in roster is used.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				install(defaultRoster())
				return
			}
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}
		var roster []Identity
		if err := json.Unmarshal(data, &roster); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
		if len(roster) == 0 {
			roster = defaultRoster()
		}
		install(roster)
	})
	return loadErr
}

func install(roster []Identity) {
	identities = roster
	byUserID = make(map[string]Identity, len(roster))
	for _, id := range roster {
		byUserID[id.UserID] = id
	}
}

// IdentityFor returns the roster persona for a seat index, wrapping
// around when the roster is smaller than the table.
func IdentityFor(seat int) Identity {
	ensureLoaded()
	return identities[seat%len(identities)]
}

// UsernameFor returns the display name of a bot user id, or "" for
// unknown ids.
func UsernameFor(userID string) string {
	ensureLoaded()
	if id, ok := byUserID[userID]; ok {
		return id.DisplayName
	}
	return ""
}

// IsBot reports whether the user id denotes a bot seat.
func IsBot(userID string) bool {
	return strings.HasPrefix(userID, botIDPrefix)
}

func ensureLoaded() {
	if identities == nil {
		install(defaultRoster())
	}
}

func defaultRoster() []Identity {
	names := []string{"Mira", "Tomas", "Ira", "Benno", "Sasha", "Petra"}
	roster := make([]Identity, 0, len(names))
	for i, name := range names {
		roster = append(roster, Identity{
			UserID:      fmt.Sprintf("%s%02d", botIDPrefix, i+1),
			Username:    strings.ToLower(name),
			DisplayName: name,
		})
	}
	return roster
}
