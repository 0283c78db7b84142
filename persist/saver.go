package persist

import (
	"log/slog"

	"github.com/lexandro/milestones-mcp/milestone"
)

// Key is the KV key the milestone list lives under.
const Key = "milestones"

// Saver writes store snapshots through a KV. It implements milestone.Persister.
type Saver struct {
	KV KV
}

// Save encodes milestones and stores them under Key.
func (s *Saver) Save(milestones []milestone.Milestone) error {
	payload, err := Encode(milestones)
	if err != nil {
		return err
	}
	return s.KV.Set(Key, payload)
}

// Load reads the persisted list. It never fails: a missing key is initialised
// with an empty list, and unreadable or malformed data yields an empty list.
// Locations are never persisted, so IN_PROGRESS milestones come back as
// NOT_STARTED until a scan finds their marker again.
func Load(kv KV, logger *slog.Logger) []milestone.Milestone {
	payload, ok, err := kv.Get(Key)
	if err != nil {
		logger.Error("failed to read persisted milestones, starting empty", "error", err)
		return nil
	}
	if !ok {
		if err := kv.Set(Key, "[]"); err != nil {
			logger.Warn("failed to initialise milestone list", "error", err)
		}
		return nil
	}

	milestones, err := Decode(payload)
	if err != nil {
		logger.Error("failed to parse milestones, starting empty", "error", err)
		return nil
	}
	for i := range milestones {
		if milestones[i].State == milestone.InProgress {
			milestones[i].State = milestone.NotStarted
		}
	}
	logger.Info("loaded milestones", "count", len(milestones))
	return milestones
}
