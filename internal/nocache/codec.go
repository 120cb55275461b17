package nocache

import (
	"encoding/json"
	"fmt"
)

type sessionPayload struct {
	Regions []*Region `json:"regions"`
}

func encodeRegions(regions []*Region) ([]byte, error) {
	if regions == nil {
		regions = []*Region{}
	}
	data, err := json.Marshal(sessionPayload{Regions: regions})
	if err != nil {
		return nil, fmt.Errorf("failed to encode nocache session: %w", err)
	}
	return data, nil
}

// decodeRegions rejects payloads containing regions of an unknown type, so a
// partially understood entry is treated like a corrupt one.
func decodeRegions(data []byte) ([]*Region, error) {
	var payload sessionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode nocache session: %w", err)
	}
	for idx, r := range payload.Regions {
		if r == nil || !r.Type.valid() {
			return nil, fmt.Errorf("failed to decode nocache session: region %d has unknown type", idx)
		}
	}
	return payload.Regions, nil
}
