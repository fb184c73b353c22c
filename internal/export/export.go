// Package export renders compiled sessions into interchange formats.
//
// Exporters are pure transforms over the compiled plan: they never resolve,
// lint, or mutate anything, and the same plan always renders to the same
// bytes (the ICS exporter derives its UID from the event content for that
// reason).
package export

import (
	"encoding/json"

	"github.com/vk/wodc/internal/session"
)

// JSON renders the compiled session as indented JSON.
func JSON(s *session.CompiledSession) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
