package telemed

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// LinkGenerator produces a session link for a telemedicine appointment.
// Generation happens at most once per appointment; the lifecycle keeps an
// existing link instead of asking for a new one.
type LinkGenerator interface {
	Generate(appointmentID uuid.UUID) string
}

type roomLinkGenerator struct {
	baseURL string
}

// NewRoomLinkGenerator builds links of the form <base>/rooms/<room-id>.
func NewRoomLinkGenerator(baseURL string) LinkGenerator {
	return &roomLinkGenerator{baseURL: strings.TrimRight(baseURL, "/")}
}

func (g *roomLinkGenerator) Generate(appointmentID uuid.UUID) string {
	return fmt.Sprintf("%s/rooms/%s", g.baseURL, uuid.NewString())
}
