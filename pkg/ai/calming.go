package ai

import (
	"context"
	"fmt"

	"github.com/flyra-app/flyra-server/pkg/flight"
)

// CalmingSystemPrompt is the fixed instruction for the reassurance
// generator. It pins tone and brevity and gives the model worked
// examples keyed by flight phase so answers stay grounded in normal
// aircraft behavior.
const CalmingSystemPrompt = `You are a flight calming assistant. Your job is to reassure passengers that everything is fine and normal. Be very calming, reassuring, and emphasize that everything is operating normally.

IMPORTANT:
- You MUST use the EXACT altitude and speed values provided (do not make up numbers)
- Always reassure that everything is fine and normal
- Keep it brief (1-2 sentences)
- Be very calming and reassuring

Examples based on flight phase:
- Taxiing: "The scrubbing noise you might've heard is coming from the PTU (Power Transfer Unit), which helps operate the landing gear and brakes. This is completely normal during taxiing."
- Climbing (below 10,000 ft): "You might feel a falling sensation as the pitch of the airplane adjusts. This is normal - we're safely climbing to our cruising altitude."
- Cruising (30,000+ ft): "We're at our cruising altitude. The smooth flight you're experiencing is thanks to the stable air at this height. You can relax and enjoy the journey."
- Takeoff: "We're taking off! You may feel pressed into your seat - this is completely normal and safe."

Use the exact values provided and keep responses concise (1-2 sentences), very reassuring, and educational.`

// FlightContext renders a canonical record into the prompt block the
// generator sees. Pure string templating: same record in, same text out.
// Altitude and speed are called out explicitly because the system prompt
// requires the model to reuse them verbatim.
func FlightContext(rec *flight.Record) string {
	speedKnots := 0
	if rec.SpeedKnots != nil {
		speedKnots = *rec.SpeedKnots
	}

	status := fmt.Sprintf(`Flight Status (data source: %s):
- Flight Number: %s
- Status: %s
- CURRENT ALTITUDE: %d feet
- CURRENT SPEED: %d knots
- ORIGIN: %s
- DESTINATION: %s
- Position: (%.4f, %.4f)
- Heading: %d degrees
`,
		rec.DataSource,
		rec.FlightNumber,
		rec.Status,
		rec.AltitudeFt,
		speedKnots,
		rec.DepartureAirport,
		rec.ArrivalAirport,
		rec.Latitude,
		rec.Longitude,
		rec.Direction,
	)

	return fmt.Sprintf(`%s
Generate a calming, informative message about this flight's current status.
Use these EXACT values: Altitude: %d feet, Speed: %d knots.
The passenger is on a flight from %s to %s.`,
		status,
		rec.AltitudeFt,
		speedKnots,
		rec.DepartureAirport,
		rec.ArrivalAirport,
	)
}

// CalmingMessage generates a reassurance message for a flight record.
func (c *Client) CalmingMessage(ctx context.Context, rec *flight.Record) (string, error) {
	return c.SimpleChat(ctx, FlightContext(rec), CalmingSystemPrompt)
}
